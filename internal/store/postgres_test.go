package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/convoeval/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresGetEvaluationNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM evaluations WHERE conversation_id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetEvaluation(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPutEvaluation(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO evaluations`).
		WithArgs("c1", "Test", pgxmock.AnyArg(), 82.5,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "solid", true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	result := testEvaluation("c1", 82.5, time.Now().UTC())
	result.ConversationTitle = "Test"
	require.NoError(t, s.PutEvaluation(context.Background(), result))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPutEvaluationRejectsInvalid(t *testing.T) {
	s, _ := newMockPostgresStore(t)

	err := s.PutEvaluation(context.Background(), model.EvaluationResult{ConversationID: "c1"})
	assert.Error(t, err)
}

func TestPostgresGetEvaluation(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	ts := time.Now().UTC()
	mock.ExpectQuery(`FROM evaluations WHERE conversation_id = \$1`).
		WithArgs("c1").
		WillReturnRows(pgxmock.NewRows([]string{
			"conversation_id", "conversation_title", "ts", "overall_score",
			"scores", "strengths", "improvements", "overall_assessment", "passed",
		}).AddRow(
			"c1", "Test", ts, 82.5,
			[]byte(`{"intent_recognition":80}`), []byte(`["clear"]`), []byte(`[]`), "solid", true,
		))

	got, err := s.GetEvaluation(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.ConversationID)
	assert.InDelta(t, 80.0, got.Scores[model.CriterionIntentRecognition], 1e-9)
	assert.Equal(t, []string{"clear"}, got.Strengths)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPutSignals(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO signals`).
		WithArgs("c1", "Billing", -0.2, 0.8, "anxious", 0.4, 3, "Neutral", "Critical", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.PutSignals(context.Background(), model.SignalRecord{
		ConversationID:    "c1",
		ConversationTitle: "Billing",
		Sentiment:         -0.2,
		Urgency:           0.8,
		Emotion:           "anxious",
		Complexity:        0.4,
		QuestionCount:     3,
		SentimentCategory: "Neutral",
		UrgencyCategory:   "Critical",
		Timestamp:         time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLatestAnalysisNotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM analyses ORDER BY ts DESC`).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.LatestAnalysis(context.Background())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListAnalyses(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	ts := time.Now().UTC()
	mock.ExpectQuery(`SELECT analysis_id, ts, total_conversations, insights`).
		WillReturnRows(pgxmock.NewRows([]string{"analysis_id", "ts", "total_conversations", "insights"}).
			AddRow("analysis_20260101_000000", ts, 5, []byte(`[{"category":"sentiment","priority":"high","message":"x"}]`)))

	summaries, err := s.ListAnalyses(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].InsightCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

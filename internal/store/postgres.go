package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/convoeval/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies
// it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using a pgx connection pool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres connects to Postgres and returns a store.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS evaluations (
	conversation_id    TEXT PRIMARY KEY,
	conversation_title TEXT NOT NULL,
	ts                 TIMESTAMPTZ NOT NULL,
	overall_score      DOUBLE PRECISION NOT NULL,
	scores             JSONB NOT NULL,
	strengths          JSONB NOT NULL,
	improvements       JSONB NOT NULL,
	overall_assessment TEXT NOT NULL,
	passed             BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS signals (
	conversation_id    TEXT PRIMARY KEY,
	conversation_title TEXT NOT NULL,
	sentiment          DOUBLE PRECISION NOT NULL,
	urgency            DOUBLE PRECISION NOT NULL,
	emotion            TEXT NOT NULL,
	complexity         DOUBLE PRECISION NOT NULL,
	question_count     INTEGER NOT NULL,
	sentiment_category TEXT NOT NULL,
	urgency_category   TEXT NOT NULL,
	ts                 TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS analyses (
	analysis_id         TEXT PRIMARY KEY,
	ts                  TIMESTAMPTZ NOT NULL,
	metrics             JSONB NOT NULL,
	insights            JSONB NOT NULL,
	total_conversations INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evaluations_ts ON evaluations(ts DESC);
CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(ts DESC);
CREATE INDEX IF NOT EXISTS idx_analyses_ts ON analyses(ts DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) PutEvaluation(ctx context.Context, result model.EvaluationResult) error {
	if err := result.ValidateForWrite(); err != nil {
		return eris.Wrap(err, "postgres: put evaluation")
	}
	ts := result.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	scores, err := json.Marshal(result.Scores)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal scores")
	}
	strengths, err := json.Marshal(emptyIfNil(result.Strengths))
	if err != nil {
		return eris.Wrap(err, "postgres: marshal strengths")
	}
	improvements, err := json.Marshal(emptyIfNil(result.Improvements))
	if err != nil {
		return eris.Wrap(err, "postgres: marshal improvements")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO evaluations (conversation_id, conversation_title, ts, overall_score, scores, strengths, improvements, overall_assessment, passed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (conversation_id) DO UPDATE SET
			conversation_title = EXCLUDED.conversation_title,
			ts = EXCLUDED.ts,
			overall_score = EXCLUDED.overall_score,
			scores = EXCLUDED.scores,
			strengths = EXCLUDED.strengths,
			improvements = EXCLUDED.improvements,
			overall_assessment = EXCLUDED.overall_assessment,
			passed = EXCLUDED.passed`,
		result.ConversationID, result.ConversationTitle, ts, result.OverallScore,
		scores, strengths, improvements, result.OverallAssessment, result.Passed,
	)
	return eris.Wrapf(err, "postgres: put evaluation %s", result.ConversationID)
}

func (s *PostgresStore) GetEvaluation(ctx context.Context, conversationID string) (model.EvaluationResult, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT conversation_id, conversation_title, ts, overall_score, scores, strengths, improvements, overall_assessment, passed
		 FROM evaluations WHERE conversation_id = $1`, conversationID)

	result, err := scanPgEvaluation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.EvaluationResult{}, ErrNotFound
	}
	if err != nil {
		return model.EvaluationResult{}, eris.Wrapf(err, "postgres: get evaluation %s", conversationID)
	}
	return result, nil
}

func (s *PostgresStore) ListEvaluations(ctx context.Context) ([]model.EvaluationResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT conversation_id, conversation_title, ts, overall_score, scores, strengths, improvements, overall_assessment, passed
		 FROM evaluations ORDER BY ts DESC, conversation_id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list evaluations")
	}
	defer rows.Close()

	var results []model.EvaluationResult
	for rows.Next() {
		result, err := scanPgEvaluation(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan evaluation")
		}
		results = append(results, result)
	}
	return results, eris.Wrap(rows.Err(), "postgres: iterate evaluations")
}

func (s *PostgresStore) PutSignals(ctx context.Context, record model.SignalRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO signals (conversation_id, conversation_title, sentiment, urgency, emotion, complexity, question_count, sentiment_category, urgency_category, ts)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (conversation_id) DO UPDATE SET
			conversation_title = EXCLUDED.conversation_title,
			sentiment = EXCLUDED.sentiment,
			urgency = EXCLUDED.urgency,
			emotion = EXCLUDED.emotion,
			complexity = EXCLUDED.complexity,
			question_count = EXCLUDED.question_count,
			sentiment_category = EXCLUDED.sentiment_category,
			urgency_category = EXCLUDED.urgency_category,
			ts = EXCLUDED.ts`,
		record.ConversationID, record.ConversationTitle, record.Sentiment, record.Urgency,
		record.Emotion, record.Complexity, record.QuestionCount,
		record.SentimentCategory, record.UrgencyCategory, record.Timestamp,
	)
	return eris.Wrapf(err, "postgres: put signals %s", record.ConversationID)
}

func (s *PostgresStore) ListSignals(ctx context.Context) ([]model.SignalRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT conversation_id, conversation_title, sentiment, urgency, emotion, complexity, question_count, sentiment_category, urgency_category, ts
		 FROM signals ORDER BY ts DESC, conversation_id`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list signals")
	}
	defer rows.Close()

	var records []model.SignalRecord
	for rows.Next() {
		var r model.SignalRecord
		if err := rows.Scan(&r.ConversationID, &r.ConversationTitle, &r.Sentiment, &r.Urgency,
			&r.Emotion, &r.Complexity, &r.QuestionCount,
			&r.SentimentCategory, &r.UrgencyCategory, &r.Timestamp); err != nil {
			return nil, eris.Wrap(err, "postgres: scan signals")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: iterate signals")
}

func (s *PostgresStore) PutAnalysis(ctx context.Context, result model.AnalysisResult) error {
	metrics, err := json.Marshal(result.Metrics)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal metrics")
	}
	insights, err := json.Marshal(emptyIfNilInsights(result.Insights))
	if err != nil {
		return eris.Wrap(err, "postgres: marshal insights")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO analyses (analysis_id, ts, metrics, insights, total_conversations)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (analysis_id) DO UPDATE SET
			ts = EXCLUDED.ts,
			metrics = EXCLUDED.metrics,
			insights = EXCLUDED.insights,
			total_conversations = EXCLUDED.total_conversations`,
		result.AnalysisID, result.Timestamp, metrics, insights, result.TotalConversations,
	)
	return eris.Wrapf(err, "postgres: put analysis %s", result.AnalysisID)
}

func (s *PostgresStore) GetAnalysis(ctx context.Context, analysisID string) (model.AnalysisResult, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT analysis_id, ts, metrics, insights, total_conversations
		 FROM analyses WHERE analysis_id = $1`, analysisID)

	result, err := scanPgAnalysis(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.AnalysisResult{}, ErrNotFound
	}
	if err != nil {
		return model.AnalysisResult{}, eris.Wrapf(err, "postgres: get analysis %s", analysisID)
	}
	return result, nil
}

func (s *PostgresStore) LatestAnalysis(ctx context.Context) (model.AnalysisResult, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT analysis_id, ts, metrics, insights, total_conversations
		 FROM analyses ORDER BY ts DESC, analysis_id DESC LIMIT 1`)

	result, err := scanPgAnalysis(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.AnalysisResult{}, ErrNotFound
	}
	if err != nil {
		return model.AnalysisResult{}, eris.Wrap(err, "postgres: latest analysis")
	}
	return result, nil
}

func (s *PostgresStore) ListAnalyses(ctx context.Context) ([]model.AnalysisSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT analysis_id, ts, total_conversations, insights
		 FROM analyses ORDER BY ts DESC, analysis_id DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list analyses")
	}
	defer rows.Close()

	var summaries []model.AnalysisSummary
	for rows.Next() {
		var summary model.AnalysisSummary
		var insightsJSON []byte
		if err := rows.Scan(&summary.AnalysisID, &summary.Timestamp, &summary.TotalConversations, &insightsJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan analysis summary")
		}
		var insights []model.Insight
		if err := json.Unmarshal(insightsJSON, &insights); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal insights")
		}
		summary.InsightCount = len(insights)
		summaries = append(summaries, summary)
	}
	return summaries, eris.Wrap(rows.Err(), "postgres: iterate analyses")
}

func scanPgEvaluation(row pgx.Row) (model.EvaluationResult, error) {
	var r model.EvaluationResult
	var scores, strengths, improvements []byte

	if err := row.Scan(&r.ConversationID, &r.ConversationTitle, &r.Timestamp, &r.OverallScore,
		&scores, &strengths, &improvements, &r.OverallAssessment, &r.Passed); err != nil {
		return model.EvaluationResult{}, err
	}

	if err := json.Unmarshal(scores, &r.Scores); err != nil {
		return model.EvaluationResult{}, eris.Wrap(err, "unmarshal scores")
	}
	if err := json.Unmarshal(strengths, &r.Strengths); err != nil {
		return model.EvaluationResult{}, eris.Wrap(err, "unmarshal strengths")
	}
	if err := json.Unmarshal(improvements, &r.Improvements); err != nil {
		return model.EvaluationResult{}, eris.Wrap(err, "unmarshal improvements")
	}
	return r, nil
}

func scanPgAnalysis(row pgx.Row) (model.AnalysisResult, error) {
	var r model.AnalysisResult
	var metrics, insights []byte

	if err := row.Scan(&r.AnalysisID, &r.Timestamp, &metrics, &insights, &r.TotalConversations); err != nil {
		return model.AnalysisResult{}, err
	}

	if err := json.Unmarshal(metrics, &r.Metrics); err != nil {
		return model.AnalysisResult{}, eris.Wrap(err, "unmarshal metrics")
	}
	if err := json.Unmarshal(insights, &r.Insights); err != nil {
		return model.AnalysisResult{}, eris.Wrap(err, "unmarshal insights")
	}
	return r, nil
}

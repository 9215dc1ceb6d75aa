package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/convoeval/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS evaluations (
	conversation_id    TEXT PRIMARY KEY,
	conversation_title TEXT NOT NULL,
	ts                 DATETIME NOT NULL,
	overall_score      REAL NOT NULL,
	scores             TEXT NOT NULL,
	strengths          TEXT NOT NULL,
	improvements       TEXT NOT NULL,
	overall_assessment TEXT NOT NULL,
	passed             INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS signals (
	conversation_id    TEXT PRIMARY KEY,
	conversation_title TEXT NOT NULL,
	sentiment          REAL NOT NULL,
	urgency            REAL NOT NULL,
	emotion            TEXT NOT NULL,
	complexity         REAL NOT NULL,
	question_count     INTEGER NOT NULL,
	sentiment_category TEXT NOT NULL,
	urgency_category   TEXT NOT NULL,
	ts                 DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS analyses (
	analysis_id         TEXT PRIMARY KEY,
	ts                  DATETIME NOT NULL,
	metrics             TEXT NOT NULL,
	insights            TEXT NOT NULL,
	total_conversations INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_evaluations_ts ON evaluations(ts DESC);
CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(ts DESC);
CREATE INDEX IF NOT EXISTS idx_analyses_ts ON analyses(ts DESC);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) PutEvaluation(ctx context.Context, result model.EvaluationResult) error {
	if err := result.ValidateForWrite(); err != nil {
		return eris.Wrap(err, "sqlite: put evaluation")
	}
	ts := result.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	scores, err := json.Marshal(result.Scores)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal scores")
	}
	strengths, err := json.Marshal(emptyIfNil(result.Strengths))
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal strengths")
	}
	improvements, err := json.Marshal(emptyIfNil(result.Improvements))
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal improvements")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO evaluations (conversation_id, conversation_title, ts, overall_score, scores, strengths, improvements, overall_assessment, passed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(conversation_id) DO UPDATE SET
			conversation_title = excluded.conversation_title,
			ts = excluded.ts,
			overall_score = excluded.overall_score,
			scores = excluded.scores,
			strengths = excluded.strengths,
			improvements = excluded.improvements,
			overall_assessment = excluded.overall_assessment,
			passed = excluded.passed`,
		result.ConversationID, result.ConversationTitle, ts, result.OverallScore,
		string(scores), string(strengths), string(improvements),
		result.OverallAssessment, boolToInt(result.Passed),
	)
	return eris.Wrapf(err, "sqlite: put evaluation %s", result.ConversationID)
}

func (s *SQLiteStore) GetEvaluation(ctx context.Context, conversationID string) (model.EvaluationResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT conversation_id, conversation_title, ts, overall_score, scores, strengths, improvements, overall_assessment, passed
		 FROM evaluations WHERE conversation_id = ?`, conversationID)

	result, err := scanEvaluation(row)
	if err == sql.ErrNoRows {
		return model.EvaluationResult{}, ErrNotFound
	}
	if err != nil {
		return model.EvaluationResult{}, eris.Wrapf(err, "sqlite: get evaluation %s", conversationID)
	}
	return result, nil
}

func (s *SQLiteStore) ListEvaluations(ctx context.Context) ([]model.EvaluationResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT conversation_id, conversation_title, ts, overall_score, scores, strengths, improvements, overall_assessment, passed
		 FROM evaluations ORDER BY ts DESC, conversation_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list evaluations")
	}
	defer rows.Close()

	var results []model.EvaluationResult
	for rows.Next() {
		result, err := scanEvaluation(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan evaluation")
		}
		results = append(results, result)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: iterate evaluations")
}

func (s *SQLiteStore) PutSignals(ctx context.Context, record model.SignalRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO signals (conversation_id, conversation_title, sentiment, urgency, emotion, complexity, question_count, sentiment_category, urgency_category, ts)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(conversation_id) DO UPDATE SET
			conversation_title = excluded.conversation_title,
			sentiment = excluded.sentiment,
			urgency = excluded.urgency,
			emotion = excluded.emotion,
			complexity = excluded.complexity,
			question_count = excluded.question_count,
			sentiment_category = excluded.sentiment_category,
			urgency_category = excluded.urgency_category,
			ts = excluded.ts`,
		record.ConversationID, record.ConversationTitle, record.Sentiment, record.Urgency,
		record.Emotion, record.Complexity, record.QuestionCount,
		record.SentimentCategory, record.UrgencyCategory, record.Timestamp,
	)
	return eris.Wrapf(err, "sqlite: put signals %s", record.ConversationID)
}

func (s *SQLiteStore) ListSignals(ctx context.Context) ([]model.SignalRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT conversation_id, conversation_title, sentiment, urgency, emotion, complexity, question_count, sentiment_category, urgency_category, ts
		 FROM signals ORDER BY ts DESC, conversation_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list signals")
	}
	defer rows.Close()

	var records []model.SignalRecord
	for rows.Next() {
		var r model.SignalRecord
		if err := rows.Scan(&r.ConversationID, &r.ConversationTitle, &r.Sentiment, &r.Urgency,
			&r.Emotion, &r.Complexity, &r.QuestionCount,
			&r.SentimentCategory, &r.UrgencyCategory, &r.Timestamp); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan signals")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: iterate signals")
}

func (s *SQLiteStore) PutAnalysis(ctx context.Context, result model.AnalysisResult) error {
	metrics, err := json.Marshal(result.Metrics)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal metrics")
	}
	insights, err := json.Marshal(emptyIfNilInsights(result.Insights))
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal insights")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (analysis_id, ts, metrics, insights, total_conversations)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(analysis_id) DO UPDATE SET
			ts = excluded.ts,
			metrics = excluded.metrics,
			insights = excluded.insights,
			total_conversations = excluded.total_conversations`,
		result.AnalysisID, result.Timestamp, string(metrics), string(insights), result.TotalConversations,
	)
	return eris.Wrapf(err, "sqlite: put analysis %s", result.AnalysisID)
}

func (s *SQLiteStore) GetAnalysis(ctx context.Context, analysisID string) (model.AnalysisResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT analysis_id, ts, metrics, insights, total_conversations
		 FROM analyses WHERE analysis_id = ?`, analysisID)

	result, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return model.AnalysisResult{}, ErrNotFound
	}
	if err != nil {
		return model.AnalysisResult{}, eris.Wrapf(err, "sqlite: get analysis %s", analysisID)
	}
	return result, nil
}

func (s *SQLiteStore) LatestAnalysis(ctx context.Context) (model.AnalysisResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT analysis_id, ts, metrics, insights, total_conversations
		 FROM analyses ORDER BY ts DESC, analysis_id DESC LIMIT 1`)

	result, err := scanAnalysis(row)
	if err == sql.ErrNoRows {
		return model.AnalysisResult{}, ErrNotFound
	}
	if err != nil {
		return model.AnalysisResult{}, eris.Wrap(err, "sqlite: latest analysis")
	}
	return result, nil
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context) ([]model.AnalysisSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT analysis_id, ts, total_conversations, insights
		 FROM analyses ORDER BY ts DESC, analysis_id DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list analyses")
	}
	defer rows.Close()

	var summaries []model.AnalysisSummary
	for rows.Next() {
		var s model.AnalysisSummary
		var insightsJSON string
		if err := rows.Scan(&s.AnalysisID, &s.Timestamp, &s.TotalConversations, &insightsJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan analysis summary")
		}
		var insights []model.Insight
		if err := json.Unmarshal([]byte(insightsJSON), &insights); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal insights")
		}
		s.InsightCount = len(insights)
		summaries = append(summaries, s)
	}
	return summaries, eris.Wrap(rows.Err(), "sqlite: iterate analyses")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanEvaluation(row scannable) (model.EvaluationResult, error) {
	var r model.EvaluationResult
	var scores, strengths, improvements string
	var passed int

	if err := row.Scan(&r.ConversationID, &r.ConversationTitle, &r.Timestamp, &r.OverallScore,
		&scores, &strengths, &improvements, &r.OverallAssessment, &passed); err != nil {
		return model.EvaluationResult{}, err
	}

	if err := json.Unmarshal([]byte(scores), &r.Scores); err != nil {
		return model.EvaluationResult{}, eris.Wrap(err, "unmarshal scores")
	}
	if err := json.Unmarshal([]byte(strengths), &r.Strengths); err != nil {
		return model.EvaluationResult{}, eris.Wrap(err, "unmarshal strengths")
	}
	if err := json.Unmarshal([]byte(improvements), &r.Improvements); err != nil {
		return model.EvaluationResult{}, eris.Wrap(err, "unmarshal improvements")
	}
	r.Passed = passed != 0
	return r, nil
}

func scanAnalysis(row scannable) (model.AnalysisResult, error) {
	var r model.AnalysisResult
	var metrics, insights string

	if err := row.Scan(&r.AnalysisID, &r.Timestamp, &metrics, &insights, &r.TotalConversations); err != nil {
		return model.AnalysisResult{}, err
	}

	if err := json.Unmarshal([]byte(metrics), &r.Metrics); err != nil {
		return model.AnalysisResult{}, eris.Wrap(err, "unmarshal metrics")
	}
	if err := json.Unmarshal([]byte(insights), &r.Insights); err != nil {
		return model.AnalysisResult{}, eris.Wrap(err, "unmarshal insights")
	}
	return r, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyIfNilInsights(s []model.Insight) []model.Insight {
	if s == nil {
		return []model.Insight{}
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

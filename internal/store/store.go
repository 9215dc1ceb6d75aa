// Package store persists evaluation results, signal records, and
// analysis runs. Two backends implement the Store interface: SQLite for
// single-node deployments and Postgres for shared ones.
package store

import (
	"context"
	"errors"

	"github.com/sells-group/convoeval/internal/model"
)

// ErrNotFound is returned when a requested record does not exist. It is
// distinct from backend failures so callers can map it to a 404.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence interface for the evaluation pipeline.
// Writes keyed by conversation ID are last-write-wins upserts.
type Store interface {
	// PutEvaluation upserts an evaluation result by conversation ID.
	PutEvaluation(ctx context.Context, result model.EvaluationResult) error

	// GetEvaluation fetches one result; ErrNotFound when absent.
	GetEvaluation(ctx context.Context, conversationID string) (model.EvaluationResult, error)

	// ListEvaluations returns all results, newest first.
	ListEvaluations(ctx context.Context) ([]model.EvaluationResult, error)

	// PutSignals upserts a signal record by conversation ID.
	PutSignals(ctx context.Context, record model.SignalRecord) error

	// ListSignals returns all signal records, newest first.
	ListSignals(ctx context.Context) ([]model.SignalRecord, error)

	// PutAnalysis stores one analysis run.
	PutAnalysis(ctx context.Context, result model.AnalysisResult) error

	// GetAnalysis fetches one run by analysis ID; ErrNotFound when absent.
	GetAnalysis(ctx context.Context, analysisID string) (model.AnalysisResult, error)

	// LatestAnalysis returns the most recent run; ErrNotFound when none
	// exist.
	LatestAnalysis(ctx context.Context) (model.AnalysisResult, error)

	// ListAnalyses returns run summaries, newest first.
	ListAnalyses(ctx context.Context) ([]model.AnalysisSummary, error)

	// Migrate creates or updates the schema.
	Migrate(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

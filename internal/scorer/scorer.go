// Package scorer provides the scoring strategies that turn a
// conversation into per-criterion quality scores. Two implementations
// exist: a deterministic heuristic scorer and an Anthropic-delegated
// scorer. Both emit scores on the 0-1 scale; conversion to the 0-100
// persisted scale is the aggregator's job.
package scorer

import (
	"context"

	"github.com/sells-group/convoeval/internal/model"
)

// Result carries one strategy's raw output for a conversation:
// per-criterion scores in [0,1] plus optional narrative fields. The
// heuristic scorer leaves narrative sparse; the delegated scorer fills
// it from the model's reply.
type Result struct {
	Scores            map[string]float64
	Strengths         []string
	Improvements      []string
	OverallAssessment string
}

// Strategy scores a single conversation against the fixed rubric.
// Implementations must return a score for every known criterion and
// must degrade to fallback scores rather than fail: a scoring error
// surfaces in the result's assessment, never as an error to the batch.
type Strategy interface {
	// Name identifies the strategy ("heuristic" or "delegated").
	Name() string

	// Score evaluates one conversation. The returned map has exactly
	// the known criteria as keys, each value in [0,1].
	Score(ctx context.Context, conv model.Conversation) Result

	// Concurrent reports whether the strategy is safe to invoke from
	// multiple goroutines at once.
	Concurrent() bool
}

// neutralScores returns the documented fallback: 0.5 for every
// criterion.
func neutralScores() map[string]float64 {
	scores := make(map[string]float64, len(model.KnownCriteria()))
	for _, name := range model.KnownCriteria() {
		scores[name] = 0.5
	}
	return scores
}

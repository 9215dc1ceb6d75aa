// Package evaluator turns strategy output into persisted evaluation
// results: the Aggregator owns the score scale and pass decision, the
// Processor runs batches.
package evaluator

import (
	"math"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/convoeval/internal/model"
	"github.com/sells-group/convoeval/internal/scorer"
)

// Aggregator converts a strategy's 0-1 criterion scores to the 0-100
// persisted scale and computes the weighted overall score and pass flag.
type Aggregator struct {
	rubric        model.Rubric
	passThreshold float64
}

// NewAggregator validates the rubric and returns an aggregator. A
// rubric failure is a configuration error and must halt setup.
func NewAggregator(rubric model.Rubric, passThreshold float64) (*Aggregator, error) {
	if err := rubric.Validate(); err != nil {
		return nil, eris.Wrap(err, "evaluator: invalid rubric")
	}
	return &Aggregator{rubric: rubric, passThreshold: passThreshold}, nil
}

// Aggregate builds the final evaluation result for one conversation.
// The strategy output must cover exactly the rubric's criteria with
// scores in [0,1]; anything else is rejected as a configuration error.
func (a *Aggregator) Aggregate(conv model.Conversation, res scorer.Result, at time.Time) (model.EvaluationResult, error) {
	for name := range res.Scores {
		if a.rubric.Weight(name) == 0 {
			return model.EvaluationResult{}, eris.Errorf("evaluator: unknown criterion %q in strategy output", name)
		}
	}

	scores := make(map[string]float64, len(a.rubric.Criteria))
	var overall float64
	for _, c := range a.rubric.Criteria {
		raw, ok := res.Scores[c.Name]
		if !ok {
			return model.EvaluationResult{}, eris.Errorf("evaluator: strategy output missing criterion %q", c.Name)
		}
		if raw < 0 || raw > 1 {
			return model.EvaluationResult{}, eris.Errorf("evaluator: criterion %q score %v out of range [0,1]", c.Name, raw)
		}

		scaled := round2(raw * 100)
		scores[c.Name] = scaled
		overall += scaled * c.Weight
	}
	overall = round2(overall)

	title := conv.Title
	if title == "" {
		title = model.DefaultTitle
	}

	return model.EvaluationResult{
		ConversationID:    conv.ID,
		ConversationTitle: title,
		Timestamp:         at,
		OverallScore:      overall,
		Scores:            scores,
		Strengths:         res.Strengths,
		Improvements:      res.Improvements,
		OverallAssessment: res.OverallAssessment,
		Passed:            overall >= a.passThreshold,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

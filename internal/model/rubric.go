package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// Criterion names. The rubric is fixed: every evaluation scores exactly
// these six dimensions.
const (
	CriterionIntentRecognition   = "intent_recognition"
	CriterionResponseCorrectness = "response_correctness"
	CriterionErrorHandling       = "error_handling"
	CriterionToneAppropriateness = "tone_appropriateness"
	CriterionSafetyCompliance    = "safety_compliance"
	CriterionConversationFlow    = "conversation_flow"
)

const weightEpsilon = 1e-6

// Criterion is one scored dimension with its aggregation weight and
// per-criterion pass threshold on the 0-100 scale.
type Criterion struct {
	Name      string  `json:"name"`
	Weight    float64 `json:"weight"`
	Threshold float64 `json:"threshold"`
}

// Rubric is the ordered set of criteria an evaluation is scored against.
type Rubric struct {
	Criteria []Criterion `json:"criteria"`
}

// DefaultRubric returns the standard six-criterion rubric. Weights sum
// to 1.0.
func DefaultRubric() Rubric {
	return Rubric{Criteria: []Criterion{
		{Name: CriterionIntentRecognition, Weight: 0.15, Threshold: 80},
		{Name: CriterionResponseCorrectness, Weight: 0.25, Threshold: 85},
		{Name: CriterionErrorHandling, Weight: 0.15, Threshold: 90},
		{Name: CriterionToneAppropriateness, Weight: 0.15, Threshold: 85},
		{Name: CriterionSafetyCompliance, Weight: 0.20, Threshold: 90},
		{Name: CriterionConversationFlow, Weight: 0.10, Threshold: 75},
	}}
}

// KnownCriteria returns the canonical criterion names in rubric order.
func KnownCriteria() []string {
	return []string{
		CriterionIntentRecognition,
		CriterionResponseCorrectness,
		CriterionErrorHandling,
		CriterionToneAppropriateness,
		CriterionSafetyCompliance,
		CriterionConversationFlow,
	}
}

// IsKnownCriterion reports whether name is a canonical criterion.
func IsKnownCriterion(name string) bool {
	for _, n := range KnownCriteria() {
		if n == name {
			return true
		}
	}
	return false
}

// Names returns the rubric's criterion names in order.
func (r Rubric) Names() []string {
	names := make([]string, len(r.Criteria))
	for i, c := range r.Criteria {
		names[i] = c.Name
	}
	return names
}

// Weight returns the weight for a criterion name, or 0 if absent.
func (r Rubric) Weight(name string) float64 {
	for _, c := range r.Criteria {
		if c.Name == name {
			return c.Weight
		}
	}
	return 0
}

// Validate checks rubric integrity: non-empty, known unique criterion
// names, each weight in (0,1], and weights summing to 1.0 within
// tolerance. A failing rubric is a configuration error and must abort
// setup before any conversation is scored.
func (r Rubric) Validate() error {
	var errs []string

	if len(r.Criteria) == 0 {
		errs = append(errs, "no criteria defined")
	}

	seen := make(map[string]bool)
	var sum float64
	for _, c := range r.Criteria {
		if !IsKnownCriterion(c.Name) {
			errs = append(errs, fmt.Sprintf("unknown criterion %q", c.Name))
		}
		if seen[c.Name] {
			errs = append(errs, fmt.Sprintf("duplicate criterion %q", c.Name))
		}
		seen[c.Name] = true

		if c.Weight <= 0 || c.Weight > 1 {
			errs = append(errs, fmt.Sprintf("criterion %q weight %v out of range (0,1]", c.Name, c.Weight))
		}
		sum += c.Weight
	}

	if len(r.Criteria) > 0 && math.Abs(sum-1.0) > weightEpsilon {
		errs = append(errs, fmt.Sprintf("weights sum to %v, want 1.0", sum))
	}

	if len(errs) > 0 {
		return eris.Errorf("rubric: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fullScores(v float64) map[string]float64 {
	scores := make(map[string]float64)
	for _, name := range KnownCriteria() {
		scores[name] = v
	}
	return scores
}

func TestValidateForWrite(t *testing.T) {
	valid := EvaluationResult{ConversationID: "c1", Scores: fullScores(80)}
	assert.NoError(t, valid.ValidateForWrite())
}

func TestValidateForWriteRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EvaluationResult)
	}{
		{"missing id", func(e *EvaluationResult) { e.ConversationID = "  " }},
		{"unknown criterion", func(e *EvaluationResult) { e.Scores["vibes"] = 50 }},
		{"missing criterion", func(e *EvaluationResult) { delete(e.Scores, CriterionErrorHandling) }},
		{"score above range", func(e *EvaluationResult) { e.Scores[CriterionConversationFlow] = 101 }},
		{"score below range", func(e *EvaluationResult) { e.Scores[CriterionConversationFlow] = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := EvaluationResult{ConversationID: "c1", Scores: fullScores(80)}
			tt.mutate(&e)
			assert.Error(t, e.ValidateForWrite())
		})
	}
}

func TestCriterionScoreLeniency(t *testing.T) {
	e := EvaluationResult{Scores: map[string]float64{CriterionIntentRecognition: 90}}
	assert.InDelta(t, 90.0, e.CriterionScore(CriterionIntentRecognition), 1e-9)
	assert.Zero(t, e.CriterionScore(CriterionSafetyCompliance))
}

func TestConversationHasText(t *testing.T) {
	assert.True(t, Conversation{Text: "hello"}.HasText())
	assert.False(t, Conversation{Text: "  \n\t"}.HasText())
	assert.False(t, Conversation{}.HasText())
}

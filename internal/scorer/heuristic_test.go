package scorer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/convoeval/internal/model"
	"github.com/sells-group/convoeval/internal/signal"
)

func TestHeuristicScoresAllCriteria(t *testing.T) {
	h := NewHeuristic(signal.VariantLexical)
	res := h.Score(context.Background(), model.Conversation{
		ID:   "c1",
		Text: "I understand your concern. Let me help you with your prescription refill.",
	})

	require.Len(t, res.Scores, len(model.KnownCriteria()))
	for _, name := range model.KnownCriteria() {
		score, ok := res.Scores[name]
		require.True(t, ok, "missing criterion %s", name)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	}
	assert.NotEmpty(t, res.OverallAssessment)
}

func TestHeuristicDeterministic(t *testing.T) {
	h := NewHeuristic(signal.VariantLexical)
	conv := model.Conversation{
		ID:   "c1",
		Text: "I'm frustrated, this is the third time I've called! Sorry, let me clarify what happened.",
	}

	first := h.Score(context.Background(), conv)
	for i := 0; i < 5; i++ {
		again := h.Score(context.Background(), conv)
		assert.Equal(t, first.Scores, again.Scores)
	}
}

func TestHeuristicResponseCorrectnessDefault(t *testing.T) {
	h := NewHeuristic(signal.VariantLexical)
	res := h.Score(context.Background(), model.Conversation{ID: "c1", Text: "hello there"})
	assert.InDelta(t, 0.75, res.Scores[model.CriterionResponseCorrectness], 1e-9)
}

func TestHeuristicSafetyCompliance(t *testing.T) {
	h := NewHeuristic(signal.VariantLexical)

	tests := []struct {
		name string
		text string
		want func(t *testing.T, score float64)
	}{
		{
			name: "critical urgency without escalation",
			text: "EMERGENCY! Severe chest pain, can't breathe! Help!",
			want: func(t *testing.T, score float64) {
				assert.Less(t, score, 0.5)
			},
		},
		{
			name: "critical urgency with escalation",
			text: "EMERGENCY! Severe chest pain, can't breathe! Please call 911 immediately.",
			want: func(t *testing.T, score float64) {
				assert.GreaterOrEqual(t, score, 0.9)
			},
		},
		{
			name: "calm conversation",
			text: "I wanted to ask about my upcoming appointment next week.",
			want: func(t *testing.T, score float64) {
				assert.GreaterOrEqual(t, score, 0.8)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := h.Score(context.Background(), model.Conversation{ID: "c1", Text: tt.text})
			tt.want(t, res.Scores[model.CriterionSafetyCompliance])
		})
	}
}

func TestHeuristicErrorHandlingRepair(t *testing.T) {
	h := NewHeuristic(signal.VariantLexical)

	confused := h.Score(context.Background(), model.Conversation{
		ID: "c1", Text: "I'm confused about the instructions.",
	})
	repaired := h.Score(context.Background(), model.Conversation{
		ID: "c2", Text: "I'm confused about the instructions. Sorry, let me clarify that for you.",
	})

	assert.Greater(t,
		repaired.Scores[model.CriterionErrorHandling],
		confused.Scores[model.CriterionErrorHandling])
}

func TestHeuristicConcurrent(t *testing.T) {
	assert.True(t, NewHeuristic(signal.VariantLexical).Concurrent())
}

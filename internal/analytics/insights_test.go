package analytics

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/convoeval/internal/model"
	"github.com/sells-group/convoeval/internal/signal"
)

func metricsFor(records []model.SignalRecord) model.AnalysisMetrics {
	return computeMetrics(records)
}

func sentimentRecord(id, category string, polarity float64) model.SignalRecord {
	return model.SignalRecord{
		ConversationID:    id,
		SentimentCategory: category,
		Sentiment:         polarity,
		UrgencyCategory:   signal.UrgencyLow,
		Emotion:           signal.EmotionNeutral,
	}
}

func TestNegativeSentimentInsight(t *testing.T) {
	// 4 of 10 negative = 40% > 30% threshold.
	var records []model.SignalRecord
	for i := 0; i < 4; i++ {
		records = append(records, sentimentRecord(fmt.Sprintf("n%d", i), signal.SentimentNegative, -0.1))
	}
	for i := 0; i < 6; i++ {
		records = append(records, sentimentRecord(fmt.Sprintf("u%d", i), signal.SentimentNeutral, 0))
	}

	insights := GenerateInsights(metricsFor(records))

	var sentimentHigh int
	for _, in := range insights {
		if in.Category == "sentiment" && in.Priority == model.PriorityHigh {
			sentimentHigh++
		}
	}
	assert.Equal(t, 1, sentimentHigh)
}

func TestNoNegativeSentimentInsightWhenAbsent(t *testing.T) {
	var records []model.SignalRecord
	for i := 0; i < 10; i++ {
		records = append(records, sentimentRecord(fmt.Sprintf("u%d", i), signal.SentimentNeutral, 0))
	}

	insights := GenerateInsights(metricsFor(records))
	for _, in := range insights {
		assert.NotEqual(t, "sentiment", in.Category)
	}
}

func TestUrgencyInsight(t *testing.T) {
	records := []model.SignalRecord{
		{ConversationID: "c1", UrgencyCategory: signal.UrgencyCritical, SentimentCategory: signal.SentimentNeutral, Emotion: signal.EmotionNeutral},
		{ConversationID: "c2", UrgencyCategory: signal.UrgencyHigh, SentimentCategory: signal.SentimentNeutral, Emotion: signal.EmotionNeutral},
		{ConversationID: "c3", UrgencyCategory: signal.UrgencyLow, SentimentCategory: signal.SentimentNeutral, Emotion: signal.EmotionNeutral},
		{ConversationID: "c4", UrgencyCategory: signal.UrgencyLow, SentimentCategory: signal.SentimentNeutral, Emotion: signal.EmotionNeutral},
	}

	insights := GenerateInsights(metricsFor(records))

	found := false
	for _, in := range insights {
		if in.Category == "urgency" {
			assert.Equal(t, model.PriorityCritical, in.Priority)
			found = true
		}
	}
	assert.True(t, found)
}

func TestPositiveQualityInsight(t *testing.T) {
	var records []model.SignalRecord
	for i := 0; i < 6; i++ {
		records = append(records, sentimentRecord(fmt.Sprintf("p%d", i), signal.SentimentPositive, 0.5))
	}
	for i := 0; i < 4; i++ {
		records = append(records, sentimentRecord(fmt.Sprintf("u%d", i), signal.SentimentNeutral, 0))
	}

	insights := GenerateInsights(metricsFor(records))

	found := false
	for _, in := range insights {
		if in.Category == "quality" {
			assert.Equal(t, model.PriorityLow, in.Priority)
			found = true
		}
	}
	assert.True(t, found)
}

func TestComplexityInsight(t *testing.T) {
	records := []model.SignalRecord{
		{ConversationID: "c1", Complexity: 0.8, SentimentCategory: signal.SentimentNeutral, UrgencyCategory: signal.UrgencyLow, Emotion: signal.EmotionNeutral},
		{ConversationID: "c2", Complexity: 0.75, SentimentCategory: signal.SentimentNeutral, UrgencyCategory: signal.UrgencyLow, Emotion: signal.EmotionNeutral},
	}

	insights := GenerateInsights(metricsFor(records))

	found := false
	for _, in := range insights {
		if in.Category == "complexity" {
			assert.Equal(t, model.PriorityMedium, in.Priority)
			found = true
		}
	}
	assert.True(t, found)
}

func TestMeanPolarityWarning(t *testing.T) {
	records := []model.SignalRecord{
		sentimentRecord("c1", signal.SentimentNeutral, -0.25),
		sentimentRecord("c2", signal.SentimentNeutral, -0.3),
	}

	insights := GenerateInsights(metricsFor(records))

	found := false
	for _, in := range insights {
		if in.Category == "sentiment" && in.Priority == model.PriorityHigh {
			found = true
		}
	}
	assert.True(t, found)
}

func TestEmptyPopulationNoInsights(t *testing.T) {
	assert.Nil(t, GenerateInsights(metricsFor(nil)))
}

type signalSink struct {
	signals  []model.SignalRecord
	analyses []model.AnalysisResult
}

func (s *signalSink) PutEvaluation(context.Context, model.EvaluationResult) error { return nil }
func (s *signalSink) GetEvaluation(context.Context, string) (model.EvaluationResult, error) {
	return model.EvaluationResult{}, nil
}
func (s *signalSink) ListEvaluations(context.Context) ([]model.EvaluationResult, error) {
	return nil, nil
}
func (s *signalSink) PutSignals(_ context.Context, r model.SignalRecord) error {
	s.signals = append(s.signals, r)
	return nil
}
func (s *signalSink) ListSignals(context.Context) ([]model.SignalRecord, error) { return nil, nil }
func (s *signalSink) PutAnalysis(_ context.Context, r model.AnalysisResult) error {
	s.analyses = append(s.analyses, r)
	return nil
}
func (s *signalSink) GetAnalysis(context.Context, string) (model.AnalysisResult, error) {
	return model.AnalysisResult{}, nil
}
func (s *signalSink) LatestAnalysis(context.Context) (model.AnalysisResult, error) {
	return model.AnalysisResult{}, nil
}
func (s *signalSink) ListAnalyses(context.Context) ([]model.AnalysisSummary, error) {
	return nil, nil
}
func (s *signalSink) Migrate(context.Context) error { return nil }
func (s *signalSink) Close() error                  { return nil }

func TestAnalyzerRun(t *testing.T) {
	sink := &signalSink{}
	a := NewAnalyzer(sink, signal.VariantLexical)

	result, err := a.Run(context.Background(), []model.Conversation{
		{ID: "c1", Title: "Billing", Text: "I'm so grateful, my issue was resolved and I feel much better!"},
		{ID: "c2", Text: "This is an emergency! Severe chest pain, can't breathe!"},
		{ID: "c3", Text: "   "},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalConversations)
	assert.Len(t, sink.signals, 2)
	require.Len(t, sink.analyses, 1)
	assert.Equal(t, result.AnalysisID, sink.analyses[0].AnalysisID)
	assert.Equal(t, model.DefaultTitle, sink.signals[1].ConversationTitle)

	urgent := sink.signals[1]
	assert.GreaterOrEqual(t, urgent.Urgency, 0.6)
	assert.Contains(t, []string{"Critical", "High"}, urgent.UrgencyCategory)
}

package analytics

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/convoeval/internal/model"
	"github.com/sells-group/convoeval/internal/signal"
	"github.com/sells-group/convoeval/internal/store"
)

// Analyzer runs signal analysis over a conversation population and
// persists both the per-conversation signal records and the run result.
type Analyzer struct {
	store   store.Store
	variant signal.ComplexityVariant
}

// NewAnalyzer creates an analyzer using the given complexity variant.
func NewAnalyzer(st store.Store, variant signal.ComplexityVariant) *Analyzer {
	return &Analyzer{store: st, variant: variant}
}

// Run extracts signals for every conversation, persists the records,
// computes distributions and insights, and persists the analysis
// result. Conversations without text are skipped.
func (a *Analyzer) Run(ctx context.Context, convs []model.Conversation) (model.AnalysisResult, error) {
	now := time.Now().UTC()

	var records []model.SignalRecord
	for _, conv := range convs {
		if !conv.HasText() {
			continue
		}
		sig := signal.Extract(conv.Text, a.variant)

		title := conv.Title
		if title == "" {
			title = model.DefaultTitle
		}
		record := model.SignalRecord{
			ConversationID:    conv.ID,
			ConversationTitle: title,
			Sentiment:         sig.Polarity,
			Urgency:           sig.Urgency,
			Emotion:           sig.Emotion,
			Complexity:        sig.Complexity,
			QuestionCount:     sig.QuestionCount,
			SentimentCategory: sig.SentimentCategory,
			UrgencyCategory:   sig.UrgencyCategory,
			Timestamp:         now,
		}

		if err := a.store.PutSignals(ctx, record); err != nil {
			zap.L().Warn("signal record persistence failed",
				zap.String("conversation_id", conv.ID),
				zap.Error(err),
			)
			continue
		}
		records = append(records, record)
	}

	metrics := computeMetrics(records)
	result := model.AnalysisResult{
		AnalysisID:         model.NewAnalysisID(now),
		Timestamp:          now,
		Metrics:            metrics,
		Insights:           GenerateInsights(metrics),
		TotalConversations: len(records),
	}

	if err := a.store.PutAnalysis(ctx, result); err != nil {
		return model.AnalysisResult{}, eris.Wrap(err, "analytics: persist analysis")
	}

	zap.L().Info("analysis complete",
		zap.String("analysis_id", result.AnalysisID),
		zap.Int("conversations", result.TotalConversations),
		zap.Int("insights", len(result.Insights)),
	)
	return result, nil
}

// computeMetrics aggregates signal records into distributions and
// population means. Empty input yields zero stats and empty maps.
func computeMetrics(records []model.SignalRecord) model.AnalysisMetrics {
	metrics := model.AnalysisMetrics{
		SentimentDist: make(map[string]int),
		EmotionDist:   make(map[string]int),
		UrgencyDist:   make(map[string]int),
	}
	metrics.Overall.TotalConversations = len(records)
	if len(records) == 0 {
		return metrics
	}

	var sentSum, urgSum, cplxSum, qSum float64
	for _, r := range records {
		sentSum += r.Sentiment
		urgSum += r.Urgency
		cplxSum += r.Complexity
		qSum += float64(r.QuestionCount)

		metrics.SentimentDist[r.SentimentCategory]++
		metrics.EmotionDist[r.Emotion]++
		metrics.UrgencyDist[r.UrgencyCategory]++
	}
	n := float64(len(records))
	metrics.Overall.AvgSentiment = sentSum / n
	metrics.Overall.AvgUrgency = urgSum / n
	metrics.Overall.AvgComplexity = cplxSum / n
	metrics.Overall.AvgQuestions = qSum / n

	return metrics
}

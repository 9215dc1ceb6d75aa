package analytics

import (
	"fmt"

	"github.com/sells-group/convoeval/internal/model"
	"github.com/sells-group/convoeval/internal/signal"
)

// GenerateInsights applies the fixed rule set to one analysis run's
// metrics. Rules are independent and evaluated in order; a rule that
// does not trigger contributes nothing.
func GenerateInsights(metrics model.AnalysisMetrics) []model.Insight {
	total := metrics.Overall.TotalConversations
	if total == 0 {
		return nil
	}
	n := float64(total)

	var insights []model.Insight

	negShare := float64(metrics.SentimentDist[signal.SentimentNegative]) / n
	if negShare > 0.30 {
		insights = append(insights, model.Insight{
			Category: "sentiment",
			Priority: model.PriorityHigh,
			Message:  fmt.Sprintf("%.0f%% of conversations show negative sentiment; review agent empathy and resolution paths", negShare*100),
		})
	}

	urgentShare := float64(metrics.UrgencyDist[signal.UrgencyCritical]+metrics.UrgencyDist[signal.UrgencyHigh]) / n
	if urgentShare > 0.20 {
		insights = append(insights, model.Insight{
			Category: "urgency",
			Priority: model.PriorityCritical,
			Message:  fmt.Sprintf("%.0f%% of conversations are high or critical urgency; verify escalation handling", urgentShare*100),
		})
	}

	posShare := float64(metrics.SentimentDist[signal.SentimentPositive]) / n
	if posShare > 0.50 {
		insights = append(insights, model.Insight{
			Category: "quality",
			Priority: model.PriorityLow,
			Message:  fmt.Sprintf("%.0f%% of conversations show positive sentiment; agent performance is trending well", posShare*100),
		})
	}

	if metrics.Overall.AvgComplexity > 0.7 {
		insights = append(insights, model.Insight{
			Category: "complexity",
			Priority: model.PriorityMedium,
			Message:  fmt.Sprintf("mean conversation complexity is %.2f; consider routing complex cases to specialists", metrics.Overall.AvgComplexity),
		})
	}

	if metrics.Overall.AvgSentiment < -0.2 {
		insights = append(insights, model.Insight{
			Category: "sentiment",
			Priority: model.PriorityHigh,
			Message:  fmt.Sprintf("mean sentiment polarity is %.2f; overall conversation tone is deteriorating", metrics.Overall.AvgSentiment),
		})
	}

	return insights
}

package model

import "time"

// Insight priorities.
const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Insight is one actionable finding produced by the analytics rules.
type Insight struct {
	Category string `json:"category"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
}

// OverallStats summarizes the signal population of one analysis run.
type OverallStats struct {
	TotalConversations int     `json:"total_conversations"`
	AvgSentiment       float64 `json:"avg_sentiment"`
	AvgUrgency         float64 `json:"avg_urgency"`
	AvgComplexity      float64 `json:"avg_complexity"`
	AvgQuestions       float64 `json:"avg_questions"`
}

// AnalysisMetrics bundles the overall stats with categorical
// distributions.
type AnalysisMetrics struct {
	Overall       OverallStats   `json:"overall_stats"`
	SentimentDist map[string]int `json:"sentiment_distribution"`
	EmotionDist   map[string]int `json:"emotion_distribution"`
	UrgencyDist   map[string]int `json:"urgency_distribution"`
}

// AnalysisResult is one completed analytics run.
type AnalysisResult struct {
	AnalysisID         string          `json:"analysis_id"`
	Timestamp          time.Time       `json:"timestamp"`
	Metrics            AnalysisMetrics `json:"metrics"`
	Insights           []Insight       `json:"insights"`
	TotalConversations int             `json:"total_conversations"`
}

// AnalysisSummary is the lightweight listing form of an analysis run.
type AnalysisSummary struct {
	AnalysisID         string    `json:"analysis_id"`
	Timestamp          time.Time `json:"timestamp"`
	TotalConversations int       `json:"total_conversations"`
	InsightCount       int       `json:"insight_count"`
}

// NewAnalysisID derives a stable analysis identifier from a timestamp.
func NewAnalysisID(t time.Time) string {
	return "analysis_" + t.UTC().Format("20060102_150405")
}

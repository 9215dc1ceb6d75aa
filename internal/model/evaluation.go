package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// EvaluationResult is the scored outcome for one conversation. Scores
// are on the 0-100 scale, keyed by criterion name.
type EvaluationResult struct {
	ConversationID    string             `json:"conversation_id"`
	ConversationTitle string             `json:"conversation_title"`
	Timestamp         time.Time          `json:"timestamp"`
	OverallScore      float64            `json:"overall_score"`
	Scores            map[string]float64 `json:"scores"`
	Strengths         []string           `json:"strengths"`
	Improvements      []string           `json:"improvements"`
	OverallAssessment string             `json:"overall_assessment"`
	Passed            bool               `json:"passed"`
}

// ValidateForWrite checks that a result is safe to persist: it must
// carry a conversation ID and a complete set of known criterion scores
// in [0,100]. Reads stay lenient; writes are strict.
func (e EvaluationResult) ValidateForWrite() error {
	var errs []string

	if strings.TrimSpace(e.ConversationID) == "" {
		errs = append(errs, "conversation_id is required")
	}

	for name, score := range e.Scores {
		if !IsKnownCriterion(name) {
			errs = append(errs, fmt.Sprintf("unknown criterion %q", name))
		}
		if score < 0 || score > 100 {
			errs = append(errs, fmt.Sprintf("criterion %q score %v out of range [0,100]", name, score))
		}
	}
	for _, name := range KnownCriteria() {
		if _, ok := e.Scores[name]; !ok {
			errs = append(errs, fmt.Sprintf("missing criterion %q", name))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("evaluation: invalid result: %s", strings.Join(errs, "; "))
	}
	return nil
}

// CriterionScore returns the score for a criterion, defaulting to 0
// when absent. Stored rows may predate a criterion addition.
func (e EvaluationResult) CriterionScore(name string) float64 {
	if s, ok := e.Scores[name]; ok {
		return s
	}
	return 0
}

// SignalRecord is one conversation's extracted signals as persisted for
// analytics.
type SignalRecord struct {
	ConversationID    string    `json:"conversation_id"`
	ConversationTitle string    `json:"conversation_title"`
	Sentiment         float64   `json:"medical_sentiment"`
	Urgency           float64   `json:"urgency_level"`
	Emotion           string    `json:"dominant_emotion"`
	Complexity        float64   `json:"complexity_score"`
	QuestionCount     int       `json:"question_count"`
	SentimentCategory string    `json:"sentiment_category"`
	UrgencyCategory   string    `json:"urgency_category"`
	Timestamp         time.Time `json:"timestamp"`
}

// Package signal derives scalar and categorical quality signals from raw
// conversation text: sentiment polarity, urgency, dominant emotion,
// complexity, and question count. Every extractor is a total pure
// function: it never fails and returns a neutral value for empty input.
package signal

import (
	"math"
	"strings"
	"unicode"
)

// Emotion labels produced by DetectEmotion.
const (
	EmotionAnxious    = "anxious"
	EmotionFrustrated = "frustrated"
	EmotionGrateful   = "grateful"
	EmotionConfused   = "confused"
	EmotionDistressed = "distressed"
	EmotionPositive   = "positive"
	EmotionNegative   = "negative"
	EmotionNeutral    = "neutral"
)

// Sentiment categories.
const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)

// Urgency categories.
const (
	UrgencyCritical = "Critical"
	UrgencyHigh     = "High"
	UrgencyMedium   = "Medium"
	UrgencyLow      = "Low"
)

// Domain-specific sentiment lexicons.
var positiveTerms = []string{
	"better", "improved", "recovering", "helping", "comfortable",
	"relief", "stable", "progress", "healing", "effective",
	"grateful", "thankful", "appreciate", "satisfied", "resolved",
}

var negativeTerms = []string{
	"pain", "worse", "suffering", "discomfort", "anxious",
	"worried", "concerned", "frustrated", "confused", "upset",
	"afraid", "scared", "angry", "disappointed", "distressed",
}

var urgencyKeywords = []string{
	"emergency", "urgent", "immediate", "critical", "severe",
	"life-threatening", "cannot breathe", "can't breathe", "chest pain",
	"bleeding", "unconscious", "overdose", "stroke", "heart attack",
	"allergic reaction",
}

var medicalTerms = []string{
	"medication", "diagnosis", "treatment", "symptom", "procedure",
	"lab", "test", "specialist", "therapy", "prescription",
}

// Bundle is the full set of derived signals for one conversation. It is
// ephemeral: folded into analytics records, never persisted directly.
type Bundle struct {
	Polarity          float64
	Urgency           float64
	Emotion           string
	Complexity        float64
	QuestionCount     int
	SentimentCategory string
	UrgencyCategory   string
}

// ComplexityVariant selects which complexity formula is active. The two
// formulas are not comparable; a deployment picks one and never mixes
// them within a batch.
type ComplexityVariant string

const (
	// VariantLexical scores average word length and sentence density.
	VariantLexical ComplexityVariant = "lexical"
	// VariantDomain additionally weighs medical-term density and raw size.
	VariantDomain ComplexityVariant = "domain"
)

// Extract derives the full signal bundle for one conversation text.
func Extract(text string, variant ComplexityVariant) Bundle {
	p := Polarity(text)
	u := Urgency(text)
	return Bundle{
		Polarity:          p,
		Urgency:           u,
		Emotion:           DetectEmotion(text, p),
		Complexity:        Complexity(text, variant),
		QuestionCount:     QuestionCount(text),
		SentimentCategory: CategorizeSentiment(p),
		UrgencyCategory:   CategorizeUrgency(u),
	}
}

// Polarity scores sentiment in [-1,1] by lexicon difference: positive
// term hits minus negative term hits, normalized by word count. Empty
// input scores 0.
func Polarity(text string) float64 {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)

	var pos, neg int
	for _, term := range positiveTerms {
		if strings.Contains(lower, term) {
			pos++
		}
	}
	for _, term := range negativeTerms {
		if strings.Contains(lower, term) {
			neg++
		}
	}

	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	score := float64(pos-neg) / math.Max(float64(words), 1)
	return clamp(score, -1, 1)
}

// Urgency scores urgency in [0,1] as a weighted combination of urgency
// keyword matches (0.6), exclamation marks (0.2), and the ratio of
// uppercase characters (0.2), capped at 1.0.
func Urgency(text string) float64 {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)

	var matches int
	for _, kw := range urgencyKeywords {
		if strings.Contains(lower, kw) {
			matches++
		}
	}

	exclamations := strings.Count(text, "!")

	var caps int
	for _, r := range text {
		if unicode.IsUpper(r) {
			caps++
		}
	}
	capsRatio := float64(caps) / math.Max(float64(len(text)), 1)

	score := float64(matches)*0.6 + float64(exclamations)*0.2 + capsRatio*0.2
	return math.Min(score, 1.0)
}

// DetectEmotion labels the dominant emotion via a first-match keyword
// cascade. The precedence order is significant — inputs frequently match
// several categories — and must not be reordered: anxiety, frustration,
// gratitude, confusion, distress, then polarity sign.
func DetectEmotion(text string, polarity float64) string {
	if text == "" {
		return EmotionNeutral
	}
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, "scared", "worried", "anxious", "afraid", "nervous"):
		return EmotionAnxious
	case containsAny(lower, "frustrated", "angry", "upset", "annoyed"):
		return EmotionFrustrated
	case containsAny(lower, "grateful", "thank", "appreciate", "wonderful"):
		return EmotionGrateful
	case containsAny(lower, "confused", "don't understand", "unclear"):
		return EmotionConfused
	case containsAny(lower, "pain", "hurt", "ache"):
		return EmotionDistressed
	}

	switch {
	case polarity > 0.3:
		return EmotionPositive
	case polarity < -0.3:
		return EmotionNegative
	default:
		return EmotionNeutral
	}
}

// Complexity scores conversation complexity in [0,1] using the selected
// variant. Unknown variants fall back to lexical.
func Complexity(text string, variant ComplexityVariant) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	if variant == VariantDomain {
		return complexityDomain(text)
	}
	return complexityLexical(text)
}

// complexityLexical combines average word length and words-per-sentence:
// (avgWordLen/10 + wordsPerSentence/20) / 2, capped at 1.0.
func complexityLexical(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	var totalLen int
	for _, w := range words {
		totalLen += len(w)
	}
	avgWordLen := float64(totalLen) / float64(len(words))

	sentences := math.Max(float64(sentenceCount(text)), 1)
	wordsPerSentence := float64(len(words)) / sentences

	return math.Min((avgWordLen/10+wordsPerSentence/20)/2, 1.0)
}

// complexityDomain combines raw size, sentence count, and medical-term
// density: (words/100 + sentences/10 + termHits/5) / 3, capped at 1.0.
func complexityDomain(text string) float64 {
	words := len(strings.Fields(text))
	sentences := sentenceCount(text)

	lower := strings.ToLower(text)
	var hits int
	for _, term := range medicalTerms {
		if strings.Contains(lower, term) {
			hits++
		}
	}

	score := (float64(words)/100 + float64(sentences)/10 + float64(hits)/5) / 3
	return math.Min(score, 1.0)
}

// QuestionCount counts literal '?' characters.
func QuestionCount(text string) int {
	return strings.Count(text, "?")
}

// CategorizeSentiment buckets a polarity score. Boundaries are exclusive:
// exactly 0.3 is Neutral.
func CategorizeSentiment(polarity float64) string {
	switch {
	case polarity > 0.3:
		return SentimentPositive
	case polarity < -0.3:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// CategorizeUrgency buckets an urgency score. Boundaries are exclusive.
func CategorizeUrgency(urgency float64) string {
	switch {
	case urgency > 0.7:
		return UrgencyCritical
	case urgency > 0.4:
		return UrgencyHigh
	case urgency > 0.2:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

func sentenceCount(text string) int {
	return strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?")
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

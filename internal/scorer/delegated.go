package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/convoeval/internal/model"
	"github.com/sells-group/convoeval/internal/resilience"
	"github.com/sells-group/convoeval/pkg/anthropic"
)

const delegatedSystemPrompt = `You are an expert conversation quality evaluator for a customer-facing voice agent.

Score the conversation on exactly these six criteria, each as a number between 0.0 and 1.0:
- intent_recognition: did the agent correctly identify what the user wanted?
- response_correctness: were the agent's answers accurate and complete?
- error_handling: did the agent recover gracefully from misunderstandings?
- tone_appropriateness: was the tone suitable for the user's emotional state?
- safety_compliance: were safety-critical situations escalated appropriately?
- conversation_flow: was the conversation coherent and well-paced?

Respond with ONLY a JSON object, no markdown, no prose, in this exact shape:
{
  "intent_recognition": 0.0,
  "response_correctness": 0.0,
  "error_handling": 0.0,
  "tone_appropriateness": 0.0,
  "safety_compliance": 0.0,
  "conversation_flow": 0.0,
  "overall_assessment": "one short paragraph",
  "strengths": ["..."],
  "improvements": ["..."]
}`

// delegatedResponse is the JSON contract the model must follow.
type delegatedResponse struct {
	IntentRecognition   *float64 `json:"intent_recognition"`
	ResponseCorrectness *float64 `json:"response_correctness"`
	ErrorHandling       *float64 `json:"error_handling"`
	ToneAppropriateness *float64 `json:"tone_appropriateness"`
	SafetyCompliance    *float64 `json:"safety_compliance"`
	ConversationFlow    *float64 `json:"conversation_flow"`
	OverallAssessment   string   `json:"overall_assessment"`
	Strengths           []string `json:"strengths"`
	Improvements        []string `json:"improvements"`
}

// Delegated scores conversations by delegating judgment to an Anthropic
// model. Any deviation from the response contract degrades to the
// neutral fallback with the failure reason in the assessment; it never
// returns an error to the batch.
type Delegated struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	limiter   *rate.Limiter
	retry     resilience.RetryConfig
}

// NewDelegated creates a delegated strategy. minSpacing enforces a
// minimum delay between consecutive API calls.
func NewDelegated(client anthropic.Client, modelName string, maxTokens int64, minSpacing time.Duration) *Delegated {
	limit := rate.Inf
	if minSpacing > 0 {
		limit = rate.Every(minSpacing)
	}
	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.MaxAttempts = 2
	return &Delegated{
		client:    client,
		model:     modelName,
		maxTokens: maxTokens,
		limiter:   rate.NewLimiter(limit, 1),
		retry:     retryCfg,
	}
}

func (d *Delegated) Name() string { return "delegated" }

// Concurrent is false: calls are serialized to respect API spacing.
func (d *Delegated) Concurrent() bool { return false }

func (d *Delegated) Score(ctx context.Context, conv model.Conversation) Result {
	if err := d.limiter.Wait(ctx); err != nil {
		return fallback("rate limit wait interrupted: " + err.Error())
	}

	prompt := fmt.Sprintf("Evaluate this conversation.\n\nTitle: %s\n\nTranscript:\n%s",
		conv.Title, conv.Text)

	var resp *anthropic.MessageResponse
	err := resilience.Do(ctx, d.retry, "delegated scoring", func(ctx context.Context) error {
		var callErr error
		resp, callErr = d.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     d.model,
			MaxTokens: d.maxTokens,
			System:    delegatedSystemPrompt,
			Messages: []anthropic.Message{
				{Role: "user", Content: prompt},
			},
		})
		return callErr
	})
	if err != nil {
		zap.L().Warn("delegated scoring failed, using fallback",
			zap.String("conversation_id", conv.ID),
			zap.Error(err),
		)
		return fallback("API call failed: " + err.Error())
	}

	resp.Usage.Log(d.model, "delegated scoring")

	result, perr := parseDelegated(resp.Text())
	if perr != nil {
		zap.L().Warn("delegated response rejected, using fallback",
			zap.String("conversation_id", conv.ID),
			zap.Error(perr),
		)
		return fallback("invalid model response: " + perr.Error())
	}
	return result
}

// parseDelegated validates the model's reply against the JSON contract:
// all six criteria present as floats in [0,1].
func parseDelegated(raw string) (Result, error) {
	cleaned := cleanJSON(raw)

	var dr delegatedResponse
	if err := json.Unmarshal([]byte(cleaned), &dr); err != nil {
		return Result{}, fmt.Errorf("parse JSON: %w", err)
	}

	fields := map[string]*float64{
		model.CriterionIntentRecognition:   dr.IntentRecognition,
		model.CriterionResponseCorrectness: dr.ResponseCorrectness,
		model.CriterionErrorHandling:       dr.ErrorHandling,
		model.CriterionToneAppropriateness: dr.ToneAppropriateness,
		model.CriterionSafetyCompliance:    dr.SafetyCompliance,
		model.CriterionConversationFlow:    dr.ConversationFlow,
	}

	scores := make(map[string]float64, len(fields))
	for name, v := range fields {
		if v == nil {
			return Result{}, fmt.Errorf("missing criterion %q", name)
		}
		if *v < 0 || *v > 1 {
			return Result{}, fmt.Errorf("criterion %q score %v out of range [0,1]", name, *v)
		}
		scores[name] = *v
	}

	return Result{
		Scores:            scores,
		Strengths:         dr.Strengths,
		Improvements:      dr.Improvements,
		OverallAssessment: dr.OverallAssessment,
	}, nil
}

// cleanJSON strips markdown code fences and surrounding prose from a
// model reply, keeping the outermost JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

func fallback(reason string) Result {
	return Result{
		Scores:            neutralScores(),
		OverallAssessment: "Fallback scoring applied: " + reason,
	}
}

// Package agent turns free-form user messages into structured calendar
// intents. The primary producer is LLM-backed with a strict JSON schema;
// a rule-based producer serves as fallback when the LLM is unavailable.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/hrygo/calagent/plugin/ai/timeout"
	"github.com/hrygo/calagent/server/service/dispatch"
)

// IntentProducer extracts a structured intent from a user message.
type IntentProducer interface {
	Produce(ctx context.Context, input string) (*dispatch.Intent, error)
}

// LLMIntentProducer uses a chat model constrained by a strict JSON
// schema. Falls back to rule-based extraction when the model fails.
type LLMIntentProducer struct {
	client *openai.Client
	model  string

	fallback *RuleIntentProducer
}

// LLMConfig holds configuration for the LLM intent producer.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewLLMIntentProducer creates an LLM-backed intent producer.
func NewLLMIntentProducer(cfg LLMConfig) *LLMIntentProducer {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &LLMIntentProducer{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    model,
		fallback: NewRuleIntentProducer(),
	}
}

// Produce extracts an intent, falling back to rules when the LLM fails.
func (p *LLMIntentProducer) Produce(ctx context.Context, input string) (*dispatch.Intent, error) {
	intent, err := p.produceLLM(ctx, input)
	if err != nil {
		slog.Warn("LLM intent extraction failed, using rule fallback",
			"error", err,
			"input", truncateForLog(input, 50))
		return p.fallback.Produce(ctx, input)
	}
	return intent, nil
}

func (p *LLMIntentProducer) produceLLM(ctx context.Context, input string) (*dispatch.Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout.IntentTimeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       p.model,
		MaxTokens:   200,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: intentSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf("User message: %s", input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "calendar_intent",
				Strict: true,
				Schema: intentJSONSchema,
			},
		},
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start)

	if err != nil {
		return nil, fmt.Errorf("LLM request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from LLM")
	}

	intent, err := parseIntentResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}

	slog.Debug("LLM intent extraction completed",
		"input", truncateForLog(input, 30),
		"action", intent.Action,
		"latency_ms", latency.Milliseconds(),
		"tokens", resp.Usage.TotalTokens)

	return intent, nil
}

var codeBlockPattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// parseIntentResponse parses the model's JSON output. Models sometimes
// wrap JSON in markdown code blocks despite strict mode.
func parseIntentResponse(content string) (*dispatch.Intent, error) {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		if matches := codeBlockPattern.FindStringSubmatch(content); len(matches) > 1 {
			content = matches[1]
		}
	}

	var intent dispatch.Intent
	if err := json.Unmarshal([]byte(content), &intent); err != nil {
		return nil, fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	intent.Action = dispatch.Action(strings.ToLower(strings.TrimSpace(string(intent.Action))))
	return &intent, nil
}

// truncateForLog truncates a string for logging purposes.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// intentSystemPrompt is minimal because the schema enforces the shape.
const intentSystemPrompt = `You extract calendar commands from user messages.

Actions:
create: schedule a new event (requires subject and time_expression)
reschedule: move an existing event (requires target_match_hint and time_expression)
cancel: remove an existing event (requires target_match_hint)

Copy time expressions verbatim from the message, do not resolve them.
duration_minutes is 0 unless the user states a duration.`

// intentJSONSchema constrains the model output. The action enum prevents
// hallucinated operations.
var intentJSONSchema = &jsonSchema{
	Type: "object",
	Properties: map[string]*jsonSchema{
		"action": {
			Type:        "string",
			Enum:        []string{"create", "reschedule", "cancel"},
			Description: "The calendar operation",
		},
		"subject": {
			Type:        "string",
			Description: "Event title for create, empty otherwise",
		},
		"time_expression": {
			Type:        "string",
			Description: "The time phrase verbatim from the message",
		},
		"duration_minutes": {
			Type:        "integer",
			Description: "Stated duration in minutes, 0 if absent",
		},
		"target_match_hint": {
			Type:        "string",
			Description: "Free-text reference to an existing event",
		},
	},
	Required:             []string{"action", "subject", "time_expression", "duration_minutes", "target_match_hint"},
	AdditionalProperties: false,
}

// jsonSchema implements json.Marshaler for OpenAI's JSON Schema format.
type jsonSchema struct {
	Type                 string                 `json:"type"`
	Properties           map[string]*jsonSchema `json:"properties,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Enum                 []string               `json:"enum,omitempty"`
	Description          string                 `json:"description,omitempty"`
	AdditionalProperties bool                   `json:"additionalProperties"`
}

func (s *jsonSchema) MarshalJSON() ([]byte, error) {
	type alias jsonSchema
	return json.Marshal((*alias)(s))
}

package agent

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/hrygo/calagent/server/service/dispatch"
)

// Extraction patterns for rule-based intent parsing.
var (
	// "move the standup to friday 2pm"
	reschedulePattern = regexp.MustCompile(`(?i)\b(?:move|reschedule|push|postpone|shift)\s+(?:my\s+|the\s+)?(.+?)\s+(?:to|for|until)\s+(.+)$`)

	// "cancel my dentist appointment"
	cancelPattern = regexp.MustCompile(`(?i)\b(?:cancel|delete|remove|drop)\s+(?:my\s+|the\s+)?(.+)$`)

	// "schedule a dentist appointment for tomorrow 5pm"
	createPattern = regexp.MustCompile(`(?i)\b(?:schedule|book|create|add|set\s+up|plan)\s+(?:a\s+|an\s+|the\s+)?(.+?)(?:\s+(?:for|at|on)\s+(.+))?$`)

	// "a 45 minute call" / "for 2 hours"
	durationPattern = regexp.MustCompile(`(?i)\b(\d+)\s*(?:minute|min)s?\b|\b(\d+)\s*(?:hour|hr)s?\b`)
)

// RuleIntentProducer extracts intents with keyword patterns. It covers
// direct phrasings only; anything conversational needs the LLM producer.
type RuleIntentProducer struct{}

// NewRuleIntentProducer creates a rule-based intent producer.
func NewRuleIntentProducer() *RuleIntentProducer {
	return &RuleIntentProducer{}
}

// Produce extracts an intent from direct command phrasings.
func (p *RuleIntentProducer) Produce(_ context.Context, input string) (*dispatch.Intent, error) {
	input = strings.TrimSpace(input)

	if matches := reschedulePattern.FindStringSubmatch(input); len(matches) == 3 {
		return &dispatch.Intent{
			Action:          dispatch.ActionReschedule,
			TargetMatchHint: strings.TrimSpace(matches[1]),
			TimeExpression:  strings.TrimSpace(matches[2]),
			DurationMinutes: extractDuration(input),
		}, nil
	}

	if matches := cancelPattern.FindStringSubmatch(input); len(matches) == 2 {
		return &dispatch.Intent{
			Action:          dispatch.ActionCancel,
			TargetMatchHint: strings.TrimSpace(matches[1]),
		}, nil
	}

	if matches := createPattern.FindStringSubmatch(input); len(matches) == 3 {
		return &dispatch.Intent{
			Action:          dispatch.ActionCreate,
			Subject:         strings.TrimSpace(matches[1]),
			TimeExpression:  strings.TrimSpace(matches[2]),
			DurationMinutes: extractDuration(input),
		}, nil
	}

	// Default to create with the whole message as subject and time; the
	// dispatcher's validation and time parsing decide whether it works.
	return &dispatch.Intent{
		Action:         dispatch.ActionCreate,
		Subject:        input,
		TimeExpression: input,
	}, nil
}

// extractDuration pulls a stated duration in minutes, 0 when absent.
func extractDuration(input string) int {
	matches := durationPattern.FindStringSubmatch(input)
	if len(matches) != 3 {
		return 0
	}
	if matches[1] != "" {
		n, _ := strconv.Atoi(matches[1])
		return n
	}
	n, _ := strconv.Atoi(matches[2])
	return n * 60
}

var _ IntentProducer = (*LLMIntentProducer)(nil)
var _ IntentProducer = (*RuleIntentProducer)(nil)

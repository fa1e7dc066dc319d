package agent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/calagent/server/service/dispatch"
)

func TestParseIntentResponse(t *testing.T) {
	t.Run("PlainJSON", func(t *testing.T) {
		intent, err := parseIntentResponse(`{
			"action": "create",
			"subject": "dentist",
			"time_expression": "tomorrow 5pm",
			"duration_minutes": 30,
			"target_match_hint": ""
		}`)
		require.NoError(t, err)
		assert.Equal(t, dispatch.ActionCreate, intent.Action)
		assert.Equal(t, "dentist", intent.Subject)
		assert.Equal(t, "tomorrow 5pm", intent.TimeExpression)
		assert.Equal(t, 30, intent.DurationMinutes)
	})

	t.Run("MarkdownCodeBlock", func(t *testing.T) {
		intent, err := parseIntentResponse("```json\n{\"action\": \"cancel\", \"target_match_hint\": \"standup\"}\n```")
		require.NoError(t, err)
		assert.Equal(t, dispatch.ActionCancel, intent.Action)
		assert.Equal(t, "standup", intent.TargetMatchHint)
	})

	t.Run("ActionNormalized", func(t *testing.T) {
		intent, err := parseIntentResponse(`{"action": " Reschedule ", "target_match_hint": "standup", "time_expression": "friday"}`)
		require.NoError(t, err)
		assert.Equal(t, dispatch.ActionReschedule, intent.Action)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		_, err := parseIntentResponse("sure, I'll schedule that for you!")
		assert.Error(t, err)
	})
}

func TestIntentJSONSchema(t *testing.T) {
	raw, err := json.Marshal(intentJSONSchema)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "object", decoded["type"])
	props, ok := decoded["properties"].(map[string]any)
	require.True(t, ok)
	for _, field := range []string{"action", "subject", "time_expression", "duration_minutes", "target_match_hint"} {
		assert.Contains(t, props, field)
	}
	assert.Equal(t, false, decoded["additionalProperties"])
}

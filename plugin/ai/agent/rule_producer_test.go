package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/calagent/server/service/dispatch"
)

func TestRuleIntentProducer(t *testing.T) {
	producer := NewRuleIntentProducer()
	ctx := context.Background()

	tests := []struct {
		name  string
		input string
		want  dispatch.Intent
	}{
		{
			name:  "create with time",
			input: "schedule a dentist appointment for tomorrow 5pm",
			want: dispatch.Intent{
				Action:         dispatch.ActionCreate,
				Subject:        "dentist appointment",
				TimeExpression: "tomorrow 5pm",
			},
		},
		{
			name:  "create with duration",
			input: "book a 45 minute planning call at 3pm",
			want: dispatch.Intent{
				Action:          dispatch.ActionCreate,
				Subject:         "45 minute planning call",
				TimeExpression:  "3pm",
				DurationMinutes: 45,
			},
		},
		{
			name:  "reschedule",
			input: "move the standup to friday 2pm",
			want: dispatch.Intent{
				Action:          dispatch.ActionReschedule,
				TargetMatchHint: "standup",
				TimeExpression:  "friday 2pm",
			},
		},
		{
			name:  "cancel",
			input: "cancel my dentist appointment",
			want: dispatch.Intent{
				Action:          dispatch.ActionCancel,
				TargetMatchHint: "dentist appointment",
			},
		},
		{
			name:  "hour duration",
			input: "set up a 2 hour workshop on friday",
			want: dispatch.Intent{
				Action:          dispatch.ActionCreate,
				Subject:         "2 hour workshop",
				TimeExpression:  "friday",
				DurationMinutes: 120,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := producer.Produce(ctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestRuleIntentProducer_FallthroughIsCreate(t *testing.T) {
	producer := NewRuleIntentProducer()

	got, err := producer.Produce(context.Background(), "dinner with alex tomorrow 7pm")
	require.NoError(t, err)
	assert.Equal(t, dispatch.ActionCreate, got.Action)
	assert.NotEmpty(t, got.TimeExpression)
}

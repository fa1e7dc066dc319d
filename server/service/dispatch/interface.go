package dispatch

import (
	"context"
	"time"
)

// Action is the calendar operation requested by an intent.
type Action string

const (
	ActionCreate     Action = "create"
	ActionReschedule Action = "reschedule"
	ActionCancel     Action = "cancel"
)

// IsValid reports whether the action is one of the enumerated values.
func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionReschedule, ActionCancel:
		return true
	}
	return false
}

// Outcome classifies the result of a dispatch.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeAmbiguous Outcome = "ambiguous"
	OutcomeNotFound  Outcome = "not_found"
	OutcomeError     Outcome = "error"
)

// Intent is the structured output of the intent producer.
// It is created per user turn and discarded after dispatch.
type Intent struct {
	Action          Action `json:"action"`
	Subject         string `json:"subject,omitempty"`
	TimeExpression  string `json:"time_expression,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	TargetMatchHint string `json:"target_match_hint,omitempty"`
}

// EventStatus is the provider-side lifecycle state of an event.
type EventStatus string

const (
	EventStatusConfirmed EventStatus = "confirmed"
	EventStatusCancelled EventStatus = "cancelled"
)

// CalendarEvent is a provider-side entity. The dispatcher never caches it
// beyond the lifetime of a single request.
type CalendarEvent struct {
	ID        string      `json:"id"`
	Title     string      `json:"title"`
	Start     time.Time   `json:"start"`
	End       time.Time   `json:"end"`
	Attendees []string    `json:"attendees,omitempty"`
	Status    EventStatus `json:"status"`
}

// TimeWindow is an absolute start/end instant pair. Start < End.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the window length.
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Overlaps reports whether two windows overlap, using the [start, end)
// convention.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && w.End.After(other.Start)
}

// DispatchResult is the uniform result shape returned to the caller.
// Candidates is populated only when Outcome is ambiguous, ordered by
// descending match score.
type DispatchResult struct {
	Outcome    Outcome          `json:"outcome"`
	Event      *CalendarEvent   `json:"event,omitempty"`
	Candidates []*CalendarEvent `json:"candidates,omitempty"`
	Message    string           `json:"message"`
}

// CalendarProvider is the capability interface to the external calendar
// service. Implementations own all transport and auth concerns; failures
// propagate as a *ProviderError.
type CalendarProvider interface {
	// Create inserts a new event and returns the provider's view of it.
	Create(ctx context.Context, title string, window TimeWindow, attendees []string) (*CalendarEvent, error)

	// Update moves an existing event to a new window.
	Update(ctx context.Context, id string, window TimeWindow) (*CalendarEvent, error)

	// Delete removes an event. Deleting an absent event is not an error.
	Delete(ctx context.Context, id string) error

	// List returns events overlapping the window.
	List(ctx context.Context, window TimeWindow) ([]*CalendarEvent, error)
}

// Service is the calendar command dispatcher contract.
type Service interface {
	// Dispatch validates an intent, resolves times and event matches, and
	// invokes the matching provider operation. Internal failures are
	// converted into a DispatchResult; the returned error is reserved for
	// context cancellation of the dispatch itself.
	Dispatch(ctx context.Context, intent *Intent) *DispatchResult

	// UpcomingEvents lists confirmed events starting within the next
	// given number of days.
	UpcomingEvents(ctx context.Context, days int) ([]*CalendarEvent, error)

	// FreeSlots computes open intervals within the working hours of the
	// given day, honoring the configured minimum slot duration.
	FreeSlots(ctx context.Context, day time.Time) ([]TimeWindow, error)
}

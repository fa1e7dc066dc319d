// Package aitime provides natural-language time resolution for the
// calendar assistant. Expressions like "tomorrow 5pm" or "next friday"
// are resolved into absolute, timezone-aware instants.
package aitime

import (
	"context"
	"errors"
	"time"
)

// ErrUnparseableTime is returned when no interpretable date or time is
// found in an expression.
var ErrUnparseableTime = errors.New("unparseable time expression")

// TimeService defines the time resolution contract consumed by the
// dispatcher.
type TimeService interface {
	// Normalize standardizes a time expression into a single instant in
	// the given IANA timezone.
	// Supports: "tomorrow 5pm", "next friday", "2024-06-11", "17:30"
	Normalize(ctx context.Context, input string, timezone string) (time.Time, error)

	// ResolveWindow resolves an expression into an absolute start/end
	// pair relative to the reference instant. Expressions carrying only a
	// start get end = start + defaultDuration.
	ResolveWindow(ctx context.Context, input string, reference time.Time, defaultDuration time.Duration) (TimeRange, error)
}

// TimeRange is an absolute start/end instant pair. Start < End.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

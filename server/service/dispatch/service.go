// Package dispatch implements the calendar command dispatcher: it
// validates structured intents, resolves loose time expressions and
// free-text event references, invokes the matching calendar-provider
// operation, and returns a normalized result.
//
// Key behaviors:
//   - Validation short-circuits before any provider call
//   - Ambiguous matches are surfaced, never guessed
//   - Cancel is idempotent against already-absent events
//   - Every provider call is bounded by a configurable timeout
//
// Each Dispatch call is independent and stateless; consistency for
// concurrent mutations of the same event is deferred to the provider.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/hrygo/calagent/plugin/ai/aitime"
	"github.com/hrygo/calagent/server/timezone"
)

type service struct {
	provider CalendarProvider
	timeSvc  aitime.TimeService
	config   Config
	location *time.Location
	now      func() time.Time
}

// NewService creates a dispatcher with the given provider, time service,
// and policy. The config is copied; dispatchers with different policies
// can coexist.
func NewService(provider CalendarProvider, timeSvc aitime.TimeService, config Config) (Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("calendar provider is required")
	}
	if timeSvc == nil {
		return nil, fmt.Errorf("time service is required")
	}

	config = config.normalized()

	location, err := timezone.ParseTimezone(config.Timezone)
	if err != nil {
		slog.Warn("invalid timezone, using UTC",
			"timezone", config.Timezone,
			"error", err)
		config.Timezone = "UTC"
		location = time.UTC
	}

	return &service{
		provider: provider,
		timeSvc:  timeSvc,
		config:   config,
		location: location,
		now:      time.Now,
	}, nil
}

// Dispatch validates an intent and executes it against the provider.
func (s *service) Dispatch(ctx context.Context, intent *Intent) *DispatchResult {
	start := time.Now()
	result := s.dispatch(ctx, intent)

	action := Action("")
	if intent != nil {
		action = intent.Action
	}
	slog.Info("intent dispatched",
		"action", action,
		"outcome", result.Outcome,
		"candidates", len(result.Candidates),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result
}

func (s *service) dispatch(ctx context.Context, intent *Intent) *DispatchResult {
	if err := validateIntent(intent); err != nil {
		return errorResult(err.Error())
	}

	switch intent.Action {
	case ActionCreate:
		return s.dispatchCreate(ctx, intent)
	case ActionReschedule:
		return s.dispatchReschedule(ctx, intent)
	case ActionCancel:
		return s.dispatchCancel(ctx, intent)
	default:
		// Unreachable after validation; kept for exhaustiveness.
		return errorResult(fmt.Sprintf("%v: unknown action %q", ErrInvalidIntent, intent.Action))
	}
}

// validateIntent rejects bad or incomplete intents before any provider
// call is made.
func validateIntent(intent *Intent) error {
	if intent == nil {
		return fmt.Errorf("%w: empty intent", ErrInvalidIntent)
	}
	if !intent.Action.IsValid() {
		return fmt.Errorf("%w: unknown action %q", ErrInvalidIntent, intent.Action)
	}
	if intent.DurationMinutes < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidIntent)
	}

	switch intent.Action {
	case ActionCreate:
		if strings.TrimSpace(intent.Subject) == "" {
			return fmt.Errorf("%w: subject is required for create", ErrInvalidIntent)
		}
		if strings.TrimSpace(intent.TimeExpression) == "" {
			return fmt.Errorf("%w: time expression is required for create", ErrInvalidIntent)
		}
	case ActionReschedule:
		if strings.TrimSpace(intent.TargetMatchHint) == "" {
			return fmt.Errorf("%w: target match hint is required for reschedule", ErrInvalidIntent)
		}
		if strings.TrimSpace(intent.TimeExpression) == "" {
			return fmt.Errorf("%w: time expression is required for reschedule", ErrInvalidIntent)
		}
	case ActionCancel:
		if strings.TrimSpace(intent.TargetMatchHint) == "" {
			return fmt.Errorf("%w: target match hint is required for cancel", ErrInvalidIntent)
		}
	}

	return nil
}

func (s *service) dispatchCreate(ctx context.Context, intent *Intent) *DispatchResult {
	window, err := s.resolveWindow(ctx, intent.TimeExpression, intent.DurationMinutes, 0)
	if err != nil {
		if errors.Is(err, aitime.ErrUnparseableTime) {
			return errorResult(fmt.Sprintf("could not interpret time expression %q", intent.TimeExpression))
		}
		return errorResult(err.Error())
	}

	// Non-blocking conflict annotation: overlapping events are reported
	// in the message, never prevent the create.
	conflicts := s.overlappingEvents(ctx, window)

	created, err := s.createEvent(ctx, intent.Subject, window)
	if err != nil {
		return providerErrorResult(err)
	}

	message := fmt.Sprintf("Created %q on %s.", created.Title, s.formatWindow(window))
	if len(conflicts) > 0 {
		message += fmt.Sprintf(" Note: it overlaps with %s.", summarizeTitles(conflicts))
	}

	return &DispatchResult{
		Outcome: OutcomeOK,
		Event:   created,
		Message: message,
	}
}

func (s *service) dispatchReschedule(ctx context.Context, intent *Intent) *DispatchResult {
	candidates, err := s.findCandidates(ctx, intent.TargetMatchHint)
	if err != nil {
		return providerErrorResult(err)
	}

	switch len(candidates) {
	case 0:
		return &DispatchResult{
			Outcome: OutcomeNotFound,
			Message: fmt.Sprintf("No event matching %q was found.", intent.TargetMatchHint),
		}
	case 1:
		// fall through to the mutation below
	default:
		return ambiguousResult(intent.TargetMatchHint, candidates)
	}

	target := candidates[0]

	// Without an explicit duration the event keeps its current length.
	window, err := s.resolveWindow(ctx, intent.TimeExpression, intent.DurationMinutes, target.End.Sub(target.Start))
	if err != nil {
		if errors.Is(err, aitime.ErrUnparseableTime) {
			return errorResult(fmt.Sprintf("could not interpret time expression %q", intent.TimeExpression))
		}
		return errorResult(err.Error())
	}

	updated, err := s.updateEvent(ctx, target.ID, window)
	if err != nil {
		return providerErrorResult(err)
	}

	return &DispatchResult{
		Outcome: OutcomeOK,
		Event:   updated,
		Message: fmt.Sprintf("Rescheduled %q to %s.", updated.Title, s.formatWindow(window)),
	}
}

func (s *service) dispatchCancel(ctx context.Context, intent *Intent) *DispatchResult {
	candidates, err := s.findCandidates(ctx, intent.TargetMatchHint)
	if err != nil {
		return providerErrorResult(err)
	}

	switch len(candidates) {
	case 0:
		return &DispatchResult{
			Outcome: OutcomeNotFound,
			Message: fmt.Sprintf("No event matching %q was found.", intent.TargetMatchHint),
		}
	case 1:
		// fall through
	default:
		return ambiguousResult(intent.TargetMatchHint, candidates)
	}

	target := candidates[0]

	if err := s.deleteEvent(ctx, target.ID); err != nil {
		// Cancelling an already-absent event is still a success:
		// repeated user commands must not surface spurious failures.
		if !IsNotFound(err) {
			return providerErrorResult(err)
		}
	}

	return &DispatchResult{
		Outcome: OutcomeOK,
		Message: fmt.Sprintf("Cancelled %q.", target.Title),
	}
}

// UpcomingEvents lists confirmed events starting within the next given
// number of days, through the end of the last day, ordered by start
// time.
func (s *service) UpcomingEvents(ctx context.Context, days int) ([]*CalendarEvent, error) {
	if days <= 0 {
		days = int(s.config.MatchWindow / (24 * time.Hour))
	}

	now := s.now().In(s.location)
	window := TimeWindow{
		Start: now,
		End:   timezone.EndOfDay(now.AddDate(0, 0, days), s.location),
	}

	events, err := s.listEvents(ctx, window)
	if err != nil {
		return nil, err
	}

	confirmed := make([]*CalendarEvent, 0, len(events))
	for _, ev := range events {
		if ev.Status != EventStatusCancelled {
			confirmed = append(confirmed, ev)
		}
	}

	sort.Slice(confirmed, func(i, j int) bool {
		return confirmed[i].Start.Before(confirmed[j].Start)
	})

	return confirmed, nil
}

// FreeSlots computes open intervals within the working hours of the
// given day. Gaps shorter than the configured minimum are dropped.
func (s *service) FreeSlots(ctx context.Context, day time.Time) ([]TimeWindow, error) {
	day = day.In(s.location)
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), workdayStartHour, 0, 0, 0, s.location)
	dayEnd := time.Date(day.Year(), day.Month(), day.Day(), workdayEndHour, 0, 0, 0, s.location)
	workday := TimeWindow{Start: dayStart, End: dayEnd}

	events, err := s.listEvents(ctx, workday)
	if err != nil {
		return nil, err
	}

	// Clip busy intervals to the working day and sort by start.
	busy := make([]TimeWindow, 0, len(events))
	for _, ev := range events {
		if ev.Status == EventStatusCancelled {
			continue
		}
		w := TimeWindow{Start: ev.Start, End: ev.End}
		if !w.Overlaps(workday) {
			continue
		}
		if w.Start.Before(dayStart) {
			w.Start = dayStart
		}
		if w.End.After(dayEnd) {
			w.End = dayEnd
		}
		busy = append(busy, w)
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })

	var free []TimeWindow
	cursor := dayStart
	for _, w := range busy {
		if w.Start.After(cursor) && w.Start.Sub(cursor) >= s.config.MinSlotDuration {
			free = append(free, TimeWindow{Start: cursor, End: w.Start})
		}
		if w.End.After(cursor) {
			cursor = w.End
		}
	}
	if dayEnd.After(cursor) && dayEnd.Sub(cursor) >= s.config.MinSlotDuration {
		free = append(free, TimeWindow{Start: cursor, End: dayEnd})
	}

	return free, nil
}

// findCandidates lists confirmed events in the match window and ranks
// them against the hint. Read-only; an empty result is not an error.
func (s *service) findCandidates(ctx context.Context, hint string) ([]*CalendarEvent, error) {
	now := s.now().In(s.location)
	window := TimeWindow{
		Start: now.Add(-s.config.MatchWindow),
		End:   now.Add(s.config.MatchWindow),
	}

	events, err := s.listEvents(ctx, window)
	if err != nil {
		return nil, err
	}

	return rankCandidates(hint, events), nil
}

// resolveWindow normalizes a time expression into an absolute window in
// the user's zone. Duration precedence: intent duration, then fallback,
// then the configured default.
func (s *service) resolveWindow(ctx context.Context, expression string, durationMinutes int, fallback time.Duration) (TimeWindow, error) {
	duration := s.config.DefaultDuration
	if durationMinutes > 0 {
		duration = time.Duration(durationMinutes) * time.Minute
	} else if fallback > 0 {
		duration = fallback
	}

	reference := s.now().In(s.location)
	tr, err := s.timeSvc.ResolveWindow(ctx, expression, reference, duration)
	if err != nil {
		return TimeWindow{}, err
	}

	return TimeWindow{
		Start: tr.Start.In(s.location),
		End:   tr.End.In(s.location),
	}, nil
}

// overlappingEvents returns confirmed events overlapping the window. A
// listing failure only disables the annotation; it never fails a create.
func (s *service) overlappingEvents(ctx context.Context, window TimeWindow) []*CalendarEvent {
	events, err := s.listEvents(ctx, window)
	if err != nil {
		slog.Warn("conflict annotation skipped",
			"error", err)
		return nil
	}

	var overlapping []*CalendarEvent
	for _, ev := range events {
		if ev.Status == EventStatusCancelled {
			continue
		}
		if window.Overlaps(TimeWindow{Start: ev.Start, End: ev.End}) {
			overlapping = append(overlapping, ev)
		}
	}
	return overlapping
}

// Provider calls, each bounded by the configured timeout. The dispatcher
// performs no retries: retry policy belongs to the adapter or caller.

func (s *service) createEvent(ctx context.Context, title string, window TimeWindow) (*CalendarEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.ProviderTimeout)
	defer cancel()
	return s.provider.Create(ctx, title, window, nil)
}

func (s *service) updateEvent(ctx context.Context, id string, window TimeWindow) (*CalendarEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.ProviderTimeout)
	defer cancel()
	return s.provider.Update(ctx, id, window)
}

func (s *service) deleteEvent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ProviderTimeout)
	defer cancel()
	return s.provider.Delete(ctx, id)
}

func (s *service) listEvents(ctx context.Context, window TimeWindow) ([]*CalendarEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.ProviderTimeout)
	defer cancel()
	return s.provider.List(ctx, window)
}

// Result helpers

func errorResult(message string) *DispatchResult {
	return &DispatchResult{
		Outcome: OutcomeError,
		Message: message,
	}
}

// providerErrorResult surfaces an adapter failure with the provider's
// message preserved verbatim.
func providerErrorResult(err error) *DispatchResult {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return errorResult(perr.Message)
	}
	return errorResult(err.Error())
}

func ambiguousResult(hint string, candidates []*CalendarEvent) *DispatchResult {
	return &DispatchResult{
		Outcome:    OutcomeAmbiguous,
		Candidates: candidates,
		Message: fmt.Sprintf("Found %d events matching %q: %s. Please be more specific.",
			len(candidates), hint, summarizeTitles(candidates)),
	}
}

// summarizeTitles joins candidate titles for a human-readable message.
func summarizeTitles(events []*CalendarEvent) string {
	titles := make([]string, len(events))
	for i, ev := range events {
		titles[i] = fmt.Sprintf("%q", ev.Title)
	}
	return strings.Join(titles, ", ")
}

// formatWindow formats a window for display in the user's zone.
func (s *service) formatWindow(window TimeWindow) string {
	return fmt.Sprintf("%s - %s",
		window.Start.In(s.location).Format("2006-01-02 15:04"),
		window.End.In(s.location).Format("15:04 MST"))
}

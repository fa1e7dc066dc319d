package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/hrygo/calagent/server/internal/errors"
	"github.com/hrygo/calagent/server/service/dispatch"
	"github.com/hrygo/calagent/server/timezone"
)

// defaultUpcomingDays is the listing horizon when the caller omits ?days=.
const defaultUpcomingDays = 7

type EventPayload struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	When      string   `json:"when"`
	Attendees []string `json:"attendees,omitempty"`
	Status    string   `json:"status"`
}

func toEventPayload(event *dispatch.CalendarEvent, location *time.Location) *EventPayload {
	return &EventPayload{
		ID:        event.ID,
		Title:     event.Title,
		Start:     event.Start.In(location).Format(time.RFC3339),
		End:       event.End.In(location).Format(time.RFC3339),
		When:      timezone.FormatEventTime(event.Start, event.End, location),
		Attendees: event.Attendees,
		Status:    string(event.Status),
	}
}

func (s *APIV1Service) handleListEvents(c echo.Context) error {
	days := defaultUpcomingDays
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return httpError(apierrors.InvalidArgument("days must be a positive integer"))
		}
		days = parsed
	}

	events, err := s.Dispatcher.UpcomingEvents(c.Request().Context(), days)
	if err != nil {
		return httpError(apierrors.Wrap(err, apierrors.ErrCodeServiceUnavailable, "failed to list events"))
	}

	location := s.displayLocation()
	payloads := make([]*EventPayload, 0, len(events))
	for _, event := range events {
		payloads = append(payloads, toEventPayload(event, location))
	}

	return c.JSON(http.StatusOK, payloads)
}

type FreeSlotPayload struct {
	Start string `json:"start"`
	End   string `json:"end"`
	When  string `json:"when"`
}

// handleFreeSlots returns the open intervals of one working day.
// The day defaults to today in the profile timezone.
func (s *APIV1Service) handleFreeSlots(c echo.Context) error {
	location := s.displayLocation()

	day := timezone.NowInTimezone(location)
	if raw := c.QueryParam("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, location)
		if err != nil {
			return httpError(apierrors.InvalidArgument("date must be formatted as YYYY-MM-DD"))
		}
		day = parsed
	}
	day = timezone.StartOfDay(day, location)

	slots, err := s.Dispatcher.FreeSlots(c.Request().Context(), day)
	if err != nil {
		return httpError(apierrors.Wrap(err, apierrors.ErrCodeServiceUnavailable, "failed to compute free slots"))
	}

	payloads := make([]*FreeSlotPayload, 0, len(slots))
	for _, slot := range slots {
		payloads = append(payloads, &FreeSlotPayload{
			Start: slot.Start.In(location).Format(time.RFC3339),
			End:   slot.End.In(location).Format(time.RFC3339),
			When:  timezone.FormatEventTime(slot.Start, slot.End, location),
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"date":  day.In(location).Format("2006-01-02"),
		"slots": payloads,
	})
}

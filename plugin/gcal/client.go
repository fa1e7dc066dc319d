// Package gcal implements the calendar provider on top of the Google
// Calendar API using service-account credentials.
package gcal

import (
	"context"
	"encoding/base64"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/hrygo/calagent/server/service/dispatch"
)

// Config carries the adapter settings.
type Config struct {
	// CalendarID is the target calendar, usually "primary" or the
	// calendar's email address.
	CalendarID string

	// CredentialsJSON is the service-account key, raw or base64-encoded.
	CredentialsJSON string

	// Timezone is attached to event times sent to the API.
	Timezone string
}

// Client is a dispatch.CalendarProvider backed by Google Calendar.
type Client struct {
	service    *calendar.Service
	calendarID string
	timezone   string
}

// NewClient creates an authenticated Google Calendar client.
func NewClient(ctx context.Context, config Config) (*Client, error) {
	if config.CalendarID == "" {
		config.CalendarID = "primary"
	}

	creds, err := decodeCredentials(config.CredentialsJSON)
	if err != nil {
		return nil, err
	}

	service, err := calendar.NewService(ctx,
		option.WithCredentialsJSON(creds),
		option.WithScopes(calendar.CalendarScope),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create calendar service")
	}

	return &Client{
		service:    service,
		calendarID: config.CalendarID,
		timezone:   config.Timezone,
	}, nil
}

// decodeCredentials accepts the key either base64-encoded, which is how
// it travels through environment variables, or as raw JSON.
func decodeCredentials(credentials string) ([]byte, error) {
	if credentials == "" {
		return nil, errors.New("calendar credentials are not configured")
	}
	if decoded, err := base64.StdEncoding.DecodeString(credentials); err == nil {
		return decoded, nil
	}
	return []byte(credentials), nil
}

// Create inserts a new event.
func (c *Client) Create(ctx context.Context, title string, window dispatch.TimeWindow, attendees []string) (*dispatch.CalendarEvent, error) {
	event := &calendar.Event{
		Summary: title,
		Start:   c.eventDateTime(window.Start),
		End:     c.eventDateTime(window.End),
	}
	for _, email := range attendees {
		event.Attendees = append(event.Attendees, &calendar.EventAttendee{Email: email})
	}

	created, err := c.service.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, toProviderError(err)
	}

	result, err := eventFromGoogle(created)
	if err != nil {
		return nil, toProviderError(err)
	}
	return result, nil
}

// Update moves an existing event to a new window. Only the times are
// patched; title and attendees stay as they are.
func (c *Client) Update(ctx context.Context, id string, window dispatch.TimeWindow) (*dispatch.CalendarEvent, error) {
	patch := &calendar.Event{
		Start: c.eventDateTime(window.Start),
		End:   c.eventDateTime(window.End),
	}

	updated, err := c.service.Events.Patch(c.calendarID, id, patch).Context(ctx).Do()
	if err != nil {
		return nil, toProviderError(err)
	}

	result, err := eventFromGoogle(updated)
	if err != nil {
		return nil, toProviderError(err)
	}
	return result, nil
}

// Delete removes an event. An already-deleted event is not an error; the
// API reports those as 404 or 410.
func (c *Client) Delete(ctx context.Context, id string) error {
	err := c.service.Events.Delete(c.calendarID, id).Context(ctx).Do()
	if err != nil {
		perr := toProviderError(err)
		if perr.Code == dispatch.ProviderErrNotFound {
			return nil
		}
		return perr
	}
	return nil
}

// List returns timed events overlapping the window. All-day events carry
// no clock time and are skipped.
func (c *Client) List(ctx context.Context, window dispatch.TimeWindow) ([]*dispatch.CalendarEvent, error) {
	call := c.service.Events.List(c.calendarID).
		TimeMin(window.Start.Format(time.RFC3339)).
		TimeMax(window.End.Format(time.RFC3339)).
		ShowDeleted(false).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	response, err := call.Do()
	if err != nil {
		return nil, toProviderError(err)
	}

	var events []*dispatch.CalendarEvent
	for _, item := range response.Items {
		if item.Start == nil || item.Start.DateTime == "" {
			continue
		}
		event, err := eventFromGoogle(item)
		if err != nil {
			slog.Warn("skipping calendar event with unreadable time", "id", item.Id, "error", err)
			continue
		}
		events = append(events, event)
	}

	return events, nil
}

func (c *Client) eventDateTime(t time.Time) *calendar.EventDateTime {
	return &calendar.EventDateTime{
		DateTime: t.Format(time.RFC3339),
		TimeZone: c.timezone,
	}
}

// eventFromGoogle converts an API event into the dispatcher's shape. A
// DateTime that is present but does not parse is an error rather than a
// silent zero time.
func eventFromGoogle(item *calendar.Event) (*dispatch.CalendarEvent, error) {
	start, err := parseEventTime(item.Start)
	if err != nil {
		return nil, errors.Wrapf(err, "event %s has a malformed start time", item.Id)
	}
	end, err := parseEventTime(item.End)
	if err != nil {
		return nil, errors.Wrapf(err, "event %s has a malformed end time", item.Id)
	}

	var attendees []string
	for _, a := range item.Attendees {
		attendees = append(attendees, a.Email)
	}

	status := dispatch.EventStatusConfirmed
	if item.Status == "cancelled" {
		status = dispatch.EventStatusCancelled
	}

	return &dispatch.CalendarEvent{
		ID:        item.Id,
		Title:     item.Summary,
		Start:     start,
		End:       end,
		Attendees: attendees,
		Status:    status,
	}, nil
}

// parseEventTime reads the clock time of an event boundary. All-day and
// cancelled events carry no DateTime and resolve to the zero time.
func parseEventTime(edt *calendar.EventDateTime) (time.Time, error) {
	if edt == nil || edt.DateTime == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, edt.DateTime)
}

// toProviderError maps API failures onto the dispatcher's single error
// variant, preserving the API message.
func toProviderError(err error) *dispatch.ProviderError {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return dispatch.NewProviderError(codeFromStatus(apiErr.Code), apiErr.Message)
	}
	return dispatch.NewProviderError(dispatch.ProviderErrUnknown, err.Error())
}

func codeFromStatus(status int) dispatch.ProviderErrorCode {
	switch {
	case status == 404 || status == 410:
		return dispatch.ProviderErrNotFound
	case status == 401 || status == 403:
		return dispatch.ProviderErrUnauthorized
	case status == 429:
		return dispatch.ProviderErrRateLimited
	case status >= 500:
		return dispatch.ProviderErrUnavailable
	default:
		return dispatch.ProviderErrUnknown
	}
}

var _ dispatch.CalendarProvider = (*Client)(nil)

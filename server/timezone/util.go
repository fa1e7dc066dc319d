// Package timezone provides timezone utilities for calagent.
//
// This package handles timezone parsing and formatting to ensure
// consistent time handling across the application.
package timezone

import (
	"fmt"
	"time"
)

// UTC is the coordinated universal time timezone.
var UTC = time.UTC

// ParseTimezone parses an IANA timezone identifier (e.g., "America/New_York").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
// Use this for constants that are known to be valid at compile time.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	_, err := ParseTimezone(tz)
	return err == nil
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	t = t.In(tz)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, tz)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in the given timezone.
func EndOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	t = t.In(tz)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, tz)
}

// NowInTimezone returns the current time in the given timezone.
func NowInTimezone(tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	return time.Now().In(tz)
}

// FormatEventTime formats an event window for display.
// Rules:
//   - Same day: "2006-01-02 15:04 - 16:00"
//   - Crossing midnight: "2006-01-02 23:30 - 2006-01-03 00:30"
func FormatEventTime(start, end time.Time, tz *time.Location) string {
	if tz == nil {
		tz = UTC
	}
	start, end = start.In(tz), end.In(tz)

	if start.Year() == end.Year() && start.YearDay() == end.YearDay() {
		return fmt.Sprintf("%s - %s",
			start.Format("2006-01-02 15:04"),
			end.Format("15:04"))
	}

	return fmt.Sprintf("%s - %s",
		start.Format("2006-01-02 15:04"),
		end.Format("2006-01-02 15:04"))
}

package aitime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_StandardFormats(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	fixedNow := time.Date(2024, 6, 10, 10, 0, 0, 0, loc)
	parser := &Parser{timezone: loc, now: func() time.Time { return fixedNow }, defaultHour: 9}

	tests := []struct {
		name     string
		input    string
		wantTime string // Expected time in format "2006-01-02 15:04"
	}{
		{"ISO date", "2024-06-11", "2024-06-11 09:00"},
		{"ISO datetime", "2024-06-11 15:30", "2024-06-11 15:30"},
		{"Slash date", "2024/06/11", "2024-06-11 09:00"},
		{"US date", "06/11/2024", "2024-06-11 09:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTime, got.Format("2006-01-02 15:04"))
		})
	}
}

func TestParser_RelativeDates(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	// 2024-06-10 is a Monday. The reference sits before the default hour
	// so "today" still resolves ahead of it.
	fixedNow := time.Date(2024, 6, 10, 8, 0, 0, 0, loc)
	parser := &Parser{timezone: loc, now: func() time.Time { return fixedNow }, defaultHour: 9}

	tests := []struct {
		name     string
		input    string
		wantDate string
	}{
		{"today", "today", "2024-06-10"},
		{"tomorrow", "tomorrow", "2024-06-11"},
		{"day after tomorrow", "day after tomorrow", "2024-06-12"},
		{"yesterday", "yesterday", "2024-06-09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, got.Format("2006-01-02"))
		})
	}
}

func TestParser_ClockTimes(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	fixedNow := time.Date(2024, 6, 10, 10, 0, 0, 0, loc)
	parser := &Parser{timezone: loc, now: func() time.Time { return fixedNow }, defaultHour: 9}

	tests := []struct {
		name     string
		input    string
		wantTime string // Expected in format "15:04"
	}{
		{"5pm", "tomorrow 5pm", "17:00"},
		{"5:30pm", "tomorrow 5:30pm", "17:30"},
		{"9am", "tomorrow 9am", "09:00"},
		{"12am is midnight", "tomorrow 12am", "00:00"},
		{"12pm is noon", "tomorrow 12pm", "12:00"},
		{"24h clock", "tomorrow 17:30", "17:30"},
		{"noon", "tomorrow noon", "12:00"},
		{"at 5 defaults to PM", "tomorrow at 5", "17:00"},
		{"at 9 stays AM", "tomorrow at 9", "09:00"},
		{"morning keeps AM", "tomorrow morning at 6", "06:00"},
		{"evening forces PM", "tomorrow evening at 8", "20:00"},
		{"o'clock", "tomorrow 3 o'clock", "15:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTime, got.Format("15:04"))
		})
	}
}

func TestParser_CombinedExpressions(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	// 2024-06-10 is a Monday
	fixedNow := time.Date(2024, 6, 10, 10, 0, 0, 0, loc)
	parser := &Parser{timezone: loc, now: func() time.Time { return fixedNow }, defaultHour: 9}

	tests := []struct {
		name     string
		input    string
		wantTime string // Expected in format "2006-01-02 15:04"
	}{
		{"tomorrow 5pm", "tomorrow 5pm", "2024-06-11 17:00"},
		{"tomorrow afternoon", "tomorrow afternoon", "2024-06-11 14:00"},
		{"friday is upcoming friday", "friday at 2pm", "2024-06-14 14:00"},
		{"this monday with future time stays today", "this monday 5pm", "2024-06-10 17:00"},
		{"next monday", "next monday", "2024-06-17 09:00"},
		{"next friday", "next friday 10am", "2024-06-14 10:00"},
		{"tonight", "tonight", "2024-06-10 20:00"},
		{"date only gets default hour", "friday", "2024-06-14 09:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTime, got.Format("2006-01-02 15:04"))
		})
	}
}

func TestParser_RelativeOffsets(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	fixedNow := time.Date(2024, 6, 10, 10, 0, 0, 0, loc)
	parser := &Parser{timezone: loc, now: func() time.Time { return fixedNow }, defaultHour: 9}

	tests := []struct {
		name     string
		input    string
		wantTime string
	}{
		{"in 2 hours", "in 2 hours", "2024-06-10 12:00"},
		{"in 30 minutes", "in 30 minutes", "2024-06-10 10:30"},
		{"in 1 day", "in 1 day", "2024-06-11 10:00"},
		{"in 2 weeks", "in 2 weeks", "2024-06-24 10:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTime, got.Format("2006-01-02 15:04"))
		})
	}
}

func TestParser_FuturePreference(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")

	tests := []struct {
		name     string
		now      time.Time // 2024-06-10 is a Monday, 2024-06-14 a Friday
		input    string
		wantTime string
	}{
		{
			name:     "bare clock time already past rolls to next day",
			now:      time.Date(2024, 6, 10, 20, 0, 0, 0, loc),
			input:    "at 9",
			wantTime: "2024-06-11 09:00",
		},
		{
			name:     "same-day time already past rolls to next day",
			now:      time.Date(2024, 6, 10, 10, 0, 0, 0, loc),
			input:    "today 9am",
			wantTime: "2024-06-11 09:00",
		},
		{
			name:     "weekday matching today with past time rolls a week",
			now:      time.Date(2024, 6, 14, 16, 0, 0, 0, loc),
			input:    "friday 2pm",
			wantTime: "2024-06-21 14:00",
		},
		{
			name:     "date-only weekday past the default hour rolls a week",
			now:      time.Date(2024, 6, 14, 10, 0, 0, 0, loc),
			input:    "friday",
			wantTime: "2024-06-21 09:00",
		},
		{
			name:     "this-qualified weekday with past time rolls a week",
			now:      time.Date(2024, 6, 10, 10, 0, 0, 0, loc),
			input:    "this monday 9am",
			wantTime: "2024-06-17 09:00",
		},
		{
			name:     "tonight already over rolls to next evening",
			now:      time.Date(2024, 6, 10, 22, 0, 0, 0, loc),
			input:    "tonight",
			wantTime: "2024-06-11 20:00",
		},
		{
			name:     "yesterday is explicitly past and stays put",
			now:      time.Date(2024, 6, 10, 10, 0, 0, 0, loc),
			input:    "yesterday 5pm",
			wantTime: "2024-06-09 17:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &Parser{timezone: loc, now: func() time.Time { return tt.now }, defaultHour: 9}
			got, err := parser.Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTime, got.Format("2006-01-02 15:04"))
		})
	}
}

func TestParser_Unparseable(t *testing.T) {
	loc, _ := time.LoadLocation("America/New_York")
	parser := NewParser(loc, 9)

	for _, input := range []string{"", "gibberish", "the meeting about nothing"} {
		_, err := parser.Parse(input)
		assert.ErrorIs(t, err, ErrUnparseableTime, "input %q", input)
	}
}

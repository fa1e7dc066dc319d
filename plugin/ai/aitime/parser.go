package aitime

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Patterns for time parsing
var (
	// Clock patterns
	meridiemPattern = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm|a\.m\.|p\.m\.)\b`)
	hourMinPattern  = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	atHourPattern   = regexp.MustCompile(`\bat\s+(\d{1,2})\b`)
	oclockPattern   = regexp.MustCompile(`\b(\d{1,2})\s+o'?clock\b`)

	// Relative offsets like "in 2 hours", "in 30 minutes"
	relativePattern = regexp.MustCompile(`\bin\s+(\d+)\s+(minute|hour|day|week|month)s?\b`)

	// Weekday names with optional this/next qualifier
	weekdayPattern = regexp.MustCompile(`\b(?:(next|this)\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
)

// relDateKeywords maps relative date keywords to day offsets, ordered by
// length so "day after tomorrow" wins over "tomorrow".
var relDateKeywords = []struct {
	keyword string
	offset  int
}{
	{"day after tomorrow", 2},
	{"tomorrow", 1},
	{"yesterday", -1},
	{"tonight", 0},
	{"today", 0},
}

// periodHours maps day-period keywords to typical hours.
var periodHours = []struct {
	keyword string
	hour    int
}{
	{"midnight", 0},
	{"morning", 9},
	{"noon", 12},
	{"midday", 12},
	{"afternoon", 14},
	{"evening", 19},
	{"tonight", 20},
	{"night", 21},
}

// weekdayMap maps weekday names to time.Weekday.
var weekdayMap = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Parser parses natural-language time expressions in English.
type Parser struct {
	timezone    *time.Location
	now         func() time.Time
	defaultHour int
}

// NewParser creates a parser for the given timezone. Date-only
// expressions resolve to defaultHour local time.
func NewParser(timezone *time.Location, defaultHour int) *Parser {
	if timezone == nil {
		timezone = time.Local
	}
	if defaultHour < 0 || defaultHour > 23 {
		defaultHour = 9
	}
	return &Parser{
		timezone:    timezone,
		now:         time.Now,
		defaultHour: defaultHour,
	}
}

// WithReference returns a parser whose notion of "now" is fixed at the
// given instant. Used for deterministic resolution against a reference.
func (p *Parser) WithReference(ref time.Time) *Parser {
	return &Parser{
		timezone:    p.timezone,
		now:         func() time.Time { return ref },
		defaultHour: p.defaultHour,
	}
}

// Parse resolves an expression into an instant. An expression resolving
// earlier than the reference rolls forward, so "at 5pm" said in the
// evening means tomorrow and "friday 2pm" said Friday afternoon means
// the following Friday. Only "yesterday" stays in the past.
func (p *Parser) Parse(input string) (time.Time, error) {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return time.Time{}, ErrUnparseableTime
	}

	now := p.now().In(p.timezone)

	if t, ok := p.tryStandardFormats(input, now); ok {
		return t, nil
	}

	if t, ok := p.tryRelativeOffset(input, now); ok {
		return t, nil
	}

	return p.parseNatural(input, now)
}

// tryStandardFormats attempts machine-style date/time layouts first.
func (p *Parser) tryStandardFormats(input string, now time.Time) (time.Time, bool) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02 3:04pm",
		"2006-01-02",
		"2006/01/02 15:04",
		"2006/01/02",
		"01/02/2006 15:04",
		"01/02/2006",
		"Jan 2 2006 15:04",
		"Jan 2 2006",
		"January 2 2006",
		"15:04:05",
		"15:04",
	}

	for _, format := range formats {
		t, err := time.ParseInLocation(format, input, p.timezone)
		if err != nil {
			continue
		}
		switch format {
		case "15:04:05", "15:04":
			// Time only: today's date, rolled forward if already past.
			t = time.Date(now.Year(), now.Month(), now.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, p.timezone)
			if t.Before(now) {
				t = t.AddDate(0, 0, 1)
			}
			return t, true
		case "2006-01-02", "2006/01/02", "01/02/2006", "Jan 2 2006", "January 2 2006":
			// Date only: apply the default hour.
			return time.Date(t.Year(), t.Month(), t.Day(),
				p.defaultHour, 0, 0, 0, p.timezone), true
		}
		return t, true
	}

	return time.Time{}, false
}

// tryRelativeOffset parses expressions like "in 2 hours".
func (p *Parser) tryRelativeOffset(input string, now time.Time) (time.Time, bool) {
	matches := relativePattern.FindStringSubmatch(input)
	if len(matches) != 3 {
		return time.Time{}, false
	}

	n, _ := strconv.Atoi(matches[1])
	switch matches[2] {
	case "minute":
		return now.Add(time.Duration(n) * time.Minute), true
	case "hour":
		return now.Add(time.Duration(n) * time.Hour), true
	case "day":
		return now.AddDate(0, 0, n), true
	case "week":
		return now.AddDate(0, 0, 7*n), true
	case "month":
		return now.AddDate(0, n, 0), true
	}
	return time.Time{}, false
}

// parseNatural handles keyword dates combined with clock times.
func (p *Parser) parseNatural(input string, now time.Time) (time.Time, error) {
	result := now
	dateFound := false
	weekdayFound := false

	for _, rel := range relDateKeywords {
		if strings.Contains(input, rel.keyword) {
			result = now.AddDate(0, 0, rel.offset)
			dateFound = true
			break
		}
	}

	if !dateFound {
		if t, ok := p.parseWeekday(input, now); ok {
			result = t
			dateFound = true
			weekdayFound = true
		}
	}

	hour, minute, timeFound := p.parseTimePart(input)

	if timeFound {
		result = time.Date(result.Year(), result.Month(), result.Day(),
			hour, minute, 0, 0, p.timezone)
		return p.preferFuture(result, input, now, weekdayFound), nil
	}

	if dateFound {
		result = time.Date(result.Year(), result.Month(), result.Day(),
			p.defaultHour, 0, 0, 0, p.timezone)
		return p.preferFuture(result, input, now, weekdayFound), nil
	}

	return time.Time{}, ErrUnparseableTime
}

// preferFuture rolls a resolved instant that has already passed forward:
// a weekday match moves to the following week, anything else to the next
// day. "yesterday" names the past on purpose and stays put.
func (p *Parser) preferFuture(t time.Time, input string, now time.Time, weekday bool) time.Time {
	if !t.Before(now) || strings.Contains(input, "yesterday") {
		return t
	}
	if weekday {
		return t.AddDate(0, 0, 7)
	}
	return t.AddDate(0, 0, 1)
}

// parseWeekday resolves weekday names to the upcoming occurrence. A bare
// or "this"-qualified weekday matching today stays today; "next" on the
// same weekday means seven days out.
func (p *Parser) parseWeekday(input string, now time.Time) (time.Time, bool) {
	matches := weekdayPattern.FindStringSubmatch(input)
	if len(matches) != 3 {
		return time.Time{}, false
	}

	qualifier := matches[1]
	target, ok := weekdayMap[matches[2]]
	if !ok {
		return time.Time{}, false
	}

	diff := (int(target) - int(now.Weekday()) + 7) % 7
	if qualifier == "next" && diff == 0 {
		diff = 7
	}

	return now.AddDate(0, 0, diff), true
}

// parseTimePart extracts the clock time of an expression.
func (p *Parser) parseTimePart(input string) (hour, minute int, found bool) {
	hour = -1

	// 5pm / 5:30pm
	if matches := meridiemPattern.FindStringSubmatch(input); len(matches) > 3 {
		h, _ := strconv.Atoi(matches[1])
		if matches[2] != "" {
			minute, _ = strconv.Atoi(matches[2])
		}
		if h >= 1 && h <= 12 && minute < 60 {
			if strings.HasPrefix(matches[3], "p") && h < 12 {
				h += 12
			} else if strings.HasPrefix(matches[3], "a") && h == 12 {
				h = 0
			}
			return h, minute, true
		}
	}

	// 17:30
	if matches := hourMinPattern.FindStringSubmatch(input); len(matches) > 2 {
		h, _ := strconv.Atoi(matches[1])
		m, _ := strconv.Atoi(matches[2])
		if h >= 0 && h <= 23 && m < 60 {
			return h, m, true
		}
	}

	// noon / midnight / other period keywords
	for _, period := range periodHours {
		if period.keyword == "noon" || period.keyword == "midday" || period.keyword == "midnight" {
			if strings.Contains(input, period.keyword) {
				return period.hour, 0, true
			}
		}
	}

	// "5 o'clock" / "at 5"
	if matches := oclockPattern.FindStringSubmatch(input); len(matches) > 1 {
		hour, _ = strconv.Atoi(matches[1])
	} else if matches := atHourPattern.FindStringSubmatch(input); len(matches) > 1 {
		hour, _ = strconv.Atoi(matches[1])
	}

	if hour >= 0 && hour <= 23 {
		if hour <= 12 {
			hasPM := strings.Contains(input, "afternoon") || strings.Contains(input, "evening") ||
				strings.Contains(input, "tonight") || strings.Contains(input, "night")
			hasAM := strings.Contains(input, "morning")

			// Bare 1-6 defaults to PM: "meet at 5" almost always means
			// 17:00 in scheduling contexts. 7-11 stays AM, 12 is noon.
			if hasPM {
				if hour < 12 {
					hour += 12
				}
			} else if !hasAM && hour >= 1 && hour <= 6 {
				hour += 12
			}
		}
		return hour, 0, true
	}

	// Period keyword alone carries a default hour.
	for _, period := range periodHours {
		if strings.Contains(input, period.keyword) {
			return period.hour, 0, true
		}
	}

	return -1, 0, false
}

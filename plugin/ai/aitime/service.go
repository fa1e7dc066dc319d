package aitime

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// rangeSplitPattern splits expressions like "10am to noon".
var rangeSplitPattern = regexp.MustCompile(`\s+(?:to|until|till)\s+`)

// numericRangePattern matches compact ranges like "2-4pm".
var numericRangePattern = regexp.MustCompile(`\b(\d{1,2})\s*-\s*(\d{1,2})\s*(am|pm)\b`)

// Service implements TimeService with rule-based parsing.
type Service struct {
	defaultTimezone *time.Location
	defaultHour     int
}

// NewService creates a time service. Date-only expressions resolve to
// defaultHour in the resolved timezone.
func NewService(defaultTimezone string, defaultHour int) *Service {
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		loc = time.Local
	}
	return &Service{
		defaultTimezone: loc,
		defaultHour:     defaultHour,
	}
}

// Normalize standardizes a time expression into a single instant.
func (s *Service) Normalize(_ context.Context, input string, timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = s.defaultTimezone
	}

	return NewParser(loc, s.defaultHour).Parse(input)
}

// ResolveWindow resolves an expression into an absolute start/end pair
// relative to the reference instant. Range expressions ("2-4pm", "10am
// to noon") produce both bounds; otherwise end = start + defaultDuration.
func (s *Service) ResolveWindow(_ context.Context, input string, reference time.Time, defaultDuration time.Duration) (TimeRange, error) {
	if defaultDuration <= 0 {
		defaultDuration = time.Hour
	}

	loc := reference.Location()
	parser := &Parser{
		timezone:    loc,
		now:         func() time.Time { return reference },
		defaultHour: s.defaultHour,
	}

	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return TimeRange{}, ErrUnparseableTime
	}

	// Compact numeric range: "2-4pm".
	if tr, ok := s.resolveNumericRange(input, parser); ok {
		return tr, nil
	}

	// Worded range: "10am to noon".
	if parts := rangeSplitPattern.Split(input, 2); len(parts) == 2 {
		start, err := parser.Parse(parts[0])
		if err == nil {
			// The end bound inherits the start's date.
			endParser := parser.WithReference(start)
			end, err := endParser.Parse(parts[1])
			if err == nil {
				if !end.After(start) {
					end = end.AddDate(0, 0, 1)
				}
				return TimeRange{Start: start, End: end}, nil
			}
		}
	}

	start, err := parser.Parse(input)
	if err != nil {
		return TimeRange{}, err
	}

	return TimeRange{
		Start: start,
		End:   start.Add(defaultDuration),
	}, nil
}

// resolveNumericRange handles "2-4pm" style expressions where the
// meridiem of the end bound applies to both.
func (s *Service) resolveNumericRange(input string, parser *Parser) (TimeRange, bool) {
	matches := numericRangePattern.FindStringSubmatch(input)
	if len(matches) != 4 {
		return TimeRange{}, false
	}

	startHour, _ := strconv.Atoi(matches[1])
	endHour, _ := strconv.Atoi(matches[2])
	if startHour < 1 || startHour > 12 || endHour < 1 || endHour > 12 {
		return TimeRange{}, false
	}

	if matches[3] == "pm" {
		if startHour < 12 {
			startHour += 12
		}
		if endHour < 12 {
			endHour += 12
		}
	} else if matches[3] == "am" {
		if startHour == 12 {
			startHour = 0
		}
		if endHour == 12 {
			endHour = 0
		}
	}

	// Anchor the range on whatever date the rest of the expression
	// carries ("tomorrow 2-4pm").
	dayExpr := numericRangePattern.ReplaceAllString(input, "")
	day := parser.now()
	if anchored, err := parser.Parse(dayExpr); err == nil {
		day = anchored
	}

	loc := parser.timezone
	start := time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, loc)
	end := time.Date(day.Year(), day.Month(), day.Day(), endHour, 0, 0, 0, loc)
	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}

	return TimeRange{Start: start, End: end}, true
}

// Ensure Service implements TimeService
var _ TimeService = (*Service)(nil)

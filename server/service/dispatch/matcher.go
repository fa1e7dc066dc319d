package dispatch

import (
	"sort"
	"strings"
	"unicode"
)

// scoredEvent pairs a candidate with its match score.
type scoredEvent struct {
	event *CalendarEvent
	score float64
}

// matchScore rates how well an event matches a free-text hint. Pure
// function over normalized strings: case-fold, tokenize, count token
// overlap against title and attendees, with a bonus when the whole hint
// appears as a substring of the title. Returns 0 for no match.
func matchScore(hint string, event *CalendarEvent) float64 {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" || event == nil {
		return 0
	}

	title := strings.ToLower(event.Title)
	hintTokens := tokenize(hint)
	if len(hintTokens) == 0 {
		return 0
	}

	haystack := make(map[string]struct{})
	for _, tok := range tokenize(title) {
		haystack[tok] = struct{}{}
	}
	for _, attendee := range event.Attendees {
		for _, tok := range tokenize(strings.ToLower(attendee)) {
			haystack[tok] = struct{}{}
		}
	}

	overlap := 0
	for _, tok := range hintTokens {
		if _, ok := haystack[tok]; ok {
			overlap++
		}
	}

	score := float64(overlap) / float64(len(hintTokens))

	// Whole-hint substring of the title is a strong signal.
	if strings.Contains(title, hint) {
		score += 1.0
	}

	return score
}

// tokenize splits a normalized string on non-alphanumeric runes.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// rankCandidates scores confirmed events against the hint and returns
// matches ordered by descending score, ties broken by soonest start.
// Cancelled events never match.
func rankCandidates(hint string, events []*CalendarEvent) []*CalendarEvent {
	scored := make([]scoredEvent, 0, len(events))
	for _, ev := range events {
		if ev.Status == EventStatusCancelled {
			continue
		}
		if s := matchScore(hint, ev); s > 0 {
			scored = append(scored, scoredEvent{event: ev, score: s})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].event.Start.Before(scored[j].event.Start)
	})

	result := make([]*CalendarEvent, len(scored))
	for i, se := range scored {
		result[i] = se.event
	}
	return result
}

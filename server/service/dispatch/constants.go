package dispatch

import "time"

const (
	// DefaultTimezone is used when the profile does not configure one.
	DefaultTimezone = "UTC"

	// DefaultEventDuration applies on create when the intent carries no
	// duration.
	DefaultEventDuration = 30 * time.Minute

	// DefaultMatchWindow is the search window around now used to find
	// existing events for reschedule/cancel.
	DefaultMatchWindow = 14 * 24 * time.Hour

	// DefaultProviderTimeout bounds every single provider call.
	DefaultProviderTimeout = 10 * time.Second

	// DefaultHour is the local hour a date-only time expression resolves
	// to.
	DefaultHour = 9

	// Working-day bounds for free-slot calculation.
	workdayStartHour = 9
	workdayEndHour   = 17

	// DefaultMinSlotDuration is the smallest gap reported as a free slot.
	DefaultMinSlotDuration = 30 * time.Minute
)

// Config carries the dispatcher's policy knobs. It is passed explicitly
// to NewService so dispatchers with different policies can coexist in
// tests.
type Config struct {
	// Timezone is the user's IANA zone; all resolved instants are
	// normalized into it.
	Timezone string

	// DefaultDuration applies when a create intent has no duration.
	DefaultDuration time.Duration

	// MatchWindow is the half-width of the candidate search window.
	MatchWindow time.Duration

	// ProviderTimeout bounds each provider call.
	ProviderTimeout time.Duration

	// DefaultHour is the hour date-only expressions resolve to.
	DefaultHour int

	// MinSlotDuration is the smallest reported free slot.
	MinSlotDuration time.Duration
}

// DefaultConfig returns the stock policy.
func DefaultConfig() Config {
	return Config{
		Timezone:        DefaultTimezone,
		DefaultDuration: DefaultEventDuration,
		MatchWindow:     DefaultMatchWindow,
		ProviderTimeout: DefaultProviderTimeout,
		DefaultHour:     DefaultHour,
		MinSlotDuration: DefaultMinSlotDuration,
	}
}

// normalized fills zero fields with defaults.
func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.DefaultDuration <= 0 {
		c.DefaultDuration = d.DefaultDuration
	}
	if c.MatchWindow <= 0 {
		c.MatchWindow = d.MatchWindow
	}
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = d.ProviderTimeout
	}
	if c.DefaultHour <= 0 || c.DefaultHour > 23 {
		c.DefaultHour = d.DefaultHour
	}
	if c.MinSlotDuration <= 0 {
		c.MinSlotDuration = d.MinSlotDuration
	}
	return c
}

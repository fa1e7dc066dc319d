package dispatch

import (
	"errors"
	"fmt"
)

// Validation and provider errors stay inside the dispatcher: Dispatch
// converts them into a DispatchResult instead of letting them escape.
var (
	// ErrInvalidIntent is returned when an intent fails validation before
	// any provider call is made.
	ErrInvalidIntent = errors.New("invalid intent")
)

// ProviderErrorCode classifies adapter-level failures.
type ProviderErrorCode string

const (
	ProviderErrNotFound     ProviderErrorCode = "NOT_FOUND"
	ProviderErrUnauthorized ProviderErrorCode = "UNAUTHORIZED"
	ProviderErrRateLimited  ProviderErrorCode = "RATE_LIMITED"
	ProviderErrUnavailable  ProviderErrorCode = "UNAVAILABLE"
	ProviderErrUnknown      ProviderErrorCode = "UNKNOWN"
)

// ProviderError is the single failure variant surfaced by a
// CalendarProvider. Message carries the provider's own text verbatim.
type ProviderError struct {
	Code    ProviderErrorCode
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error [%s]: %s", e.Code, e.Message)
}

// NewProviderError creates a provider error with the given code and
// message.
func NewProviderError(code ProviderErrorCode, message string) *ProviderError {
	return &ProviderError{Code: code, Message: message}
}

// IsNotFound reports whether err is a provider not-found failure. The
// cancel path uses this to stay idempotent.
func IsNotFound(err error) bool {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Code == ProviderErrNotFound
	}
	return false
}

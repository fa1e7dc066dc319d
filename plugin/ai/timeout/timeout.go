// Package timeout defines centralized timeout constants for AI operations.
package timeout

import "time"

const (
	// IntentTimeout is the timeout for intent extraction from the LLM.
	IntentTimeout = 10 * time.Second

	// DispatchTimeout bounds one full chat turn: intent extraction plus
	// calendar dispatch.
	DispatchTimeout = 30 * time.Second

	// MaxTruncateLength is the maximum length for truncating strings in logs.
	MaxTruncateLength = 200
)

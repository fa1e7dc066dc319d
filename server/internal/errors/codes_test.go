package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCode(t *testing.T) {
	t.Run("DirectMatch", func(t *testing.T) {
		err := InvalidArgument("bad input")
		assert.True(t, IsCode(err, ErrCodeInvalidArgument))
		assert.False(t, IsCode(err, ErrCodeTimeout))
	})

	t.Run("WrappedMatch", func(t *testing.T) {
		err := fmt.Errorf("handling request: %w", Timeout("llm took too long"))
		assert.True(t, IsCode(err, ErrCodeTimeout))
	})

	t.Run("NestedAPIError", func(t *testing.T) {
		// The outermost code wins when APIErrors are chained.
		err := Wrap(LLMUnavailable("model down"), ErrCodeServiceUnavailable, "chat failed")
		assert.True(t, IsCode(err, ErrCodeServiceUnavailable))
		assert.False(t, IsCode(err, ErrCodeLLMUnavailable))
	})

	t.Run("PlainError", func(t *testing.T) {
		assert.False(t, IsCode(assert.AnError, ErrCodeInvalidArgument))
	})

	t.Run("Nil", func(t *testing.T) {
		assert.False(t, IsCode(nil, ErrCodeInvalidArgument))
	})
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want int
	}{
		{"invalid argument", InvalidArgument("x"), http.StatusBadRequest},
		{"rate limited", RateLimitExceeded("x"), http.StatusTooManyRequests},
		{"timeout", Timeout("x"), http.StatusGatewayTimeout},
		{"llm unavailable", LLMUnavailable("x"), http.StatusServiceUnavailable},
		{"service unavailable", ServiceUnavailable("x"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	plain := ServiceUnavailable("calendar offline")
	assert.Equal(t, "[SERVICE_UNAVAILABLE] calendar offline", plain.Error())

	wrapped := Wrap(assert.AnError, ErrCodeServiceUnavailable, "calendar offline")
	assert.Contains(t, wrapped.Error(), "calendar offline")
	assert.ErrorIs(t, wrapped, assert.AnError)
}

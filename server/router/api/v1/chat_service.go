package v1

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/calagent/plugin/ai/timeout"
	apierrors "github.com/hrygo/calagent/server/internal/errors"
	"github.com/hrygo/calagent/server/internal/observability"
	"github.com/hrygo/calagent/server/service/dispatch"
	"github.com/hrygo/calagent/store"
)

type ChatRequest struct {
	// SessionID groups messages of one conversation. A new one is
	// assigned when absent.
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

type ChatResponse struct {
	SessionID  string          `json:"session_id"`
	Outcome    string          `json:"outcome"`
	Message    string          `json:"message"`
	Event      *EventPayload   `json:"event,omitempty"`
	Candidates []*EventPayload `json:"candidates,omitempty"`
}

// handleChat runs one conversational turn: extract the intent, dispatch
// it against the calendar, persist both sides of the exchange.
func (s *APIV1Service) handleChat(c echo.Context) error {
	var request ChatRequest
	if err := c.Bind(&request); err != nil {
		return httpError(apierrors.InvalidArgument("malformed request body"))
	}
	if request.Message == "" {
		return httpError(apierrors.InvalidArgument("message is required"))
	}
	if request.SessionID == "" {
		request.SessionID = shortuuid.New()
	}

	reqCtx := observability.NewRequestContext(slog.Default(), "chat", request.SessionID)

	ctx, cancel := context.WithTimeout(c.Request().Context(), timeout.DispatchTimeout)
	defer cancel()
	ctx = observability.WithRequestContext(ctx, reqCtx)

	if err := s.dispatchSemaphore.Acquire(ctx, 1); err != nil {
		return httpError(apierrors.ServiceUnavailable("server is busy, try again shortly"))
	}
	defer s.dispatchSemaphore.Release(1)

	intent, err := s.IntentProducer.Produce(ctx, request.Message)
	if err != nil {
		reqCtx.Error("intent extraction failed", err)
		return httpError(apierrors.LLMUnavailable("could not understand the message"))
	}

	result := s.Dispatcher.Dispatch(ctx, intent)
	s.Metrics.RecordDispatch(string(result.Outcome), reqCtx.Duration())

	reqCtx.Info("chat turn completed",
		slog.String(observability.LogFieldOutcome, string(result.Outcome)),
		slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()))

	s.persistChatTurn(ctx, request, intent, result)

	location := s.displayLocation()
	response := &ChatResponse{
		SessionID: request.SessionID,
		Outcome:   string(result.Outcome),
		Message:   result.Message,
	}
	if result.Event != nil {
		response.Event = toEventPayload(result.Event, location)
	}
	for _, candidate := range result.Candidates {
		response.Candidates = append(response.Candidates, toEventPayload(candidate, location))
	}

	return c.JSON(http.StatusOK, response)
}

// persistChatTurn records both sides of the exchange. Persistence is
// best effort: a storage hiccup must not fail a dispatched command.
func (s *APIV1Service) persistChatTurn(ctx context.Context, request ChatRequest, intent *dispatch.Intent, result *dispatch.DispatchResult) {
	if s.Store == nil {
		return
	}

	if _, err := s.Store.CreateChatMessage(ctx, &store.ChatMessage{
		UID:       shortuuid.New(),
		SessionID: request.SessionID,
		Role:      store.ChatMessageRoleUser,
		Content:   request.Message,
	}); err != nil {
		slog.Warn("failed to persist user message", "error", err)
	}

	intentJSON, _ := json.Marshal(intent)
	if _, err := s.Store.CreateChatMessage(ctx, &store.ChatMessage{
		UID:       shortuuid.New(),
		SessionID: request.SessionID,
		Role:      store.ChatMessageRoleAssistant,
		Content:   result.Message,
		Intent:    string(intentJSON),
		Outcome:   string(result.Outcome),
	}); err != nil {
		slog.Warn("failed to persist assistant message", "error", err)
	}
}

type ChatMessagePayload struct {
	UID       string `json:"uid"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Outcome   string `json:"outcome,omitempty"`
	CreatedTs int64  `json:"created_ts"`
}

func (s *APIV1Service) handleListChatMessages(c echo.Context) error {
	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		return httpError(apierrors.InvalidArgument("session_id is required"))
	}

	messages, err := s.Store.ListChatMessages(c.Request().Context(), &store.FindChatMessage{
		SessionID: &sessionID,
	})
	if err != nil {
		return httpError(apierrors.Wrap(err, apierrors.ErrCodeServiceUnavailable, "failed to load chat history"))
	}

	payloads := make([]*ChatMessagePayload, 0, len(messages))
	for _, message := range messages {
		payloads = append(payloads, &ChatMessagePayload{
			UID:       message.UID,
			SessionID: message.SessionID,
			Role:      string(message.Role),
			Content:   message.Content,
			Outcome:   message.Outcome,
			CreatedTs: message.CreatedTs,
		})
	}

	return c.JSON(http.StatusOK, payloads)
}

// httpError converts a structured API error into an echo HTTP error.
func httpError(err *apierrors.APIError) error {
	return echo.NewHTTPError(err.HTTPStatus(), err.Message)
}

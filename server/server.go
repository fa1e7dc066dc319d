// Package server assembles the HTTP server: calendar provider, time
// resolution, the command dispatcher, the intent producer, and the API
// routes on top of an Echo instance.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/calagent/internal/profile"
	"github.com/hrygo/calagent/plugin/ai"
	"github.com/hrygo/calagent/plugin/ai/agent"
	"github.com/hrygo/calagent/plugin/ai/aitime"
	"github.com/hrygo/calagent/plugin/gcal"
	apiv1 "github.com/hrygo/calagent/server/router/api/v1"
	"github.com/hrygo/calagent/server/service/dispatch"
	"github.com/hrygo/calagent/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	apiService *apiv1.APIV1Service
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	s := &Server{
		Profile: profile,
		Store:   store,
	}

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(echomw.Recover())
	echoServer.Use(echomw.Secure())
	s.echoServer = echoServer

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	provider, err := gcal.NewClient(ctx, gcal.Config{
		CalendarID:      profile.CalendarID,
		CredentialsJSON: profile.CalendarCredentials,
		Timezone:        profile.Timezone,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create calendar client")
	}

	timeService := aitime.NewService(profile.Timezone, profile.DefaultHour)

	dispatcher, err := dispatch.NewService(provider, timeService, dispatch.Config{
		Timezone:        profile.Timezone,
		DefaultDuration: time.Duration(profile.DefaultDuration) * time.Minute,
		MatchWindow:     time.Duration(profile.MatchWindowDays) * 24 * time.Hour,
		DefaultHour:     profile.DefaultHour,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create dispatcher")
	}

	producer, err := newIntentProducer(profile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create intent producer")
	}

	s.apiService = apiv1.NewAPIV1Service(profile, store, dispatcher, producer)
	s.apiService.Register(echoServer)

	return s, nil
}

// newIntentProducer picks the LLM-backed producer when AI is configured,
// the rule-based one otherwise.
func newIntentProducer(profile *profile.Profile) (agent.IntentProducer, error) {
	aiConfig := ai.NewConfigFromProfile(profile)
	if !aiConfig.Enabled || !profile.IsAIEnabled() {
		slog.Info("AI disabled, using rule-based intent extraction")
		return agent.NewRuleIntentProducer(), nil
	}
	if err := aiConfig.Validate(); err != nil {
		return nil, err
	}
	slog.Info("using LLM intent extraction",
		"provider", aiConfig.LLM.Provider,
		"model", aiConfig.LLM.Model)
	return agent.NewLLMIntentProducer(aiConfig.AgentConfig()), nil
}

func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address)
	return s.echoServer.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}

	slog.Info("server stopped")
}

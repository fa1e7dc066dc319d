// Package v1 exposes the conversational calendar API over HTTP.
package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/semaphore"

	"github.com/hrygo/calagent/internal/profile"
	"github.com/hrygo/calagent/plugin/ai/agent"
	"github.com/hrygo/calagent/server/internal/observability"
	"github.com/hrygo/calagent/server/middleware"
	"github.com/hrygo/calagent/server/service/dispatch"
	"github.com/hrygo/calagent/server/timezone"
	"github.com/hrygo/calagent/store"
)

// maxConcurrentDispatches bounds in-flight chat turns. Calendar mutations
// are slow enough that unbounded concurrency only piles up timeouts.
const maxConcurrentDispatches = 8

type APIV1Service struct {
	Profile        *profile.Profile
	Store          *store.Store
	Dispatcher     dispatch.Service
	IntentProducer agent.IntentProducer
	Metrics        *observability.Metrics

	dispatchSemaphore *semaphore.Weighted
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, dispatcher dispatch.Service, producer agent.IntentProducer) *APIV1Service {
	return &APIV1Service{
		Profile:           profile,
		Store:             store,
		Dispatcher:        dispatcher,
		IntentProducer:    producer,
		Metrics:           observability.NewMetrics(),
		dispatchSemaphore: semaphore.NewWeighted(maxConcurrentDispatches),
	}
}

// Register mounts the API routes on the given Echo instance.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	rateLimiter := middleware.NewRateLimiter()

	apiGroup := echoServer.Group("/api/v1")
	apiGroup.Use(echomw.CORS())
	apiGroup.Use(middleware.RateLimitMiddleware(rateLimiter))

	apiGroup.POST("/chat", s.handleChat)
	apiGroup.GET("/chat/messages", s.handleListChatMessages)
	apiGroup.GET("/events", s.handleListEvents)
	apiGroup.GET("/events/free-slots", s.handleFreeSlots)
	apiGroup.GET("/metrics", s.handleMetrics)
}

// displayLocation resolves the profile timezone for response formatting.
func (s *APIV1Service) displayLocation() *time.Location {
	loc, _ := timezone.ParseTimezone(s.Profile.Timezone)
	return loc
}

func (s *APIV1Service) handleMetrics(c echo.Context) error {
	snapshot := s.Metrics.Snapshot()
	return c.JSON(http.StatusOK, map[string]any{
		"request_total":       snapshot.RequestTotal,
		"request_failed":      snapshot.RequestFailed,
		"outcomes":            snapshot.Outcomes,
		"average_duration_ms": snapshot.AverageDurationMs,
		"success_rate":        snapshot.SuccessRate(),
	})
}

package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates dispatch counters for the metrics endpoint.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	// Per-outcome counters, keyed by the dispatch outcome string.
	outcomes map[string]*atomic.Int64

	totalDuration atomic.Int64 // milliseconds
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		outcomes: make(map[string]*atomic.Int64),
	}
}

// RecordDispatch records one dispatched intent.
func (m *Metrics) RecordDispatch(outcome string, duration time.Duration) {
	m.requestTotal.Add(1)
	if outcome == "error" {
		m.requestFailed.Add(1)
	}
	m.totalDuration.Add(duration.Milliseconds())
	m.outcomeCounter(outcome).Add(1)
}

func (m *Metrics) outcomeCounter(outcome string) *atomic.Int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	counter, ok := m.outcomes[outcome]
	if !ok {
		counter = &atomic.Int64{}
		m.outcomes[outcome] = counter
	}
	return counter
}

// Snapshot returns a point-in-time view of the counters.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	outcomes := make(map[string]int64, len(m.outcomes))
	for outcome, counter := range m.outcomes {
		outcomes[outcome] = counter.Load()
	}

	total := m.requestTotal.Load()
	var avg int64
	if total > 0 {
		avg = m.totalDuration.Load() / total
	}

	return &MetricsSnapshot{
		RequestTotal:      total,
		RequestFailed:     m.requestFailed.Load(),
		Outcomes:          outcomes,
		AverageDurationMs: avg,
	}
}

// Reset resets all counters (useful for testing).
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)
	m.totalDuration.Store(0)

	m.mu.Lock()
	m.outcomes = make(map[string]*atomic.Int64)
	m.mu.Unlock()
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	RequestTotal      int64            `json:"request_total"`
	RequestFailed     int64            `json:"request_failed"`
	Outcomes          map[string]int64 `json:"outcomes"`
	AverageDurationMs int64            `json:"average_duration_ms"`
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}

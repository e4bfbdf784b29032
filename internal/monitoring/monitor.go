// Package monitoring exposes fetch-cycle metrics for prometheus and a small
// status snapshot for the health endpoint.
package monitoring

import (
	"net/http"
	"sync"
	"time"

	"menuboard/internal/client"
	"menuboard/internal/loader"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "menuboard"

var phases = []loader.Phase{loader.PhaseIdle, loader.PhaseLoading, loader.PhaseSuccess, loader.PhaseError}

// Monitor records load machine activity. It implements loader.Recorder.
type Monitor struct {
	registry *prometheus.Registry

	cycles   *prometheus.CounterVec
	duration prometheus.Histogram
	errors   *prometheus.CounterVec
	phase    *prometheus.GaugeVec
	ignored  *prometheus.CounterVec

	mu          sync.RWMutex
	startTime   time.Time
	current     loader.Phase
	lastOutcome loader.Phase
	lastElapsed time.Duration
	cycleCount  int
}

// NewMonitor creates a monitor backed by its own registry.
func NewMonitor() *Monitor {
	m := &Monitor{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_cycles_total",
				Help:      "Completed fetch cycles by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Time from cycle start until both reads resolved",
				Buckets:   prometheus.DefBuckets,
			},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_errors_total",
				Help:      "Failed cycles by failing endpoint and error kind",
			},
			[]string{"endpoint", "kind"},
		),
		phase: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "load_phase",
				Help:      "1 for the machine's current phase, 0 otherwise",
			},
			[]string{"phase"},
		),
		ignored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "triggers_ignored_total",
				Help:      "Activate or retry calls dropped because of the current phase",
			},
			[]string{"trigger"},
		),
		startTime: time.Now(),
		current:   loader.PhaseIdle,
	}

	m.registry.MustRegister(
		m.cycles,
		m.duration,
		m.errors,
		m.phase,
		m.ignored,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.setPhase(loader.PhaseIdle)
	return m
}

// Registry returns the registry the metrics live in.
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Monitor) CycleStarted() {
	m.mu.Lock()
	m.cycleCount++
	m.mu.Unlock()
}

func (m *Monitor) CycleFinished(outcome loader.Phase, elapsed time.Duration, err error) {
	m.cycles.WithLabelValues(string(outcome)).Inc()
	m.duration.Observe(elapsed.Seconds())
	if err != nil {
		m.errors.WithLabelValues(client.Endpoint(err), client.Kind(err)).Inc()
	}

	m.mu.Lock()
	m.lastOutcome = outcome
	m.lastElapsed = elapsed
	m.mu.Unlock()
}

func (m *Monitor) TriggerIgnored(trigger string, _ loader.Phase) {
	m.ignored.WithLabelValues(trigger).Inc()
}

func (m *Monitor) PhaseChanged(phase loader.Phase) {
	m.setPhase(phase)
	m.mu.Lock()
	m.current = phase
	m.mu.Unlock()
}

func (m *Monitor) setPhase(current loader.Phase) {
	for _, p := range phases {
		v := 0.0
		if p == current {
			v = 1
		}
		m.phase.WithLabelValues(string(p)).Set(v)
	}
}

// GetMetrics returns a point-in-time summary for status endpoints.
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	metrics := map[string]interface{}{
		"phase":          string(m.current),
		"cycles_started": m.cycleCount,
		"uptime_seconds": time.Since(m.startTime).Seconds(),
	}
	if m.lastOutcome != "" {
		metrics["last_outcome"] = string(m.lastOutcome)
		metrics["last_duration_ms"] = m.lastElapsed.Milliseconds()
	}
	return metrics
}

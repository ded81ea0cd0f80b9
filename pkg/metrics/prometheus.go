// Package metrics provides Prometheus metrics for the standings service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus metric the service records.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  prometheus.Registerer

	// Refresh cycle metrics.
	refreshCycles   prometheus.Counter
	refreshDuration prometheus.Histogram
	inputDegraded   *prometheus.CounterVec

	// Feed metrics.
	eventsProcessed prometheus.Counter
	eventsDuplicate prometheus.Counter

	// Leaderboard health.
	participants    prometheus.Gauge
	eliminatedTeams prometheus.Gauge
	unknownSeeds    prometheus.Gauge

	// Archive metrics.
	archiveWrites prometheus.Counter
	archiveErrors prometheus.Counter

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global manager on a custom registry so default Go metrics stay out.
var (
	customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry
	globalManager  *Manager                   //nolint:gochecknoglobals // singleton manager
)

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all metrics.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "pickx",
		subsystem: "standings",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initMetrics()
	return m
}

func (m *Manager) initMetrics() {
	auto := promauto.With(m.registry)

	m.refreshCycles = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "refresh_cycles_total",
		Help: "Total number of completed refresh cycles",
	})
	m.refreshDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "refresh_duration_seconds",
		Help:    "Histogram of end-to-end refresh cycle duration",
		Buckets: m.buckets,
	})
	m.inputDegraded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "input_degraded_total",
		Help: "Cycles where an input was degraded to empty/default, by input",
	}, []string{"input"})

	m.eventsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "game_events_total",
		Help: "Total number of normalized game events consumed",
	})
	m.eventsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "game_events_duplicate_total",
		Help: "Game events suppressed by the per-run deduper",
	})

	m.participants = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "participants",
		Help: "Participants on the current leaderboard",
	})
	m.eliminatedTeams = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "eliminated_picks",
		Help: "Picked teams currently marked eliminated",
	})
	m.unknownSeeds = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "unknown_seed_picks",
		Help: "Picked teams absent from the seed table (data-quality signal)",
	})

	m.archiveWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "archive_writes_total",
		Help: "Successful daily snapshot writes",
	})
	m.archiveErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "archive_errors_total",
		Help: "Failed daily snapshot writes",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration by endpoint, method and status code",
		Buckets: m.buckets,
	}, []string{"endpoint", "method", "status_code"})
}

// GetRegistry returns the registry backing the global manager, for promhttp.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers recording on the global manager.

func RecordRefreshCycle(seconds float64) {
	globalManager.refreshCycles.Inc()
	globalManager.refreshDuration.Observe(seconds)
}

func RecordInputDegraded(input string) {
	globalManager.inputDegraded.WithLabelValues(input).Inc()
}

func RecordGameEvents(n int) {
	globalManager.eventsProcessed.Add(float64(n))
}

func RecordEventDuplicate() {
	globalManager.eventsDuplicate.Inc()
}

func UpdateParticipants(n int) {
	globalManager.participants.Set(float64(n))
}

func UpdateEliminatedPicks(n int) {
	globalManager.eliminatedTeams.Set(float64(n))
}

func UpdateUnknownSeedPicks(n int) {
	globalManager.unknownSeeds.Set(float64(n))
}

func RecordArchiveWrite() {
	globalManager.archiveWrites.Inc()
}

func RecordArchiveError() {
	globalManager.archiveErrors.Inc()
}

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(seconds)
}

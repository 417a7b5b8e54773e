// Package metrics provides Prometheus metrics for the homerun analytics service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every Prometheus collector the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Dataset
	datasetRows         prometheus.Gauge
	datasetPlayers      prometheus.Gauge
	datasetLoadDuration prometheus.Histogram
	datasetLoadedUnix   prometheus.Gauge

	// Analytics
	dashboardBuildDuration *prometheus.HistogramVec
	commentaryTemplates    *prometheus.CounterVec
	leaderboardQueries     *prometheus.CounterVec

	// Dashboard cache
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	cacheErrors *prometheus.CounterVec

	// Cache warm-up
	warmQueueSize prometheus.Gauge
	warmJobs      *prometheus.CounterVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure rebuilds the package-level manager from opts on a fresh
// registry, which GetRegistry returns from then on. Call it once at
// start-up, before any handler or worker records.
func Configure(opts ...Option) *Manager {
	reg := prometheus.NewRegistry()
	m := NewManager(append(opts, WithPrometheusRegistry(reg))...)
	customRegistry = reg
	globalManager = m
	return m
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "homerun",
		subsystem:        "analytics",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     buckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_seconds", "HTTP request duration in seconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.datasetRows = auto.NewGauge(m.gaugeOpts("dataset_rows", "Number of batted-ball events loaded"))
	m.datasetPlayers = auto.NewGauge(m.gaugeOpts("dataset_players", "Number of distinct players loaded"))
	m.datasetLoadDuration = auto.NewHistogram(
		m.histogramOpts("dataset_load_duration_seconds", "Time spent loading and indexing the dataset", m.histogramBuckets),
	)
	m.datasetLoadedUnix = auto.NewGauge(m.gaugeOpts("dataset_loaded_unix", "Unix time of the last successful dataset load"))

	m.dashboardBuildDuration = auto.NewHistogramVec(
		m.histogramOpts("dashboard_build_duration_seconds", "Time spent producing a player dashboard", m.histogramBuckets),
		[]string{"outcome"},
	)
	m.commentaryTemplates = auto.NewCounterVec(
		m.counterOpts("commentary_rendered_total", "Commentaries rendered by template index"),
		[]string{"template"},
	)
	m.leaderboardQueries = auto.NewCounterVec(
		m.counterOpts("leaderboard_queries_total", "Ranking queries by kind"),
		[]string{"kind"},
	)

	m.cacheHits = auto.NewCounter(m.counterOpts("cache_hits_total", "Dashboard cache hits"))
	m.cacheMisses = auto.NewCounter(m.counterOpts("cache_misses_total", "Dashboard cache misses"))
	m.cacheErrors = auto.NewCounterVec(
		m.counterOpts("cache_errors_total", "Dashboard cache failures by operation"),
		[]string{"op"},
	)

	m.warmQueueSize = auto.NewGauge(m.gaugeOpts("warm_queue_size", "Players waiting for dashboard pre-build"))
	m.warmJobs = auto.NewCounterVec(
		m.counterOpts("warm_jobs_total", "Dashboard pre-build jobs by outcome"),
		[]string{"outcome"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and error type"),
		[]string{"component", "error_type"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by HTTP endpoint and error type"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	))
}

// RefreshInterval is how often periodic gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Enabled reports whether recording is active.
func (m *Manager) Enabled() bool { return m.enabled }

// RecordHTTPRequest records an HTTP request.
func (m *Manager) RecordHTTPRequest(endpoint, method string, status int, d time.Duration) {
	if !m.enabled {
		return
	}
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(d.Seconds())
}

// UpdateDataset publishes the size of the loaded dataset.
func (m *Manager) UpdateDataset(rows, players int, loadTime time.Duration) {
	if !m.enabled {
		return
	}
	m.datasetRows.Set(float64(rows))
	m.datasetPlayers.Set(float64(players))
	m.datasetLoadDuration.Observe(loadTime.Seconds())
	m.datasetLoadedUnix.Set(float64(time.Now().Unix()))
}

// RecordDashboardBuild observes one dashboard request; outcome is "ok",
// "cached" or "error".
func (m *Manager) RecordDashboardBuild(outcome string, d time.Duration) {
	if !m.enabled {
		return
	}
	m.dashboardBuildDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// RecordCommentaryTemplate counts a rendered commentary template.
func (m *Manager) RecordCommentaryTemplate(index int) {
	if !m.enabled {
		return
	}
	m.commentaryTemplates.WithLabelValues(strconv.Itoa(index)).Inc()
}

// RecordLeaderboardQuery counts a ranking query ("top" or "rank").
func (m *Manager) RecordLeaderboardQuery(kind string) {
	if !m.enabled {
		return
	}
	m.leaderboardQueries.WithLabelValues(kind).Inc()
}

// RecordCacheHit counts a dashboard cache hit.
func (m *Manager) RecordCacheHit() {
	if m.enabled {
		m.cacheHits.Inc()
	}
}

// RecordCacheMiss counts a dashboard cache miss.
func (m *Manager) RecordCacheMiss() {
	if m.enabled {
		m.cacheMisses.Inc()
	}
}

// RecordCacheError counts a failed cache operation ("get" or "set").
func (m *Manager) RecordCacheError(op string) {
	if m.enabled {
		m.cacheErrors.WithLabelValues(op).Inc()
	}
}

// UpdateWarmQueue publishes the warm-up queue depth.
func (m *Manager) UpdateWarmQueue(size int) {
	if m.enabled {
		m.warmQueueSize.Set(float64(size))
	}
}

// RecordWarmJob counts a finished warm-up job by outcome.
func (m *Manager) RecordWarmJob(outcome string) {
	if m.enabled {
		m.warmJobs.WithLabelValues(outcome).Inc()
	}
}

// RecordErrorByComponent increments the error counter for a component.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	if m.enabled {
		m.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByEndpoint increments the error counter for an endpoint.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m.enabled {
		m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystem publishes memory, goroutine and GC pause readings.
func (m *Manager) UpdateSystem(memBytes uint64, goroutines int, gcPauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
	if gcPauseMs > 0 {
		m.systemGCPauseTime.Observe(gcPauseMs)
	}
}

// Global recording functions delegate to the package manager.

// Default returns the package-level manager registered on GetRegistry.
func Default() *Manager { return globalManager }

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method string, status int, d time.Duration) {
	globalManager.RecordHTTPRequest(endpoint, method, status, d)
}

// UpdateDataset publishes dataset size on the global manager.
func UpdateDataset(rows, players int, loadTime time.Duration) {
	globalManager.UpdateDataset(rows, players, loadTime)
}

// RecordDashboardBuild observes a dashboard request on the global manager.
func RecordDashboardBuild(outcome string, d time.Duration) {
	globalManager.RecordDashboardBuild(outcome, d)
}

// RecordCommentaryTemplate counts a rendered template on the global manager.
func RecordCommentaryTemplate(index int) {
	globalManager.RecordCommentaryTemplate(index)
}

// RecordLeaderboardQuery counts a ranking query on the global manager.
func RecordLeaderboardQuery(kind string) {
	globalManager.RecordLeaderboardQuery(kind)
}

// RecordCacheHit counts a cache hit on the global manager.
func RecordCacheHit() { globalManager.RecordCacheHit() }

// RecordCacheMiss counts a cache miss on the global manager.
func RecordCacheMiss() { globalManager.RecordCacheMiss() }

// RecordCacheError counts a cache failure on the global manager.
func RecordCacheError(op string) { globalManager.RecordCacheError(op) }

// UpdateWarmQueue publishes the warm-up queue depth on the global manager.
func UpdateWarmQueue(size int) { globalManager.UpdateWarmQueue(size) }

// RecordWarmJob counts a warm-up job on the global manager.
func RecordWarmJob(outcome string) { globalManager.RecordWarmJob(outcome) }

// RecordErrorByComponent increments the component error counter.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// RecordErrorByEndpoint increments the endpoint error counter.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// UpdateSystem publishes system readings on the global manager.
func UpdateSystem(memBytes uint64, goroutines int, gcPauseMs float64) {
	globalManager.UpdateSystem(memBytes, goroutines, gcPauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

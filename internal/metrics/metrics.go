package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	statsQueries     *prometheus.CounterVec
	computeDuration  *prometheus.HistogramVec
	tradesImported   prometheus.Counter
	snapshotsTotal   *prometheus.CounterVec
	snapshotDuration prometheus.Histogram
	cacheEntries     prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.statsQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradelens_stats_queries_total",
			Help: "Total number of analytics queries by view and cache result",
		},
		[]string{"view", "cache"},
	)
	r.computeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tradelens_compute_duration_seconds",
			Help:    "Time spent loading trades and running the analytics engine",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"view"},
	)
	r.tradesImported = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tradelens_trades_imported_total",
			Help: "Total number of trade records imported",
		},
	)
	r.snapshotsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradelens_snapshots_total",
			Help: "Total number of stats snapshots written",
		},
		[]string{"status"},
	)
	r.snapshotDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tradelens_snapshot_duration_seconds",
			Help:    "Snapshot run duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)
	r.cacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tradelens_cache_entries",
			Help: "Number of memoized analytics results",
		},
	)

	reg.MustRegister(r.statsQueries)
	reg.MustRegister(r.computeDuration)
	reg.MustRegister(r.tradesImported)
	reg.MustRegister(r.snapshotsTotal)
	reg.MustRegister(r.snapshotDuration)
	reg.MustRegister(r.cacheEntries)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordQuery records an analytics query served from cache ("hit") or
// computed ("miss").
func (r *Registry) RecordQuery(view string, hit bool) {
	cache := "miss"
	if hit {
		cache = "hit"
	}
	r.statsQueries.WithLabelValues(view, cache).Inc()
}

// RecordCompute records the duration of an uncached computation.
func (r *Registry) RecordCompute(view string, duration float64) {
	r.computeDuration.WithLabelValues(view).Observe(duration)
}

// RecordImport adds imported trade records.
func (r *Registry) RecordImport(count int) {
	r.tradesImported.Add(float64(count))
}

// RecordSnapshot records a snapshot run.
func (r *Registry) RecordSnapshot(status string, duration float64) {
	r.snapshotsTotal.WithLabelValues(status).Inc()
	r.snapshotDuration.Observe(duration)
}

// SetCacheEntries sets the memo cache size.
func (r *Registry) SetCacheEntries(n int) {
	r.cacheEntries.Set(float64(n))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the dashboard backend and the
// server-side dashboard sessions.
type Metrics struct {
	// Upstream weather provider metrics.
	UpstreamRequests *prometheus.CounterVec // labels: outcome={success,error}
	UpstreamDuration prometheus.Histogram
	SnapshotCache    *prometheus.CounterVec // labels: result={hit,miss}

	HistoryWrites *prometheus.CounterVec // labels: outcome={success,error}

	// Dashboard metrics.
	ChartRenders       *prometheus.CounterVec // labels: metric={temp,humidity,wind,clouds}
	SessionsActive     prometheus.Gauge
	ConnectivityOnline prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.SnapshotCache,
		m.HistoryWrites,
		m.ChartRenders,
		m.SessionsActive,
		m.ConnectivityOnline,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wxdash",
			Name:      "upstream_requests_total",
			Help:      "Weather provider requests by outcome.",
		}, []string{"outcome"}),
		UpstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wxdash",
			Name:      "upstream_request_duration_seconds",
			Help:      "Weather provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SnapshotCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wxdash",
			Name:      "snapshot_cache_total",
			Help:      "Snapshot cache lookups by result.",
		}, []string{"result"}),
		HistoryWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wxdash",
			Name:      "history_writes_total",
			Help:      "History rows written by outcome.",
		}, []string{"outcome"}),
		ChartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wxdash",
			Name:      "chart_renders_total",
			Help:      "Forecast chart renders by metric.",
		}, []string{"metric"}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wxdash",
			Name:      "sessions_active",
			Help:      "Live web dashboard sessions.",
		}),
		ConnectivityOnline: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wxdash",
			Name:      "connectivity_online",
			Help:      "1 when the weather provider is reachable, 0 otherwise.",
		}),
	}
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/config"
)

// ProxyMetrics tracks metrics for the proxy request pipeline.
//
// Metrics:
//   - oap_proxy_requests_total: Total request count by route, method, status
//   - oap_proxy_request_duration_seconds: Request duration histogram
//   - oap_proxy_upstream_errors_total: Transport-level downstream failures
type ProxyMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	upstreamErrors  *prometheus.CounterVec
}

// NewProxyMetrics creates and registers proxy metrics with the provided
// registry.
func NewProxyMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ProxyMetrics {
	pm := &ProxyMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of proxied requests",
			},
			[]string{"route", "method", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of proxied requests in seconds",
				// Agent runs routinely stream for minutes.
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
			},
			[]string{"route", "method"},
		),

		upstreamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_errors_total",
				Help:      "Total number of transport-level upstream failures",
			},
			[]string{"route"},
		),
	}

	registry.MustRegister(
		pm.requestsTotal,
		pm.requestDuration,
		pm.upstreamErrors,
	)

	return pm
}

// RecordRequest records metrics for a completed proxied request.
func (pm *ProxyMetrics) RecordRequest(route, method string, status int, duration time.Duration) {
	pm.requestsTotal.WithLabelValues(route, method, statusClass(status)).Inc()
	pm.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordUpstreamError records a transport-level downstream failure.
func (pm *ProxyMetrics) RecordUpstreamError(route string) {
	pm.upstreamErrors.WithLabelValues(route).Inc()
}

// statusClass buckets a status code into its class ("2xx", "4xx", ...),
// keeping label cardinality bounded.
func statusClass(status int) string {
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

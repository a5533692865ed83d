package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/config"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/token"
)

// Collector is the orchestrator for all Prometheus metrics in the proxy.
// It manages metric registration on an explicit registry and provides a
// unified recording interface for the proxy handlers and the token issuer.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	// Proxy pipeline metrics
	proxyMetrics *ProxyMetrics

	// Token issuance metrics
	tokenMetrics *TokenMetrics
}

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is created; the default global registry is never used.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "oap",
//		Subsystem: "proxy",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.proxyMetrics = NewProxyMetrics(cfg, registry)
	c.tokenMetrics = NewTokenMetrics(cfg, registry)

	return c
}

// RecordRequest records metrics for a completed proxied request. It
// implements the handlers' Metrics interface.
func (c *Collector) RecordRequest(route, method string, status int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.proxyMetrics.RecordRequest(route, method, status, duration)
}

// RecordUpstreamError records a transport-level downstream failure.
func (c *Collector) RecordUpstreamError(route string) {
	if !c.config.Enabled {
		return
	}

	c.proxyMetrics.RecordUpstreamError(route)
}

// TokenRecorder returns the recorder to hand to the token issuer, or nil
// when metrics are disabled. The return type is the issuer's interface so
// a disabled collector yields a true nil rather than a typed nil pointer.
func (c *Collector) TokenRecorder() token.Recorder {
	if !c.config.Enabled {
		return nil
	}

	return c.tokenMetrics
}

// UpdateTokenCacheSize updates the token cache occupancy gauge.
func (c *Collector) UpdateTokenCacheSize(size int) {
	if !c.config.Enabled {
		return
	}

	c.tokenMetrics.UpdateCacheSize(size)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

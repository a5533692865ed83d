package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/config"
)

// TokenMetrics tracks metrics for token issuance and the token cache.
//
// Metrics:
//   - oap_proxy_token_cache_hits_total: Issuances served from the cache
//   - oap_proxy_token_cache_misses_total: Issuances that signed a new token
//   - oap_proxy_token_sign_failures_total: Failed signing attempts
//   - oap_proxy_token_cache_entries: Current cache occupancy
type TokenMetrics struct {
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	signFailures prometheus.Counter
	cacheEntries prometheus.Gauge
}

// NewTokenMetrics creates and registers token metrics with the provided
// registry.
func NewTokenMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *TokenMetrics {
	tm := &TokenMetrics{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "token_cache_hits_total",
			Help:      "Total number of token issuances served from the cache",
		}),

		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "token_cache_misses_total",
			Help:      "Total number of token issuances that signed a new token",
		}),

		signFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "token_sign_failures_total",
			Help:      "Total number of failed token signing attempts",
		}),

		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "token_cache_entries",
			Help:      "Current number of entries in the token cache",
		}),
	}

	registry.MustRegister(
		tm.cacheHits,
		tm.cacheMisses,
		tm.signFailures,
		tm.cacheEntries,
	)

	return tm
}

// RecordCacheHit implements token.Recorder.
func (tm *TokenMetrics) RecordCacheHit() {
	tm.cacheHits.Inc()
}

// RecordCacheMiss implements token.Recorder.
func (tm *TokenMetrics) RecordCacheMiss() {
	tm.cacheMisses.Inc()
}

// RecordSignFailure implements token.Recorder.
func (tm *TokenMetrics) RecordSignFailure() {
	tm.signFailures.Inc()
}

// UpdateCacheSize updates the cache occupancy gauge. The sweeper calls
// this after each purge.
func (tm *TokenMetrics) UpdateCacheSize(size int) {
	tm.cacheEntries.Set(float64(size))
}

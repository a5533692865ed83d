// Package metrics provides Prometheus metrics for the platform proxy.
//
// All metrics are registered on an explicit registry owned by the
// Collector, never the global default registry, so tests can create
// isolated collectors. The Collector records proxy pipeline observations
// and exposes a token.Recorder implementation for the issuer.
package metrics

// Package telemetry provides observability for the platform proxy.
//
// # Components
//
//   - logging: structured slog-based logging (JSON or text)
//   - metrics: Prometheus metrics for the proxy pipeline and token cache
//
// # Usage
//
//	logger, err := logging.Setup(cfg.Telemetry.Logging, os.Stdout)
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	collector.RecordRequest("deployments", "POST", 200, elapsed)
//
// The collector registers on an explicit prometheus.Registry rather than the
// global default, so tests and embedders can run isolated collectors.
package telemetry

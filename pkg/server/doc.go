// Package server ties together the proxy components (handlers, middleware,
// auth, registry, metrics) and provides server lifecycle management
// including start, graceful shutdown, and route setup.
//
// The server exposes:
//
//	/api/deployments/{deploymentID}/{path...}  multi-tenant streaming proxy
//	/api/mcp/{path...}                         single-tenant JSON-biased proxy
//	/health, /ready                            probes
//	/metrics                                   Prometheus exposition (optional)
package server

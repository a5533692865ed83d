// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// This package implements middleware functions that handle common
// functionality across all HTTP requests including request ID generation,
// logging, CORS, and panic recovery.
//
// # Middleware Chain
//
// Middleware functions are chained in a specific order:
//
//	handler = Recovery(Logging(RequestID(CORS(handler))))
//
// Order (innermost to outermost):
//  1. CORS: Add Cross-Origin Resource Sharing headers
//  2. RequestID: Generate and propagate request ID
//  3. Logging: Log request/response details
//  4. Recovery: Recover from panics
//
// There is deliberately no timeout middleware: proxied responses may stream
// indefinitely and cancellation rides the inbound request context instead.
package middleware

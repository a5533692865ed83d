// Package proxy implements the forwarding pipeline of the platform proxy:
// outbound URL rewriting, credential-injecting request forwarding, response
// reconstruction, and the error taxonomy that maps pipeline failures to
// HTTP responses.
//
// The pipeline for an authenticated route is
//
//	resolve identity -> resolve target -> rewrite URL -> forward -> reconstruct
//
// with every failure converted to a scoped HTTP response by WriteError.
// Handlers in the handlers subpackage wire the pipeline to routes.
package proxy

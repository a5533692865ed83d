// Package handlers implements the HTTP handlers of the platform proxy.
//
// Two proxy routes exist. The deployments route is multi-tenant: the first
// path segment selects a deployment from the registry and the response is
// streamed through untouched. The MCP route is single-tenant: it targets
// one configured backend, forces an Accept header that allows both JSON
// and event-stream responses, and reconstructs the response with a
// JSON-biased buffered policy.
//
// Both routes require an authenticated session; the handlers read the
// identity attached by the auth middleware and reject with 401 when it is
// absent.
package handlers

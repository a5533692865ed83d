// Package registry holds the deployment records the proxy routes to and
// resolves inbound deployment identifiers against them.
//
// A deployment is one backend instance of the downstream agent-orchestration
// service, identified by a UUID and reachable at a base URL. Records are
// read-only to the proxy: they are loaded from a file or SQLite backend and
// looked up by exact id match. The resolver additionally enforces the
// deployments-proxy feature flag and hides identifier syntax from callers: a
// malformed id resolves to not-found, exactly like an unknown one.
package registry

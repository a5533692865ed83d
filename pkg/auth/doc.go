// Package auth resolves the caller's session into a user identity.
//
// The proxy does not implement login or session management. It consumes an
// external identity provider through the narrow Resolver interface: given
// the inbound request's session cookie, the provider either returns the
// current user or nothing. Routes that require an identity reject requests
// without one; there is no anonymous path through the authenticated proxies.
package auth

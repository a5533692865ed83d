// Package token issues short-lived signed bearer tokens for downstream
// deployments and caches them per session identity.
//
// The cache is the only shared mutable state in the proxy. It is an explicit
// service object with an injected clock, constructed at startup and passed
// by reference into the issuer; there is no package-level singleton. A
// cached token is returned only while the current time is strictly before
// its expiry, so two issuances for the same identity within the validity
// window return byte-identical tokens without re-signing.
package token

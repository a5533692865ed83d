// Package config defines the configuration structures for the Open Agent
// Platform proxy and provides loading, defaulting, and validation.
//
// Configuration is loaded from a YAML file, defaults are applied for any
// unset fields, and environment variables with the OAP_ prefix override
// file-based values. The signing secret is deliberately not validated at
// load time: its absence is surfaced per-request as a configuration error
// so that the proxy can start before credentials are provisioned.
package config

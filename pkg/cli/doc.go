/*
Package cli provides command-line interface utilities for the platform
proxy. It contains error types and signal handling helpers used by the
oap-proxy command.
*/
package cli

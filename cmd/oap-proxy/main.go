// The oap-proxy command is the authenticating reverse proxy of the Open
// Agent Platform.
//
// It sits between browser clients and agent-orchestration deployments,
// exchanging the caller's session cookie for a signed bearer token and
// forwarding requests to the deployment selected by the URL.
//
// Usage:
//
//	# Start the proxy with default configuration
//	oap-proxy run
//
//	# Start with a custom configuration file
//	oap-proxy run --config /etc/oap/config.yaml
//
//	# Validate configuration without starting
//	oap-proxy run --dry-run
//
//	# Show version information
//	oap-proxy version
package main

func main() {
	Execute()
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "oap-proxy",
	Short: "Open Agent Platform proxy - authenticating reverse proxy for agent deployments",
	Long: `oap-proxy is the authenticating reverse proxy of the Open Agent Platform.

It terminates the browser session, exchanges the session cookie for a signed
bearer token, and forwards requests to agent-orchestration deployments:
  - Multi-tenant routing by deployment UUID with streaming passthrough
  - Single-tenant MCP routing with JSON-biased response handling
  - Per-identity token caching with scheduled cache sweeping
  - Prometheus metrics and structured logging`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

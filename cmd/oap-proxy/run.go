package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/auth"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/cli"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/config"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/registry"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/server"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/telemetry/logging"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/telemetry/metrics"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/token"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the proxy server",
	Long: `Start the proxy server with the specified configuration.

The server listens on the configured address, authenticates callers against
the identity provider, and forwards requests to the registered agent
deployments and the MCP server.

Examples:
  # Start with default config
  oap-proxy run

  # Start with custom config
  oap-proxy run --config /etc/oap/config.yaml

  # Override listen address
  oap-proxy run --listen 0.0.0.0:8080

  # Validate config without starting server
  oap-proxy run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Proxy.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	if _, err := logging.Setup(cfg.Telemetry.Logging, os.Stdout); err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Open Agent Platform proxy v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	// Identity resolution
	resolver, err := buildAuthResolver(cfg)
	if err != nil {
		return cli.NewConfigError("auth", err.Error())
	}

	// Deployment registry
	store, watcher, err := buildRegistryStore(cfg)
	if err != nil {
		return cli.NewConfigError("registry", err.Error())
	}
	defer store.Close()

	// SIGINT and SIGTERM cancel this context; the server drains on
	// cancellation.
	ctx, stop := cli.SetupSignalHandler()
	defer stop()

	if watcher != nil {
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				slog.Error("registry watcher stopped", "error", err)
			}
		}()
		defer watcher.Stop()
		fmt.Printf("✓ Registry watching %s\n", cfg.Registry.FilePath)
	}

	registryResolver := registry.NewResolver(registry.ResolverConfig{
		Store:     store,
		Namespace: cfg.Registry.Namespace,
		Enabled:   func() bool { return cfg.Features.DeploymentsProxyEnabled },
	})

	// Metrics
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		fmt.Printf("✓ Metrics exposed on %s\n", cfg.Telemetry.Metrics.Path)
	}

	// Token issuance
	cache := token.NewCache()
	var recorder token.Recorder
	if collector != nil {
		recorder = collector.TokenRecorder()
	}
	issuer := token.NewIssuer(token.IssuerConfig{
		Secret:    cfg.Signing.Secret,
		Algorithm: cfg.Signing.Algorithm,
		TTL:       cfg.Signing.TokenTTL,
	}, cache, recorder)

	var sizeRecorder token.SizeRecorder
	if collector != nil {
		sizeRecorder = collector
	}
	sweeper := token.NewSweeper(cache, cfg.Signing.SweepSchedule, sizeRecorder)
	if err := sweeper.Start(); err != nil {
		return cli.NewConfigError("signing.sweep_schedule", err.Error())
	}
	defer sweeper.Stop()

	// HTTP server
	srv := server.NewServer(cfg, server.Dependencies{
		AuthResolver: resolver,
		Registry:     registryResolver,
		Store:        store,
		Issuer:       issuer,
		Metrics:      collector,
	})

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Proxy.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Proxy.ListenAddress)
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until a shutdown signal, context cancellation, or a
	// listener error.
	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// buildAuthResolver constructs the identity resolver for the configured auth
// mode.
func buildAuthResolver(cfg *config.Config) (auth.Resolver, error) {
	switch cfg.Auth.Mode {
	case "http":
		return auth.NewHTTPResolver(auth.HTTPResolverConfig{
			IdentityURL: cfg.Auth.IdentityURL,
			CookieName:  cfg.Auth.CookieName,
			Timeout:     cfg.Auth.Timeout,
		}), nil
	case "static":
		return auth.NewStaticResolver(&auth.Identity{
			UserID: cfg.Auth.StaticUserID,
			Email:  cfg.Auth.StaticEmail,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.Auth.Mode)
	}
}

// buildRegistryStore constructs the registry backend. The returned watcher is
// non-nil only for a file backend with watching enabled.
func buildRegistryStore(cfg *config.Config) (registry.Store, *registry.Watcher, error) {
	switch cfg.Registry.Backend {
	case "file":
		store, err := registry.NewFileStore(cfg.Registry.FilePath)
		if err != nil {
			return nil, nil, err
		}
		if !cfg.Registry.Watch {
			return store, nil, nil
		}
		watcher, err := registry.NewWatcher(store)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, watcher, nil
	case "sqlite":
		store, err := registry.NewSQLiteStore(registry.SQLiteConfig{
			Path: cfg.Registry.SQLitePath,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported registry backend: %s", cfg.Registry.Backend)
	}
}

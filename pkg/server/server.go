package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/auth"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/config"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/proxy"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/proxy/handlers"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/proxy/middleware"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/registry"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/telemetry/metrics"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/token"
)

// Server is the HTTP server of the platform proxy. It owns the listener
// lifecycle; the proxied routes are built from the injected dependencies.
type Server struct {
	config       *config.Config
	deps         Dependencies
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Dependencies are the components the server wires into its routes.
type Dependencies struct {
	// AuthResolver resolves session credentials into identities.
	AuthResolver auth.Resolver

	// Registry resolves deployment identifiers into proxy targets.
	Registry *registry.Resolver

	// Store is the registry backend, probed by the readiness endpoint.
	Store registry.Store

	// Issuer issues bearer tokens for the forwarders.
	Issuer *token.Issuer

	// Metrics is the metrics collector. May be nil.
	Metrics *metrics.Collector
}

// NewServer creates a new proxy server.
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	return &Server{
		config:       cfg,
		deps:         deps,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	// No ReadTimeout or default WriteTimeout: proxied bodies are streamed
	// and agent runs are long-lived. Header reading is still bounded.
	s.httpServer = &http.Server{
		Addr:              s.config.Proxy.ListenAddress,
		Handler:           handler,
		ReadHeaderTimeout: s.config.Proxy.ReadHeaderTimeout,
		WriteTimeout:      s.config.Proxy.WriteTimeout,
		IdleTimeout:       s.config.Proxy.IdleTimeout,
		MaxHeaderBytes:    s.config.Proxy.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting proxy server",
			"address", s.config.Proxy.ListenAddress,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Signal handling belongs to the caller: the run command derives ctx
	// from cli.SetupSignalHandler, so SIGINT and SIGTERM arrive here as
	// context cancellation.
	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown",
			"timeout", s.config.Proxy.ShutdownTimeout.String(),
		)

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Proxy.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("proxy server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	var handlerMetrics handlers.Metrics
	if s.deps.Metrics != nil {
		handlerMetrics = s.deps.Metrics
	}

	// Multi-tenant route: streaming passthrough per deployment.
	deploymentsForwarder := proxy.NewForwarder(proxy.ForwarderConfig{
		Issuer: s.deps.Issuer,
	})
	deploymentsHandler := handlers.NewDeploymentsHandler(
		s.deps.Registry, deploymentsForwarder, handlerMetrics)

	// Single-tenant route: forced Accept, buffered JSON-biased responses.
	mcpForwarder := proxy.NewForwarder(proxy.ForwarderConfig{
		Issuer:      s.deps.Issuer,
		ForceAccept: true,
	})
	mcpHandler := handlers.NewMCPHandler(handlers.MCPHandlerConfig{
		BaseURL:     func() string { return s.config.MCP.BaseURL },
		PathSegment: s.config.MCP.PathSegment,
		Forwarder:   mcpForwarder,
		Metrics:     handlerMetrics,
	})

	mux.Handle("/api/deployments/{deploymentID}/{path...}", deploymentsHandler)
	mux.Handle("/api/mcp", mcpHandler)
	mux.Handle("/api/mcp/{path...}", mcpHandler)

	mux.Handle("/health", handlers.NewHealthHandler())
	mux.Handle("/ready", handlers.NewReadyHandler(func(ctx context.Context) error {
		_, err := s.deps.Store.Deployments(ctx)
		return err
	}))

	if s.deps.Metrics != nil && s.config.Telemetry.Metrics.Enabled {
		mux.Handle(s.config.Telemetry.Metrics.Path, s.deps.Metrics.Handler())
	}

	// Middleware chain. Auth is innermost so every route sees the resolved
	// identity; it attaches without rejecting, handlers enforce 401.
	var handler http.Handler = mux
	handler = auth.Middleware(s.deps.AuthResolver)(handler)
	handler = middleware.CORSMiddleware(s.convertCORSConfig())(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RecoveryMiddleware(handler)

	return handler
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler. Tests use this to exercise
// the full route and middleware stack without a listener.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// convertCORSConfig converts config.CORSConfig to middleware.CORSConfig.
func (s *Server) convertCORSConfig() *middleware.CORSConfig {
	return &middleware.CORSConfig{
		Enabled:          s.config.Proxy.CORS.Enabled,
		AllowedOrigins:   s.config.Proxy.CORS.AllowedOrigins,
		AllowedMethods:   s.config.Proxy.CORS.AllowedMethods,
		AllowedHeaders:   s.config.Proxy.CORS.AllowedHeaders,
		MaxAge:           s.config.Proxy.CORS.MaxAge,
		AllowCredentials: s.config.Proxy.CORS.AllowCredentials,
	}
}

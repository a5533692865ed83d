package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/auth"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/proxy"
)

// routeMCP is the metrics label for the single-tenant route.
const routeMCP = "mcp"

// MCPHandler proxies requests to the single configured MCP backend. The
// fixed path segment is inserted between the backend base URL and the
// residual path, the Accept header is forced to allow both JSON and
// event-stream responses, and the response is reconstructed with the
// buffered JSON-biased policy.
type MCPHandler struct {
	baseURL       func() string
	pathSegment   string
	forwarder     *proxy.Forwarder
	reconstructor proxy.Reconstructor
	metrics       Metrics
	logger        *slog.Logger
}

// MCPHandlerConfig contains configuration for the MCP proxy handler.
type MCPHandlerConfig struct {
	// BaseURL returns the backend base URL. It is read per request so an
	// unset value is a per-request configuration error, not a startup
	// failure. Must not be nil.
	BaseURL func() string

	// PathSegment is the fixed literal segment inserted between the base
	// URL and the residual path.
	PathSegment string

	// Forwarder sends the rewritten request. It should be constructed
	// with ForceAccept set.
	Forwarder *proxy.Forwarder

	// Metrics receives per-request observations. May be nil.
	Metrics Metrics
}

// NewMCPHandler creates the single-tenant proxy handler.
func NewMCPHandler(cfg MCPHandlerConfig) *MCPHandler {
	return &MCPHandler{
		baseURL:       cfg.BaseURL,
		pathSegment:   cfg.PathSegment,
		forwarder:     cfg.Forwarder,
		reconstructor: proxy.JSONReconstructor{},
		metrics:       cfg.Metrics,
		logger:        slog.Default().With("component", "handlers.mcp"),
	}
}

// ServeHTTP implements http.Handler. The route pattern provides the
// "path" value.
func (h *MCPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := h.serve(w, r)

	if h.metrics != nil {
		h.metrics.RecordRequest(routeMCP, r.Method, status, time.Since(start))
	}
}

func (h *MCPHandler) serve(w http.ResponseWriter, r *http.Request) int {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return proxy.WriteError(w, auth.ErrNoSession)
	}

	outboundURL, err := proxy.JoinTargetWithSegment(
		h.baseURL(), h.pathSegment, proxy.SplitPath(r.PathValue("path")), r.URL.RawQuery)
	if err != nil {
		return proxy.WriteError(w, err)
	}

	resp, err := h.forwarder.Forward(r, outboundURL, identity)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordUpstreamError(routeMCP)
		}
		return proxy.WriteError(w, err)
	}
	defer resp.Body.Close()

	if err := h.reconstructor.Reconstruct(w, resp); err != nil {
		// A body read failure happens before anything is written and can
		// still produce a 502; a write failure cannot.
		var downstreamErr *proxy.DownstreamError
		if errors.As(err, &downstreamErr) {
			if h.metrics != nil {
				h.metrics.RecordUpstreamError(routeMCP)
			}
			return proxy.WriteError(w, err)
		}
		h.logger.WarnContext(r.Context(), "response write failed", "error", err)
	}

	return resp.StatusCode
}

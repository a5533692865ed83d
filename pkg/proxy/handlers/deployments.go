package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/auth"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/proxy"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/registry"
)

// Metrics receives per-request observations from the proxy handlers.
// A nil Metrics disables recording.
type Metrics interface {
	// RecordRequest is called once per completed request.
	RecordRequest(route, method string, status int, duration time.Duration)

	// RecordUpstreamError is called when the downstream could not be
	// reached or failed at the transport level.
	RecordUpstreamError(route string)
}

// routeDeployments is the metrics label for the multi-tenant route.
const routeDeployments = "deployments"

// DeploymentsHandler proxies requests to registered deployments. The
// deployment is selected by the UUID path segment and the response is
// streamed through unmodified.
type DeploymentsHandler struct {
	resolver      *registry.Resolver
	forwarder     *proxy.Forwarder
	reconstructor proxy.Reconstructor
	metrics       Metrics
	logger        *slog.Logger
}

// NewDeploymentsHandler creates the multi-tenant proxy handler.
// The metrics recorder may be nil.
func NewDeploymentsHandler(resolver *registry.Resolver, forwarder *proxy.Forwarder, metrics Metrics) *DeploymentsHandler {
	return &DeploymentsHandler{
		resolver:      resolver,
		forwarder:     forwarder,
		reconstructor: proxy.StreamReconstructor{},
		metrics:       metrics,
		logger:        slog.Default().With("component", "handlers.deployments"),
	}
}

// ServeHTTP implements http.Handler. The route pattern provides the
// "deploymentID" and "path" values.
func (h *DeploymentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := h.serve(w, r)

	if h.metrics != nil {
		h.metrics.RecordRequest(routeDeployments, r.Method, status, time.Since(start))
	}
}

// serve runs the proxy pipeline and returns the response status for
// metrics. Failures terminate in proxy.WriteError.
func (h *DeploymentsHandler) serve(w http.ResponseWriter, r *http.Request) int {
	// Flag first: a disabled route is 403 for every caller, so an
	// unauthenticated request must not be told 401 instead.
	if !h.resolver.Enabled() {
		return proxy.WriteError(w, registry.ErrRouteDisabled)
	}

	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return proxy.WriteError(w, auth.ErrNoSession)
	}

	deploymentID := r.PathValue("deploymentID")
	target, err := h.resolver.Resolve(r.Context(), deploymentID)
	if err != nil {
		return proxy.WriteError(w, err)
	}

	outboundURL, err := proxy.JoinTarget(target.URL, proxy.SplitPath(r.PathValue("path")), r.URL.RawQuery)
	if err != nil {
		return proxy.WriteError(w, err)
	}

	resp, err := h.forwarder.Forward(r, outboundURL, identity)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordUpstreamError(routeDeployments)
		}
		return proxy.WriteError(w, err)
	}
	defer resp.Body.Close()

	if err := h.reconstructor.Reconstruct(w, resp); err != nil {
		// The status line is already on the wire; all that is left is to
		// log the truncation.
		h.logger.WarnContext(r.Context(), "response streaming interrupted",
			"deployment_id", deploymentID,
			"error", err,
		)
	}

	return resp.StatusCode
}

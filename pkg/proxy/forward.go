package proxy

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/auth"
)

// StreamingAccept is the Accept value advertised when a route must support
// long-lived streaming responses alongside plain JSON.
const StreamingAccept = "application/json, text/event-stream"

// TokenIssuer issues bearer tokens for resolved identities.
type TokenIssuer interface {
	Issue(ctx context.Context, id *auth.Identity, extra map[string]any) (string, error)
}

// Forwarder sends a rewritten request to a downstream service with the
// caller's identity converted to a bearer token. It never returns transport
// failures raw; they come back as a DownstreamError for the 502 boundary.
type Forwarder struct {
	client      *http.Client
	issuer      TokenIssuer
	forceAccept bool
	logger      *slog.Logger
}

// ForwarderConfig contains configuration for a request forwarder.
type ForwarderConfig struct {
	// Client is the HTTP client for outbound requests. A nil client uses
	// http.DefaultClient. No internal timeout is imposed; responses may
	// stream indefinitely and cancellation rides the request context.
	Client *http.Client

	// Issuer issues bearer tokens for resolved identities.
	Issuer TokenIssuer

	// ForceAccept overwrites the outbound Accept header with
	// StreamingAccept regardless of what the caller sent.
	ForceAccept bool
}

// NewForwarder creates a request forwarder.
func NewForwarder(cfg ForwarderConfig) *Forwarder {
	client := cfg.Client
	if client == nil {
		client = http.DefaultClient
	}

	return &Forwarder{
		client:      client,
		issuer:      cfg.Issuer,
		forceAccept: cfg.ForceAccept,
		logger:      slog.Default().With("component", "proxy.forwarder"),
	}
}

// Forward sends the inbound request to outboundURL on behalf of the
// identity and returns the downstream response unread.
//
// All inbound headers are copied except Host. The Authorization header is
// replaced with a freshly issued bearer token; the caller's own credentials
// never reach the downstream. For GET, HEAD, and OPTIONS the body is
// dropped even if present; for every other method the inbound body is
// forwarded as a stream, never buffered. Cancellation of the inbound
// request propagates to the outbound call.
//
// The caller owns the returned response body and must close it.
func (f *Forwarder) Forward(r *http.Request, outboundURL string, id *auth.Identity) (*http.Response, error) {
	ctx := r.Context()

	bearer, err := f.issuer.Issue(ctx, id, map[string]any{
		"name": id.Name(),
	})
	if err != nil {
		return nil, err
	}

	var body io.Reader
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		body = nil
	default:
		body = r.Body
	}

	out, err := http.NewRequestWithContext(ctx, r.Method, outboundURL, body)
	if err != nil {
		return nil, &DownstreamError{URL: outboundURL, Err: err}
	}
	if body != nil {
		// r.Body is an opaque reader to NewRequestWithContext, so the
		// inbound length must be carried over explicitly or the outbound
		// request degrades to chunked encoding.
		out.ContentLength = r.ContentLength
	}

	copyHeaders(out.Header, r.Header)
	out.Header.Del("Host")
	out.Header.Set("Authorization", "Bearer "+bearer)
	if f.forceAccept {
		out.Header.Set("Accept", StreamingAccept)
	}

	resp, err := f.client.Do(out)
	if err != nil {
		f.logger.WarnContext(ctx, "downstream request failed",
			"url", outboundURL,
			"method", r.Method,
			"error", err,
		)
		return nil, &DownstreamError{URL: outboundURL, Err: err}
	}

	return resp, nil
}

// copyHeaders replaces dst's values with src's for every key in src.
// Keys present only in dst are left alone.
func copyHeaders(dst, src http.Header) {
	for k, vv := range src {
		dst.Del(k)
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

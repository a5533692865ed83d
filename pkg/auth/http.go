package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// HTTPResolver resolves identities by calling the identity provider's
// userinfo endpoint with the inbound request's session cookie.
//
// The provider is expected to respond 200 with a JSON body containing the
// user's id, email, and optional display name. Any non-200 response is
// treated as an absent session, not an error: an expired or forged cookie is
// indistinguishable from no cookie as far as the proxy is concerned.
type HTTPResolver struct {
	// endpoint is the userinfo URL of the identity provider.
	endpoint string

	// cookieName is the session cookie forwarded to the provider.
	cookieName string

	// client is the HTTP client used for lookups.
	client *http.Client

	logger *slog.Logger
}

// HTTPResolverConfig contains configuration for the HTTP identity resolver.
type HTTPResolverConfig struct {
	// IdentityURL is the identity provider's userinfo endpoint.
	IdentityURL string

	// CookieName is the session cookie to forward.
	CookieName string

	// Timeout is the maximum duration for a single lookup.
	Timeout time.Duration
}

// userinfoResponse is the JSON shape returned by the identity provider.
// Display name fields vary between providers; both common spellings are
// accepted.
type userinfoResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// maxUserinfoBody bounds the identity provider response size.
const maxUserinfoBody = 1 << 20 // 1MB

// NewHTTPResolver creates a resolver that calls the configured identity
// provider endpoint.
func NewHTTPResolver(cfg HTTPResolverConfig) *HTTPResolver {
	return &HTTPResolver{
		endpoint:   cfg.IdentityURL,
		cookieName: cfg.CookieName,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     slog.Default().With("component", "auth.http"),
	}
}

// Resolve forwards the request's session cookie to the identity provider and
// parses the returned user.
//
// Returns ErrNoSession when the request has no session cookie or the
// provider rejects it. Transport failures reaching the provider are returned
// as errors so callers can distinguish an unreachable provider from an
// unauthenticated caller.
func (p *HTTPResolver) Resolve(ctx context.Context, r *http.Request) (*Identity, error) {
	cookie, err := r.Cookie(p.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build identity request: %w", err)
	}
	req.AddCookie(cookie)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.DebugContext(ctx, "identity provider rejected session",
			"status", resp.StatusCode,
		)
		return nil, ErrNoSession
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUserinfoBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read identity response: %w", err)
	}

	var info userinfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse identity response: %w", err)
	}
	if info.ID == "" {
		return nil, ErrNoSession
	}

	name := info.DisplayName
	if name == "" {
		name = info.Name
	}

	return &Identity{
		UserID:      info.ID,
		Email:       info.Email,
		DisplayName: name,
	}, nil
}

package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

// ErrNoSession is returned when the inbound request carries no resolvable
// session. Routes that require an identity convert this into a 401 response.
var ErrNoSession = errors.New("no authenticated session")

// Identity is the caller's resolved session identity. It is derived once per
// inbound request and never persisted beyond the request's lifetime, except
// as a token cache key.
type Identity struct {
	// UserID is the identity provider's unique user identifier.
	UserID string

	// Email is the user's email address.
	Email string

	// DisplayName is the user's display name, if the provider supplies one.
	// May be empty; callers fall back to Email.
	DisplayName string
}

// Name returns the identity's display name, falling back to the email
// address when the provider did not supply one.
func (id *Identity) Name() string {
	if id.DisplayName != "" {
		return id.DisplayName
	}
	return id.Email
}

// Resolver resolves the inbound request's credentials into an identity.
//
// Implementations must return ErrNoSession (possibly wrapped) when the
// request carries no valid session, and reserve other errors for lookup
// failures (e.g., the identity provider being unreachable).
type Resolver interface {
	// Resolve returns the identity for the request's session, or
	// ErrNoSession if the request is not authenticated.
	Resolve(ctx context.Context, r *http.Request) (*Identity, error)
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// identityKey stores the resolved identity in the request context.
const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom extracts the identity from the context.
// Returns (nil, false) if no identity has been attached.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}

// Middleware resolves the request's identity and attaches it to the request
// context. Resolution failures are not rejected here: handlers that require
// an identity enforce it themselves, so that public routes (health, metrics)
// can share the middleware chain.
func Middleware(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := resolver.Resolve(r.Context(), r)
			switch {
			case err == nil && id != nil:
				r = r.WithContext(WithIdentity(r.Context(), id))
			case err != nil && !errors.Is(err, ErrNoSession):
				// Lookup failures are logged but treated as an absent
				// session; the route decides whether that is fatal.
				slog.WarnContext(r.Context(), "identity lookup failed",
					"path", r.URL.Path,
					"error", err,
				)
			}
			next.ServeHTTP(w, r)
		})
	}
}

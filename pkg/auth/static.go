package auth

import (
	"context"
	"net/http"
)

// StaticResolver returns a fixed identity for every request. It exists for
// local development and tests, where no identity provider is running.
type StaticResolver struct {
	// Identity is returned for every request. A nil Identity makes the
	// resolver behave as if no session exists.
	Identity *Identity
}

// NewStaticResolver creates a resolver that always returns the given
// identity.
func NewStaticResolver(id *Identity) *StaticResolver {
	return &StaticResolver{Identity: id}
}

// Resolve returns the configured identity, or ErrNoSession if none is set.
func (p *StaticResolver) Resolve(_ context.Context, _ *http.Request) (*Identity, error) {
	if p.Identity == nil {
		return nil, ErrNoSession
	}
	return p.Identity, nil
}

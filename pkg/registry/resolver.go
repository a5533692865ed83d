package registry

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Resolver maps a deployment identifier segment from a request path to a
// proxy target. Resolution is total: any string is a valid input and the
// answer is either a target or an error from the taxonomy in errors.go.
type Resolver struct {
	store     Store
	namespace string
	enabled   func() bool
	logger    *slog.Logger
}

// ResolverConfig contains configuration for the deployment resolver.
type ResolverConfig struct {
	// Store is the registry backend to resolve against.
	Store Store

	// Namespace is the proxy-side route namespace, e.g. "deployments".
	Namespace string

	// Enabled reports whether the deployments proxy is enabled. It is
	// consulted on every resolution so a flag flip takes effect without a
	// restart. A nil func means always enabled.
	Enabled func() bool
}

// NewResolver creates a deployment resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	return &Resolver{
		store:     cfg.Store,
		namespace: cfg.Namespace,
		enabled:   cfg.Enabled,
		logger:    slog.Default().With("component", "registry.resolver"),
	}
}

// Enabled reports whether the deployments proxy is currently enabled.
// Handlers consult it before touching the caller's identity so a disabled
// route answers 403 to everyone, authenticated or not.
func (r *Resolver) Enabled() bool {
	return r.enabled == nil || r.enabled()
}

// Resolve maps an identifier segment to a proxy target.
//
// The flag check runs first: when the deployments proxy is disabled every
// resolution fails with ErrRouteDisabled, even for identifiers that would
// otherwise resolve. A segment that is not a well-formed UUID is reported
// as not found rather than as a distinct error, and lookup is an exact
// string match against the records.
func (r *Resolver) Resolve(ctx context.Context, id string) (*Target, error) {
	if r.enabled != nil && !r.enabled() {
		return nil, ErrRouteDisabled
	}

	if _, err := uuid.Parse(id); err != nil {
		return nil, &DeploymentNotFoundError{ID: id}
	}

	deployments, err := r.store.Deployments(ctx)
	if err != nil {
		return nil, err
	}

	for _, d := range deployments {
		if d.ID == id {
			return &Target{
				BaseRoute: r.namespace + "/" + d.ID,
				URL:       d.BaseURL,
			}, nil
		}
	}

	return nil, &DeploymentNotFoundError{ID: id}
}

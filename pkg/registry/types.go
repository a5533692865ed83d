package registry

import "context"

// Deployment is a single backend deployment record. Records are sourced
// from an external registry backend and never created or mutated by the
// proxy.
type Deployment struct {
	// ID is the deployment's UUID, matched exactly (no case normalization).
	ID string `yaml:"id" json:"id"`

	// Name is a human-readable deployment name. Informational only.
	Name string `yaml:"name" json:"name"`

	// BaseURL is the deployment's base URL, the target of rewritten
	// requests.
	BaseURL string `yaml:"base_url" json:"base_url"`

	// Prefix is the deployment's routing prefix within the proxy
	// namespace. Informational; the resolver derives the base route from
	// the namespace and id.
	Prefix string `yaml:"prefix" json:"prefix"`
}

// Store provides read access to the current deployment records.
//
// Implementations must be safe for concurrent use. The proxy assumes
// lookups are synchronous and fast (an in-memory snapshot or a local
// database).
type Store interface {
	// Deployments returns the current list of deployment records.
	Deployments(ctx context.Context) ([]Deployment, error)

	// Close releases any resources held by the store.
	Close() error
}

// Target is the outcome of a successful resolution: where requests for a
// deployment are sent. It is computed per request and never persisted.
type Target struct {
	// BaseRoute is the proxy-side route prefix for the deployment,
	// "<namespace>/<deploymentID>".
	BaseRoute string

	// URL is the deployment's base URL.
	URL string
}

package registry

import (
	"errors"
	"fmt"
)

// Common registry errors that can be checked with errors.Is().
var (
	// ErrDeploymentNotFound is returned when a deployment id is unknown or
	// malformed. The two cases are deliberately indistinguishable so the
	// identifier format is not leaked to callers.
	ErrDeploymentNotFound = errors.New("deployment not found")

	// ErrRouteDisabled is returned when the deployments proxy is disabled
	// by feature flag. It takes precedence over not-found.
	ErrRouteDisabled = errors.New("deployments proxy is not enabled")
)

// DeploymentNotFoundError is returned when resolution fails for a specific
// identifier segment.
type DeploymentNotFoundError struct {
	// ID is the identifier segment that failed to resolve.
	ID string
}

// Error implements the error interface.
func (e *DeploymentNotFoundError) Error() string {
	return fmt.Sprintf("deployment %q not found", e.ID)
}

// Is implements error matching for errors.Is().
func (e *DeploymentNotFoundError) Is(target error) bool {
	return target == ErrDeploymentNotFound
}

// StorageError is returned when a registry backend operation fails.
type StorageError struct {
	// Backend is the backend name ("file", "sqlite").
	Backend string

	// Op is the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// NewStorageError creates a storage error for the given backend operation.
func NewStorageError(backend, op string, err error) *StorageError {
	return &StorageError{Backend: backend, Op: op, Err: err}
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("registry %s: %s: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the wrapped error for error chain traversal.
func (e *StorageError) Unwrap() error {
	return e.Err
}

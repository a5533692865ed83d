package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/auth"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/registry"
	"github.com/sasif-infinite/open-agent-platform-infinite/pkg/token"
)

// Common proxy errors that can be checked with errors.Is().
var (
	// ErrNoTargetConfigured is returned when a route has no target base URL
	// configured. This is a configuration error surfaced per-request.
	ErrNoTargetConfigured = errors.New("no target base URL configured")
)

// DownstreamError is returned when the downstream service cannot be reached
// or fails at the transport level. It is the only error that maps to 502.
type DownstreamError struct {
	// URL is the outbound URL that failed.
	URL string

	// Err is the underlying transport error.
	Err error
}

// Error implements the error interface.
func (e *DownstreamError) Error() string {
	return fmt.Sprintf("downstream request to %s failed: %v", e.URL, e.Err)
}

// Unwrap returns the wrapped error for error chain traversal.
func (e *DownstreamError) Unwrap() error {
	return e.Err
}

// ErrorResponse is the JSON envelope for proxy errors. Message is a stable,
// machine-readable summary; Error carries the underlying cause's text when
// one exists.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Stable error messages for the response envelope.
const (
	msgAuthRequired  = "Authentication required"
	msgRouteDisabled = "Deployment proxying is not enabled"
	msgNotFound      = "Deployment not found"
	msgTokenFailure  = "Failed to generate authentication token"
	msgNoTarget      = "Proxy target is not configured"
	msgDownstream    = "Failed to reach upstream service"
	msgInternalError = "Internal server error"
)

// classify maps an error to its HTTP status and envelope. Unknown errors
// fall through to 500 without exposing their text.
func classify(err error) (int, ErrorResponse) {
	var downstreamErr *DownstreamError
	switch {
	case errors.Is(err, auth.ErrNoSession):
		return http.StatusUnauthorized, ErrorResponse{Message: msgAuthRequired}

	case errors.Is(err, registry.ErrRouteDisabled):
		return http.StatusForbidden, ErrorResponse{Message: msgRouteDisabled}

	case errors.Is(err, registry.ErrDeploymentNotFound):
		return http.StatusNotFound, ErrorResponse{Message: msgNotFound}

	case errors.Is(err, token.ErrNoSigningSecret),
		errors.Is(err, token.ErrUnsupportedAlgorithm):
		return http.StatusInternalServerError,
			ErrorResponse{Message: msgTokenFailure, Error: err.Error()}

	case errors.Is(err, ErrNoTargetConfigured):
		return http.StatusInternalServerError,
			ErrorResponse{Message: msgNoTarget, Error: err.Error()}

	case errors.As(err, &downstreamErr):
		return http.StatusBadGateway,
			ErrorResponse{Message: msgDownstream, Error: downstreamErr.Err.Error()}

	default:
		return http.StatusInternalServerError, ErrorResponse{Message: msgInternalError}
	}
}

// WriteError converts an error from the proxy pipeline into its HTTP
// response. Every request failure terminates here; nothing is retried and
// nothing escapes to the process level.
func WriteError(w http.ResponseWriter, err error) int {
	status, body := classify(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)

	return status
}

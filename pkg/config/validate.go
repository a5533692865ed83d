package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "proxy.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration. It implements the error interface and provides access to
// all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// validSigningAlgorithms are the supported HMAC signing algorithms.
var validSigningAlgorithms = map[string]bool{
	"HS256": true,
	"HS384": true,
	"HS512": true,
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
//
// The signing secret and the MCP base URL are intentionally not required:
// their absence is a per-request configuration error, not a startup error.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateProxy(&cfg.Proxy)...)
	errs = append(errs, validateAuth(&cfg.Auth)...)
	errs = append(errs, validateSigning(&cfg.Signing)...)
	errs = append(errs, validateRegistry(&cfg.Registry)...)
	errs = append(errs, validateMCP(&cfg.MCP)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// validateProxy validates the proxy server configuration.
func validateProxy(cfg *ProxyConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "proxy.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "proxy.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: must be host:port", cfg.ListenAddress),
		})
	}

	if cfg.ReadHeaderTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.read_header_timeout",
			Message: "must not be negative",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.write_timeout",
			Message: "must not be negative",
		})
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.max_header_bytes",
			Message: "must not be negative",
		})
	}
	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.cors.max_age",
			Message: "must not be negative",
		})
	}

	return errs
}

// validateAuth validates the identity lookup configuration.
func validateAuth(cfg *AuthConfig) []FieldError {
	var errs []FieldError

	switch cfg.Mode {
	case "http":
		if cfg.IdentityURL == "" {
			errs = append(errs, FieldError{
				Field:   "auth.identity_url",
				Message: "identity URL is required in http mode",
			})
		} else if u, err := url.Parse(cfg.IdentityURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "auth.identity_url",
				Message: fmt.Sprintf("invalid identity URL %q", cfg.IdentityURL),
			})
		}
	case "static":
		if cfg.StaticUserID == "" {
			errs = append(errs, FieldError{
				Field:   "auth.static_user_id",
				Message: "static user id is required in static mode",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "auth.mode",
			Message: fmt.Sprintf("invalid mode %q: must be one of: http, static", cfg.Mode),
		})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "auth.timeout",
			Message: "must not be negative",
		})
	}

	return errs
}

// validateSigning validates the token signing configuration.
func validateSigning(cfg *SigningConfig) []FieldError {
	var errs []FieldError

	if !validSigningAlgorithms[cfg.Algorithm] {
		errs = append(errs, FieldError{
			Field:   "signing.algorithm",
			Message: fmt.Sprintf("invalid algorithm %q: must be one of: HS256, HS384, HS512", cfg.Algorithm),
		})
	}
	if cfg.TokenTTL <= 0 {
		errs = append(errs, FieldError{
			Field:   "signing.token_ttl",
			Message: "must be positive",
		})
	}
	if cfg.SweepSchedule != "" {
		if _, err := cron.ParseStandard(cfg.SweepSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "signing.sweep_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.SweepSchedule, err),
			})
		}
	}

	return errs
}

// validateRegistry validates the deployment registry configuration.
func validateRegistry(cfg *RegistryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "file":
		if cfg.FilePath == "" {
			errs = append(errs, FieldError{
				Field:   "registry.file_path",
				Message: "file path is required for the file backend",
			})
		}
	case "sqlite":
		if cfg.SQLitePath == "" {
			errs = append(errs, FieldError{
				Field:   "registry.sqlite_path",
				Message: "sqlite path is required for the sqlite backend",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "registry.backend",
			Message: fmt.Sprintf("invalid backend %q: must be one of: file, sqlite", cfg.Backend),
		})
	}

	if cfg.Namespace == "" {
		errs = append(errs, FieldError{
			Field:   "registry.namespace",
			Message: "namespace is required",
		})
	}

	return errs
}

// validateMCP validates the MCP proxy configuration.
func validateMCP(cfg *MCPConfig) []FieldError {
	var errs []FieldError

	// BaseURL may be empty (route fails per-request), but if set it must parse.
	if cfg.BaseURL != "" {
		if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "mcp.base_url",
				Message: fmt.Sprintf("invalid base URL %q", cfg.BaseURL),
			})
		}
	}
	if strings.Contains(cfg.PathSegment, "/") {
		errs = append(errs, FieldError{
			Field:   "mcp.path_segment",
			Message: "must be a single path segment without slashes",
		})
	}

	return errs
}

// validateTelemetry validates the telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid level %q: must be one of: debug, info, warn, error", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid format %q: must be one of: json, text", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "must start with /",
		})
	}

	return errs
}

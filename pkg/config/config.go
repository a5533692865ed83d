package config

import "time"

// Config is the root configuration structure for the Open Agent Platform
// proxy. It contains all configuration sections for the HTTP server, the
// identity lookup, token signing, the deployment registry, the single-tenant
// MCP proxy, feature flags, and telemetry.
type Config struct {
	// Proxy contains HTTP server configuration including listen address,
	// timeouts, and connection limits.
	Proxy ProxyConfig `yaml:"proxy"`

	// Auth contains configuration for the external identity lookup used to
	// resolve the caller's session into a user identity.
	Auth AuthConfig `yaml:"auth"`

	// Signing contains configuration for bearer token generation: the
	// signing secret, algorithm, token lifetime, and cache maintenance.
	Signing SigningConfig `yaml:"signing"`

	// Registry contains configuration for the deployment registry backend.
	Registry RegistryConfig `yaml:"registry"`

	// MCP contains configuration for the single-tenant MCP proxy route.
	MCP MCPConfig `yaml:"mcp"`

	// Features contains feature flags gating optional routes.
	Features FeaturesConfig `yaml:"features"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ProxyConfig contains configuration for the HTTP server.
type ProxyConfig struct {
	// ListenAddress is the address and port for the proxy to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:2024", "0.0.0.0:2024").
	// Default: "127.0.0.1:2024"
	ListenAddress string `yaml:"listen_address"`

	// ReadHeaderTimeout is the maximum duration for reading request headers.
	// The request body is deliberately not covered: proxied uploads are
	// streamed and may be arbitrarily large.
	// Default: 10s
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Zero means no timeout, which is the default: streamed agent
	// runs are long-lived and must not be severed mid-response.
	// Default: 0
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: every method the proxy forwards.
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is the maximum age in seconds for preflight request caching.
	// Default: 3600
	MaxAge int `yaml:"max_age"`

	// AllowCredentials controls whether credentials (cookies, auth headers)
	// are allowed in CORS requests. The proxy authenticates with session
	// cookies, so this defaults to true.
	AllowCredentials bool `yaml:"allow_credentials"`
}

// AuthConfig contains configuration for the external identity lookup.
type AuthConfig struct {
	// Mode selects the identity resolver implementation.
	// Options: "http" (call the identity provider), "static" (fixed
	// identity, development only).
	// Default: "http"
	Mode string `yaml:"mode"`

	// IdentityURL is the identity provider endpoint that exchanges a
	// session cookie for the current user. Required in "http" mode.
	// Example: "http://localhost:54321/auth/v1/user"
	IdentityURL string `yaml:"identity_url"`

	// CookieName is the session cookie forwarded to the identity provider.
	// Default: "session"
	CookieName string `yaml:"cookie_name"`

	// Timeout is the maximum duration for a single identity lookup.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// StaticUserID and StaticEmail define the identity returned in
	// "static" mode. Ignored otherwise.
	StaticUserID string `yaml:"static_user_id"`
	StaticEmail  string `yaml:"static_email"`
}

// SigningConfig contains configuration for bearer token generation.
type SigningConfig struct {
	// Secret is the symmetric signing key. Typically provided via the
	// OAP_SIGNING_SECRET environment variable rather than the config file.
	// An empty secret is not a startup error; token issuance fails
	// per-request with a configuration error instead.
	Secret string `yaml:"secret"`

	// Algorithm is the HMAC signing algorithm.
	// Options: "HS256", "HS384", "HS512".
	// Default: "HS256"
	Algorithm string `yaml:"algorithm"`

	// TokenTTL is the lifetime of issued tokens and the validity window of
	// the token cache.
	// Default: 24h
	TokenTTL time.Duration `yaml:"token_ttl"`

	// SweepSchedule is a cron expression controlling how often expired
	// entries are purged from the token cache. An empty schedule disables
	// the sweeper; expired entries are then only replaced on demand.
	// Default: "@hourly"
	SweepSchedule string `yaml:"sweep_schedule"`
}

// RegistryConfig contains configuration for the deployment registry backend.
type RegistryConfig struct {
	// Backend selects the registry storage backend.
	// Options: "file" (YAML file), "sqlite" (SQLite database).
	// Default: "file"
	Backend string `yaml:"backend"`

	// FilePath is the path to the deployments YAML file when Backend is
	// "file".
	// Default: "./deployments.yaml"
	FilePath string `yaml:"file_path"`

	// SQLitePath is the path to the SQLite database when Backend is
	// "sqlite".
	// Default: "data/deployments.db"
	SQLitePath string `yaml:"sqlite_path"`

	// Watch enables automatic reloading of the file backend when the
	// deployments file changes. Ignored for the sqlite backend.
	// Default: false
	Watch bool `yaml:"watch"`

	// Namespace is the route namespace prepended to resolved deployment
	// base routes (e.g., "deployments" yields "deployments/<id>").
	// Default: "deployments"
	Namespace string `yaml:"namespace"`
}

// MCPConfig contains configuration for the single-tenant MCP proxy route.
type MCPConfig struct {
	// BaseURL is the base URL of the downstream deployment served by the
	// MCP route. An empty value is not a startup error; requests to the
	// route fail with a configuration error instead.
	// Example: "http://localhost:8123"
	BaseURL string `yaml:"base_url"`

	// PathSegment is the fixed sub-path inserted between the base URL and
	// the residual request path, a routing convention of the downstream
	// service.
	// Default: "mcp"
	PathSegment string `yaml:"path_segment"`
}

// FeaturesConfig contains feature flags gating optional routes.
type FeaturesConfig struct {
	// DeploymentsProxyEnabled gates the multi-tenant deployments proxy.
	// When disabled, every request to the route is rejected with 403
	// regardless of whether the deployment exists.
	// Default: true
	DeploymentsProxyEnabled bool `yaml:"deployments_proxy_enabled"`
}

// TelemetryConfig contains configuration for logging and metrics.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format ("json", "text").
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the Prometheus metric namespace.
	// Default: "oap"
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus metric subsystem.
	// Default: "proxy"
	Subsystem string `yaml:"subsystem"`
}

package config

import "time"

// Default values for configuration fields.
const (
	// Proxy defaults
	DefaultListenAddress     = "127.0.0.1:2024"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultWriteTimeout      = 0 // no write timeout; streamed runs are long-lived
	DefaultIdleTimeout       = 120 * time.Second
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultMaxHeaderBytes    = 1048576 // 1MB

	// CORS defaults
	DefaultCORSEnabled          = true
	DefaultCORSMaxAge           = 3600 // 1 hour
	DefaultCORSAllowCredentials = true

	// Auth defaults
	DefaultAuthMode       = "http"
	DefaultAuthCookieName = "session"
	DefaultAuthTimeout    = 10 * time.Second

	// Signing defaults
	DefaultSigningAlgorithm = "HS256"
	DefaultTokenTTL         = 24 * time.Hour
	DefaultSweepSchedule    = "@hourly"

	// Registry defaults
	DefaultRegistryBackend    = "file"
	DefaultRegistryFilePath   = "./deployments.yaml"
	DefaultRegistrySQLitePath = "data/deployments.db"
	DefaultRegistryNamespace  = "deployments"

	// MCP defaults
	DefaultMCPPathSegment = "mcp"

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "oap"
	DefaultMetricsSubsystem = "proxy"
)

// DefaultCORSAllowedMethods are the HTTP methods allowed for CORS requests.
// Every method the proxy forwards is allowed.
var DefaultCORSAllowedMethods = []string{
	"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
}

// DefaultCORSAllowedHeaders are the HTTP headers allowed for CORS requests.
var DefaultCORSAllowedHeaders = []string{
	"Authorization", "Content-Type", "X-Request-ID",
}

// DefaultCORSAllowedOrigins are the origins allowed for CORS requests.
var DefaultCORSAllowedOrigins = []string{"*"}

// ApplyDefaults fills in default values for any unset configuration fields.
// It modifies the configuration in place. Boolean fields that default to
// true (CORS, metrics, the deployments proxy flag) are handled by
// NewDefaultConfig rather than here, since a false value is
// indistinguishable from unset after YAML decoding.
func ApplyDefaults(cfg *Config) {
	// Proxy defaults
	if cfg.Proxy.ListenAddress == "" {
		cfg.Proxy.ListenAddress = DefaultListenAddress
	}
	if cfg.Proxy.ReadHeaderTimeout == 0 {
		cfg.Proxy.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.Proxy.IdleTimeout == 0 {
		cfg.Proxy.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Proxy.ShutdownTimeout == 0 {
		cfg.Proxy.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Proxy.MaxHeaderBytes == 0 {
		cfg.Proxy.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// CORS defaults
	if len(cfg.Proxy.CORS.AllowedOrigins) == 0 {
		cfg.Proxy.CORS.AllowedOrigins = DefaultCORSAllowedOrigins
	}
	if len(cfg.Proxy.CORS.AllowedMethods) == 0 {
		cfg.Proxy.CORS.AllowedMethods = DefaultCORSAllowedMethods
	}
	if len(cfg.Proxy.CORS.AllowedHeaders) == 0 {
		cfg.Proxy.CORS.AllowedHeaders = DefaultCORSAllowedHeaders
	}
	if cfg.Proxy.CORS.MaxAge == 0 {
		cfg.Proxy.CORS.MaxAge = DefaultCORSMaxAge
	}

	// Auth defaults
	if cfg.Auth.Mode == "" {
		cfg.Auth.Mode = DefaultAuthMode
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = DefaultAuthCookieName
	}
	if cfg.Auth.Timeout == 0 {
		cfg.Auth.Timeout = DefaultAuthTimeout
	}

	// Signing defaults
	if cfg.Signing.Algorithm == "" {
		cfg.Signing.Algorithm = DefaultSigningAlgorithm
	}
	if cfg.Signing.TokenTTL == 0 {
		cfg.Signing.TokenTTL = DefaultTokenTTL
	}

	// Registry defaults
	if cfg.Registry.Backend == "" {
		cfg.Registry.Backend = DefaultRegistryBackend
	}
	if cfg.Registry.FilePath == "" {
		cfg.Registry.FilePath = DefaultRegistryFilePath
	}
	if cfg.Registry.SQLitePath == "" {
		cfg.Registry.SQLitePath = DefaultRegistrySQLitePath
	}
	if cfg.Registry.Namespace == "" {
		cfg.Registry.Namespace = DefaultRegistryNamespace
	}

	// MCP defaults
	if cfg.MCP.PathSegment == "" {
		cfg.MCP.PathSegment = DefaultMCPPathSegment
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
}

// NewDefaultConfig returns a configuration with every field set to its
// default value, including booleans that default to true. LoadConfig decodes
// the YAML file over this baseline so that omitted boolean fields keep their
// true defaults while explicit "false" values are honored.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Proxy.CORS.Enabled = DefaultCORSEnabled
	cfg.Proxy.CORS.AllowCredentials = DefaultCORSAllowCredentials
	cfg.Signing.SweepSchedule = DefaultSweepSchedule
	cfg.Features.DeploymentsProxyEnabled = true
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded over a fully defaulted baseline, so omitted fields
// keep their default values (including booleans that default to true).
// The configuration is validated before being returned.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Re-apply defaults for string fields explicitly set to "".
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention OAP_SECTION_FIELD (e.g., OAP_PROXY_LISTEN_ADDRESS) and always
// take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML over the defaulted baseline
//  2. Apply environment variable overrides
//  3. Validate the final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format OAP_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Proxy overrides
	if val := os.Getenv("OAP_PROXY_LISTEN_ADDRESS"); val != "" {
		cfg.Proxy.ListenAddress = val
	}
	if val := os.Getenv("OAP_PROXY_READ_HEADER_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Proxy.ReadHeaderTimeout = d
		}
	}
	if val := os.Getenv("OAP_PROXY_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Proxy.WriteTimeout = d
		}
	}
	if val := os.Getenv("OAP_PROXY_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Proxy.IdleTimeout = d
		}
	}

	// Auth overrides
	if val := os.Getenv("OAP_AUTH_MODE"); val != "" {
		cfg.Auth.Mode = val
	}
	if val := os.Getenv("OAP_AUTH_IDENTITY_URL"); val != "" {
		cfg.Auth.IdentityURL = val
	}
	if val := os.Getenv("OAP_AUTH_COOKIE_NAME"); val != "" {
		cfg.Auth.CookieName = val
	}

	// Signing overrides. The secret is typically supplied this way.
	if val := os.Getenv("OAP_SIGNING_SECRET"); val != "" {
		cfg.Signing.Secret = val
	}
	if val := os.Getenv("OAP_SIGNING_ALGORITHM"); val != "" {
		cfg.Signing.Algorithm = val
	}
	if val := os.Getenv("OAP_SIGNING_TOKEN_TTL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Signing.TokenTTL = d
		}
	}

	// Registry overrides
	if val := os.Getenv("OAP_REGISTRY_BACKEND"); val != "" {
		cfg.Registry.Backend = val
	}
	if val := os.Getenv("OAP_REGISTRY_FILE_PATH"); val != "" {
		cfg.Registry.FilePath = val
	}
	if val := os.Getenv("OAP_REGISTRY_SQLITE_PATH"); val != "" {
		cfg.Registry.SQLitePath = val
	}
	if val := os.Getenv("OAP_REGISTRY_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Registry.Watch = b
		}
	}

	// MCP overrides
	if val := os.Getenv("OAP_MCP_BASE_URL"); val != "" {
		cfg.MCP.BaseURL = val
	}

	// Feature flag overrides
	if val := os.Getenv("OAP_FEATURES_DEPLOYMENTS_PROXY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Features.DeploymentsProxyEnabled = b
		}
	}

	// Telemetry overrides
	if val := os.Getenv("OAP_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("OAP_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("OAP_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
}

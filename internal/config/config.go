package config

import (
	"fmt"
	"os"
	"time"

	"openai2local/internal/core"

	"gopkg.in/yaml.v3"
)

// ServerSettings HTTP server configuration
type ServerSettings struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSEnabled bool     `yaml:"cors_enabled"`
	CORSOrigins []string `yaml:"cors_origins"`
	RateLimit   int      `yaml:"rate_limit"`
}

// BackendSettings one backend target
type BackendSettings struct {
	Name       string `yaml:"name"`
	URL        string `yaml:"url"`
	Enabled    bool   `yaml:"enabled"`
	Timeout    int    `yaml:"timeout"`
	MaxRetries int    `yaml:"max_retries"`
	RetryDelay int    `yaml:"retry_delay"`
}

// Backend field defaults, applied when a config block omits them so a minimal
// {name, url} block is a valid backend.
const (
	defaultBackendTimeout    = 300
	defaultBackendMaxRetries = 3
	defaultBackendRetryDelay = 1
)

// UnmarshalYAML decodes a backend block with per-field defaults: an omitted
// enabled means enabled, omitted timing fields get the standard values.
// yaml.v3 decodes map entries into fresh zero values, so the defaults must be
// applied here rather than pre-seeded on the destination struct.
func (b *BackendSettings) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Name       string `yaml:"name"`
		URL        string `yaml:"url"`
		Enabled    *bool  `yaml:"enabled"`
		Timeout    *int   `yaml:"timeout"`
		MaxRetries *int   `yaml:"max_retries"`
		RetryDelay *int   `yaml:"retry_delay"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	b.Name = raw.Name
	b.URL = raw.URL
	b.Enabled = raw.Enabled == nil || *raw.Enabled
	b.Timeout = defaultBackendTimeout
	if raw.Timeout != nil {
		b.Timeout = *raw.Timeout
	}
	b.MaxRetries = defaultBackendMaxRetries
	if raw.MaxRetries != nil {
		b.MaxRetries = *raw.MaxRetries
	}
	b.RetryDelay = defaultBackendRetryDelay
	if raw.RetryDelay != nil {
		b.RetryDelay = *raw.RetryDelay
	}
	return nil
}

// AuthSettings bearer token allow-list configuration
type AuthSettings struct {
	Enabled      bool     `yaml:"enabled"`
	ValidAPIKeys []string `yaml:"valid_api_keys"`
}

// LoggingSettings logging verbosity and body logging flags
type LoggingSettings struct {
	Level               string `yaml:"level"`
	IncludeRequestBody  bool   `yaml:"include_request_body"`
	IncludeResponseBody bool   `yaml:"include_response_body"`
}

// ProxyConfig is the full configuration loaded once at startup. It is
// read-only for the process lifetime; components hold immutable references.
type ProxyConfig struct {
	Server         ServerSettings             `yaml:"server"`
	Backends       map[string]BackendSettings `yaml:"backends"`
	ModelMapping   map[string]string          `yaml:"model_mapping"`
	DefaultModel   string                     `yaml:"default_model"`
	Authentication AuthSettings               `yaml:"authentication"`
	Logging        LoggingSettings            `yaml:"logging"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() ProxyConfig {
	return ProxyConfig{
		Server: ServerSettings{
			Host:        core.DefaultHost,
			Port:        8080,
			CORSEnabled: true,
			CORSOrigins: []string{"*"},
		},
		Backends: map[string]BackendSettings{
			"primary": {
				Name:       "LM Studio",
				URL:        "http://127.0.0.1:1234",
				Enabled:    true,
				Timeout:    defaultBackendTimeout,
				MaxRetries: defaultBackendMaxRetries,
				RetryDelay: defaultBackendRetryDelay,
			},
		},
		ModelMapping: map[string]string{},
		DefaultModel: "llama-3.1-instruct-13b",
		Logging: LoggingSettings{
			Level: "INFO",
		},
	}
}

// Load reads the YAML config at path. A missing file is not an error: the
// defaults are returned with a warning, matching startup-on-empty-host use.
func Load(path string, logger core.Logger) (ProxyConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // G304: path from config, not user input
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("Config file %s not found, using defaults", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cfg.ModelMapping == nil {
		cfg.ModelMapping = map[string]string{}
	}

	if _, err := cfg.Primary(); err != nil {
		return cfg, err
	}

	logger.Info("Loaded config from %s (%d model mappings)", path, len(cfg.ModelMapping))
	return cfg, nil
}

// Primary returns the single backend target addressed by every request: the
// backend named "primary" when enabled, otherwise the error is surfaced at
// startup rather than per request.
func (c ProxyConfig) Primary() (BackendSettings, error) {
	backend, ok := c.Backends["primary"]
	if !ok {
		return BackendSettings{}, fmt.Errorf("no primary backend configured")
	}
	if !backend.Enabled {
		return BackendSettings{}, fmt.Errorf("primary backend %q is disabled", backend.Name)
	}
	if backend.URL == "" {
		return BackendSettings{}, fmt.Errorf("primary backend %q has no URL", backend.Name)
	}
	return backend, nil
}

// HTTPClientSettings HTTP client configuration
type HTTPClientSettings struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	DialTimeout         time.Duration
	RequestTimeout      time.Duration
}

// DefaultHTTPClientSettings default HTTP client settings
func DefaultHTTPClientSettings() HTTPClientSettings {
	return HTTPClientSettings{
		MaxIdleConns:        core.HTTPMaxIdleConns,
		MaxIdleConnsPerHost: core.HTTPMaxIdleConnsPerHost,
		MaxConnsPerHost:     core.HTTPMaxConnsPerHost,
		IdleConnTimeout:     core.HTTPIdleConnTimeout,
		TLSHandshakeTimeout: core.HTTPTLSHandshakeTimeout,
		DialTimeout:         core.HTTPDialTimeout,
		RequestTimeout:      core.HTTPRequestTimeout,
	}
}

// ServerConfig bundles the proxy configuration with injected infrastructure.
type ServerConfig struct {
	Proxy              ProxyConfig
	GinMode            string
	HTTPClientSettings HTTPClientSettings
	Storage            core.StorageInterface
	Logger             core.Logger
}

package qdrant

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Config holds connection and tuning settings for the Qdrant client.
type Config struct {
	// Endpoint is the Qdrant host name (without scheme or port).
	Endpoint string `yaml:"endpoint" envconfig:"QDRANT_ENDPOINT"`

	// Port is the gRPC port. Defaults to 6334.
	Port int `yaml:"port" envconfig:"QDRANT_PORT"`

	// ApiKey authenticates against Qdrant Cloud or secured deployments.
	ApiKey string `yaml:"api_key" envconfig:"QDRANT_API_KEY"`

	// UseTLS enables TLS on the gRPC connection.
	UseTLS bool `yaml:"use_tls" envconfig:"QDRANT_USE_TLS"`

	// Timeout bounds the startup health check.
	Timeout time.Duration `yaml:"timeout" envconfig:"QDRANT_TIMEOUT"`

	// CheckCompatibility makes the SDK compare client and server versions on connect.
	CheckCompatibility bool `yaml:"check_compatibility" envconfig:"QDRANT_CHECK_COMPATIBILITY"`

	// BatchSize is the number of points sent per upsert request.
	BatchSize int `yaml:"batch_size" envconfig:"QDRANT_BATCH_SIZE"`

	// RangeSearchPages caps how many result pages a range search reads
	// while looking for TopK in-range hits.
	RangeSearchPages int `yaml:"range_search_pages" envconfig:"QDRANT_RANGE_SEARCH_PAGES"`
}

// DefaultConfig returns a config for a local Qdrant instance.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:           "localhost",
		Port:               6334,
		Timeout:            5 * time.Second,
		CheckCompatibility: false,
		BatchSize:          defaultBatchSize,
		RangeSearchPages:   defaultRangeSearchPages,
	}
}

// FromURI builds a config from a URI such as "http://localhost:6334".
// An https scheme turns on TLS. A missing port keeps the default.
func FromURI(uri string) (*Config, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] invalid uri %q: %w", uri, err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("[Qdrant] invalid uri %q: missing host", uri)
	}

	cfg := DefaultConfig()
	cfg.Endpoint = u.Hostname()
	cfg.UseTLS = u.Scheme == "https"
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("[Qdrant] invalid port in uri %q: %w", uri, err)
		}
		cfg.Port = port
	}
	return cfg, nil
}

// WithApiKey sets the API key.
func (c *Config) WithApiKey(key string) *Config {
	c.ApiKey = key
	return c
}

// WithTimeout sets the health check timeout.
func (c *Config) WithTimeout(d time.Duration) *Config {
	c.Timeout = d
	return c
}

// WithCompatibilityCheck toggles the client/server version check.
func (c *Config) WithCompatibilityCheck(enabled bool) *Config {
	c.CheckCompatibility = enabled
	return c
}

// Validate reports missing or out-of-range settings.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("[Qdrant] endpoint is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("[Qdrant] invalid port %d", c.Port)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("[Qdrant] batch size must not be negative, got %d", c.BatchSize)
	}
	if c.RangeSearchPages < 0 {
		return fmt.Errorf("[Qdrant] range search pages must not be negative, got %d", c.RangeSearchPages)
	}
	return nil
}

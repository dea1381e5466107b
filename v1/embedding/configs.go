package embedding

import (
	"errors"
	"fmt"
	"time"
)

// DefaultModel is the sentence-embedding model served by the inference endpoint.
const DefaultModel = "Snowflake/snowflake-arctic-embed-l"

// Config holds the inference endpoint settings.
//
// Endpoint must point to the root of the OpenAI-compatible inference service
// (no /embeddings appended). The provider appends the path itself.
type Config struct {
	// Endpoint is the base URL of the inference API, e.g. "http://localhost:8080/v1".
	Endpoint string `yaml:"endpoint" envconfig:"EMBEDDING_ENDPOINT"`

	// ServiceToken is sent as a bearer token when set.
	ServiceToken string `yaml:"service_token" envconfig:"EMBEDDING_SERVICE_TOKEN"`

	// Model is passed as the "model" field of every request.
	Model string `yaml:"model" envconfig:"EMBEDDING_MODEL"`

	// HTTPTimeout bounds a single HTTP request.
	HTTPTimeout time.Duration `yaml:"http_timeout" envconfig:"EMBEDDING_HTTP_TIMEOUT"`

	// BatchSize is the maximum number of texts per request.
	BatchSize int `yaml:"batch_size" envconfig:"EMBEDDING_BATCH_SIZE"`

	// MaxConcurrency caps how many batch requests are in flight at once.
	MaxConcurrency int `yaml:"max_concurrency" envconfig:"EMBEDDING_MAX_CONCURRENCY"`

	// Normalize scales every returned vector to unit length.
	Normalize bool `yaml:"normalize" envconfig:"EMBEDDING_NORMALIZE"`

	// Dimension, when positive, is checked against every returned vector.
	Dimension int `yaml:"dimension" envconfig:"EMBEDDING_DIMENSION"`
}

// DefaultConfig returns a config for a local inference server.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:       "http://localhost:8080/v1",
		Model:          DefaultModel,
		HTTPTimeout:    30 * time.Second,
		BatchSize:      32,
		MaxConcurrency: 4,
		Normalize:      true,
		Dimension:      1024,
	}
}

// Validate ensures required fields are present.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("embedding: missing EMBEDDING_ENDPOINT")
	}
	if c.Model == "" {
		return errors.New("embedding: missing EMBEDDING_MODEL")
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("embedding: batch size must not be negative, got %d", c.BatchSize)
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("embedding: max concurrency must not be negative, got %d", c.MaxConcurrency)
	}
	if c.Dimension < 0 {
		return fmt.Errorf("embedding: dimension must not be negative, got %d", c.Dimension)
	}
	return nil
}

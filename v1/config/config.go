// Package config assembles the per-package configs of the rag binaries.
//
// Values are layered: package defaults, then the YAML file named by the
// path argument or the RAG_CONFIG environment variable, then individual
// environment variables (QDRANT_ENDPOINT, EMBEDDING_MODEL, ...).
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/yang0369/rag/v1/dataset"
	"github.com/yang0369/rag/v1/embedding"
	"github.com/yang0369/rag/v1/kafka"
	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/metrics"
	"github.com/yang0369/rag/v1/minio"
	"github.com/yang0369/rag/v1/pipeline"
	"github.com/yang0369/rag/v1/qdrant"
	"github.com/yang0369/rag/v1/rabbit"
	"github.com/yang0369/rag/v1/redis"
	"github.com/yang0369/rag/v1/tracer"
)

// EnvPath names the environment variable holding the YAML config path.
const EnvPath = "RAG_CONFIG"

// AppConfig is the full configuration of a rag binary.
type AppConfig struct {
	Logger  logger.Config  `yaml:"logger"`
	Tracer  tracer.Config  `yaml:"tracer"`
	Metrics metrics.Config `yaml:"metrics"`

	// QdrantURI, when set, overrides the Qdrant host, port and TLS setting,
	// e.g. "http://localhost:6334".
	QdrantURI string `yaml:"qdrant_uri" envconfig:"QDRANT_URI"`

	Qdrant    *qdrant.Config    `yaml:"qdrant"`
	Embedding *embedding.Config `yaml:"embedding"`
	Pipeline  *pipeline.Config  `yaml:"pipeline"`
	Dataset   dataset.Config    `yaml:"dataset"`
	Redis     *redis.Config     `yaml:"redis"`
	Minio     *minio.Config     `yaml:"minio"`
	Kafka     *kafka.Config     `yaml:"kafka"`
	Rabbit    *rabbit.Config    `yaml:"rabbit"`
}

// Default returns every package's defaults.
func Default() *AppConfig {
	return &AppConfig{
		Logger:    logger.DefaultConfig(),
		Tracer:    tracer.DefaultConfig(),
		Metrics:   metrics.DefaultConfig(),
		Qdrant:    qdrant.DefaultConfig(),
		Embedding: embedding.DefaultConfig(),
		Pipeline:  pipeline.DefaultConfig(),
		Redis:     redis.DefaultConfig(),
		Minio:     minio.DefaultConfig(),
		Kafka:     kafka.DefaultConfig(),
		Rabbit:    rabbit.DefaultConfig(),
	}
}

// Load builds the configuration. An empty path falls back to $RAG_CONFIG;
// with neither set only defaults and the environment are used.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	if cfg.QdrantURI != "" {
		if err := cfg.applyQdrantURI(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyQdrantURI() error {
	fromURI, err := qdrant.FromURI(c.QdrantURI)
	if err != nil {
		return err
	}
	c.Qdrant.Endpoint = fromURI.Endpoint
	c.Qdrant.Port = fromURI.Port
	c.Qdrant.UseTLS = fromURI.UseTLS
	return nil
}

// Validate checks the always-on sections and every enabled optional one.
func (c *AppConfig) Validate() error {
	errs := []error{
		c.Qdrant.Validate(),
		c.Embedding.Validate(),
		c.Pipeline.Validate(),
	}
	if c.Redis.Enabled {
		errs = append(errs, c.Redis.Validate())
	}
	if c.Minio.Enabled {
		errs = append(errs, c.Minio.Validate())
	}
	if c.Kafka.Enabled {
		errs = append(errs, c.Kafka.Validate())
	}
	if c.Rabbit.Enabled {
		errs = append(errs, c.Rabbit.Validate())
	}
	if c.Embedding.Dimension > 0 && uint64(c.Embedding.Dimension) != c.Pipeline.VectorDimension {
		errs = append(errs, fmt.Errorf("config: embedding dimension %d does not match pipeline vector dimension %d",
			c.Embedding.Dimension, c.Pipeline.VectorDimension))
	}
	return errors.Join(errs...)
}

package qdrant

import (
	"context"
	"fmt"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/yang0369/rag/v1/logger"
)

// QdrantClient owns the connection to Qdrant.
// Use NewAdapter on Client() to get a vectordb.Service.
type QdrantClient struct {
	api     *qdrant.Client
	cfg     *Config
	logger  logger.Logger
	started bool
}

const (
	defaultPort             = 6334
	defaultBatchSize        = 200 // points per upsert request
	defaultRangeSearchPages = 5
	defaultHealthTimeout    = 3 * time.Second
)

// NewQdrantClient connects to Qdrant and runs a health check so that an
// unreachable server fails at startup.
//
// Example:
//
//	client, err := qdrant.NewQdrantClient(qdrant.QdrantParams{Config: cfg, Logger: log})
func NewQdrantClient(p QdrantParams) (*QdrantClient, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}

	port := p.Config.Port
	if port == 0 {
		port = defaultPort
	}

	p.Logger.Info("[Qdrant] Connecting", nil, map[string]interface{}{
		"endpoint": p.Config.Endpoint,
		"port":     port,
		"tls":      p.Config.UseTLS,
	})

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   p.Config.Endpoint,
		Port:                   port,
		APIKey:                 p.Config.ApiKey,
		UseTLS:                 p.Config.UseTLS,
		SkipCompatibilityCheck: !p.Config.CheckCompatibility,
	})
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to initialize client: %w", err)
	}

	qc := &QdrantClient{
		api:     client,
		cfg:     p.Config,
		logger:  p.Logger,
		started: true,
	}

	if err := qc.healthCheck(context.Background()); err != nil {
		_ = client.Close()
		return nil, err
	}

	p.Logger.Info("[Qdrant] Client connected successfully", nil, nil)
	return qc, nil
}

func (c *QdrantClient) healthCheck(ctx context.Context) error {
	if !c.started || c.api == nil {
		return fmt.Errorf("[Qdrant] client not initialized")
	}

	timeout := c.cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHealthTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.api.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("[Qdrant] health check failed: %w", err)
	}

	c.logger.Debug("[Qdrant] Health check passed", nil, map[string]interface{}{
		"title":   resp.GetTitle(),
		"version": resp.GetVersion(),
	})
	return nil
}

// Client returns the underlying Qdrant SDK client.
func (c *QdrantClient) Client() *qdrant.Client {
	return c.api
}

// Config returns the config the client was created with.
func (c *QdrantClient) Config() *Config {
	return c.cfg
}

// Close closes the gRPC connections. Safe to call more than once.
func (c *QdrantClient) Close() error {
	if !c.started {
		return nil
	}
	c.started = false
	c.logger.Info("[Qdrant] Closing client", nil, nil)
	return c.api.Close()
}

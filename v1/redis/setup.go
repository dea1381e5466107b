package redis

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/observability"
)

// RedisClient wraps a go-redis client with key prefixing, a default TTL and
// operation reporting. It is used as the byte store behind the embedding cache.
type RedisClient struct {
	client   redis.UniversalClient
	cfg      Config
	logger   logger.Logger
	observer observability.Observer
}

// NewClient creates a Redis client. It does not contact the server; call Ping
// to check connectivity.
//
// Example:
//
//	client, err := redis.NewClient(redis.DefaultConfig(), log)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
func NewClient(cfg *Config, log logger.Logger) (*RedisClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("redis: invalid config: %w", err)
	}

	opts := &redis.Options{
		Addr:        cfg.addr(),
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
	}
	if cfg.UseTLS {
		opts.TLSConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			ServerName:         cfg.Host,
			InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
		}
	}

	log.Info("Redis client initialized", nil, map[string]interface{}{
		"addr": cfg.addr(),
		"db":   cfg.DB,
	})

	return &RedisClient{
		client: redis.NewClient(opts),
		cfg:    *cfg,
		logger: log,
	}, nil
}

// WithObserver attaches an observer that is told about every command.
func (r *RedisClient) WithObserver(obs observability.Observer) *RedisClient {
	r.observer = obs
	return r
}

// Client returns the underlying go-redis client for advanced operations.
func (r *RedisClient) Client() redis.UniversalClient {
	return r.client
}

// Ping checks connectivity to the server.
func (r *RedisClient) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping %s: %w", r.cfg.addr(), err)
	}
	return nil
}

// Close closes the client and its connection pool.
func (r *RedisClient) Close() error {
	return r.client.Close()
}

package redis

import (
	"context"

	"go.uber.org/fx"

	"github.com/yang0369/rag/v1/embedding"
	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/observability"
)

// FXModule provides *RedisClient and exposes it as the embedding.Cache, so
// including this module turns on embedding caching.
//
// Dependencies required by this module:
//   - *redis.Config
//   - logger.Logger
//   - observability.Observer (optional)
var FXModule = fx.Module("redis",
	fx.Provide(
		NewClientWithDI,
		func(r *RedisClient) embedding.Cache { return r },
	),
	fx.Invoke(RegisterRedisLifecycle),
)

// RedisParams groups the dependencies needed to create a Redis client.
type RedisParams struct {
	fx.In

	Config   *Config
	Logger   logger.Logger
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a Redis client using dependency injection.
func NewClientWithDI(params RedisParams) (*RedisClient, error) {
	client, err := NewClient(params.Config, params.Logger)
	if err != nil {
		return nil, err
	}
	if params.Observer != nil {
		client.WithObserver(params.Observer)
	}
	return client, nil
}

// RegisterRedisLifecycle pings the server on start and closes the client on stop.
func RegisterRedisLifecycle(lc fx.Lifecycle, client *RedisClient, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx); err != nil {
				log.Error("Redis is not reachable", err, nil)
				return err
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Closing Redis client", nil)
			return client.Close()
		},
	})
}

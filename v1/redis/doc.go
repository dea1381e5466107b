// Package redis provides the byte store behind the embedding cache.
//
// RedisClient wraps github.com/redis/go-redis/v9 with a key prefix, a default
// TTL and operation reporting through observability.Observer. It satisfies
// embedding.Cache, and FXModule provides it as one, so adding the module to an
// application is enough to cache embeddings:
//
//	fx.New(
//	    fx.Supply(redis.DefaultConfig()),
//	    logger.FXModule,
//	    redis.FXModule,
//	    embedding.FXModule,
//	)
//
// Missing keys are not errors: Get returns ok == false.
package redis

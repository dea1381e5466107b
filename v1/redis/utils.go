package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// IsNilError checks if the error is a "key does not exist" error.
func IsNilError(err error) bool {
	return errors.Is(err, redis.Nil)
}

// Get returns the value stored at key. A missing key yields ok == false and a nil error.
func (r *RedisClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if IsNilError(err) {
		r.observeOperation("get", key, time.Since(start), nil, 0, map[string]interface{}{"hit": false})
		return nil, false, nil
	}
	r.observeOperation("get", key, time.Since(start), err, int64(len(val)), map[string]interface{}{"hit": err == nil})
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores value at key with the configured TTL.
func (r *RedisClient) Set(ctx context.Context, key string, value []byte) error {
	return r.SetWithTTL(ctx, key, value, r.cfg.TTL)
}

// SetWithTTL stores value at key with an explicit TTL. 0 means no expiry.
func (r *RedisClient) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := r.client.Set(ctx, r.key(key), value, ttl).Err()
	r.observeOperation("set", key, time.Since(start), err, int64(len(value)), nil)
	return err
}

// Delete removes keys and returns how many existed.
func (r *RedisClient) Delete(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}

	start := time.Now()
	n, err := r.client.Del(ctx, full...).Result()
	r.observeOperation("delete", keys[0], time.Since(start), err, n, nil)
	return n, err
}

// TTL returns the remaining time to live of key.
func (r *RedisClient) TTL(ctx context.Context, key string) (time.Duration, error) {
	return r.client.TTL(ctx, r.key(key)).Result()
}

func (r *RedisClient) key(k string) string {
	return r.cfg.KeyPrefix + k
}

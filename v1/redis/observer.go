package redis

import (
	"time"

	"github.com/yang0369/rag/v1/observability"
)

// observeOperation notifies the observer about an operation if one is configured.
// resource is the un-prefixed key.
func (r *RedisClient) observeOperation(operation, resource string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	if r == nil || r.observer == nil {
		return
	}

	r.observer.ObserveOperation(observability.OperationContext{
		Component: "redis",
		Operation: operation,
		Resource:  resource,
		Duration:  duration,
		Error:     err,
		Size:      size,
		Metadata:  metadata,
	})
}

package minio

import (
	"time"

	"github.com/yang0369/rag/v1/observability"
)

// observeOperation notifies the observer about an operation if one is configured.
// The bucket is reported as the resource and the object key as the sub-resource.
func (m *MinioClient) observeOperation(operation, key string, duration time.Duration, err error, size int64) {
	if m == nil || m.observer == nil {
		return
	}

	m.observer.ObserveOperation(observability.OperationContext{
		Component:   "minio",
		Operation:   operation,
		Resource:    m.cfg.BucketName,
		SubResource: key,
		Duration:    duration,
		Error:       err,
		Size:        size,
	})
}

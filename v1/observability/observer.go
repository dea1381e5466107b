// Package observability defines the hook that infrastructure clients use to
// report the operations they perform.
//
// The Qdrant adapter, the embedding client, the Redis cache, the MinIO
// client and both ingest transports accept an optional Observer. When one is attached, every
// remote call is reported as an OperationContext after it completes. The
// metrics package ships an Observer that turns these reports into Prometheus
// counters and latency histograms.
//
// Example:
//
//	adapter := qdrant.NewAdapter(client.Client()).WithObserver(metrics.NewOperationObserver(m))
package observability

import "time"

// OperationContext describes a single completed operation.
type OperationContext struct {
	// Component is the reporting client, e.g. "qdrant", "embedding", "redis".
	Component string

	// Operation is the operation name, e.g. "search", "insert", "embed".
	Operation string

	// Resource is the primary target (collection, model, key, topic).
	Resource string

	// SubResource is optional secondary context (partition, object key).
	SubResource string

	// Duration is how long the operation took.
	Duration time.Duration

	// Error is the operation's error, nil on success.
	Error error

	// Size is an operation-specific count (points written, texts embedded, bytes read).
	Size int64

	// Metadata holds optional extra fields.
	Metadata map[string]interface{}
}

// Observer receives operation reports. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}

// Status returns "success" or "error" for the operation.
func (c OperationContext) Status() string {
	if c.Error != nil {
		return "error"
	}
	return "success"
}

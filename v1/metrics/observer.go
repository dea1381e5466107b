package metrics

import "github.com/yang0369/rag/v1/observability"

// OperationObserver records observability.OperationContext reports as
// Prometheus metrics.
type OperationObserver struct {
	metrics *Metrics
}

// NewOperationObserver returns an observer backed by m.
func NewOperationObserver(m *Metrics) *OperationObserver {
	return &OperationObserver{metrics: m}
}

// ObserveOperation implements observability.Observer.
func (o *OperationObserver) ObserveOperation(ctx observability.OperationContext) {
	o.metrics.RecordOperation(ctx.Component, ctx.Operation, ctx.Status(), ctx.Duration, ctx.Size)
}

var _ observability.Observer = (*OperationObserver)(nil)

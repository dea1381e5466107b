// Package metrics exposes Prometheus metrics for the pipeline.
//
// NewMetrics builds a dedicated registry with three operation metrics,
// labelled by component (qdrant, embedding, redis, kafka, minio) and
// operation:
//
//	rag_operations_total{component,operation,status}
//	rag_operation_duration_seconds{component,operation}
//	rag_operation_items_total{component,operation}
//
// Clients never touch these directly. They report to an
// observability.Observer, and NewOperationObserver turns those reports into
// metric updates:
//
//	m := metrics.NewMetrics(metrics.DefaultConfig())
//	obs := metrics.NewOperationObserver(m)
//	adapter := qdrant.NewAdapter(client.Client(), cfg).WithObserver(obs)
//
// Binaries add their own counters with CreateCounter/CreateHistogram; all of
// them carry the constant "service" label from Config.ServiceName.
//
// # Configuration
//
//	METRICS_ADDRESS=:9090
//	METRICS_SERVICE_NAME=rag
//	METRICS_ENABLE_DEFAULT_COLLECTORS=true
//
// # FX Module Integration
//
// FXModule provides *Metrics and observability.Observer, starts the HTTP
// server in OnStart and shuts it down in OnStop.
package metrics

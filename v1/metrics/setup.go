package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the Prometheus registry, the /metrics HTTP server and the
// operation metrics that infrastructure clients report through an
// observability.Observer.
type Metrics struct {
	// Server serves the registry on Config.Address at /metrics.
	Server *http.Server

	// Registry holds every metric of this process.
	Registry *prometheus.Registry

	registerer prometheus.Registerer

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	operationItems    *prometheus.CounterVec
}

// NewMetrics creates the registry, registers the operation metrics (and the
// default collectors when enabled) and prepares, but does not start, the HTTP
// server.
//
// Example:
//
//	m := metrics.NewMetrics(metrics.DefaultConfig())
//	adapter.WithObserver(metrics.NewOperationObserver(m))
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	wrapped := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry:   registry,
		registerer: wrapped,
	}

	m.operationsTotal = createCounterVec("rag_operations_total",
		"Total number of operations performed against external systems",
		[]string{"component", "operation", "status"})
	m.operationDuration = createHistogramVec("rag_operation_duration_seconds",
		"Duration of operations against external systems in seconds",
		[]string{"component", "operation"}, prometheus.DefBuckets)
	m.operationItems = createCounterVec("rag_operation_items_total",
		"Items processed by operations (points written, texts embedded, bytes read)",
		[]string{"component", "operation"})

	wrapped.MustRegister(
		m.operationsTotal,
		m.operationDuration,
		m.operationItems,
	)

	if cfg.EnableDefaultCollectors {
		wrapped.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	m.Server = &http.Server{
		Addr:              cfg.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return m
}

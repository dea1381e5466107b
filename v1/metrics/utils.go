package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RecordOperation counts one operation and observes its duration.
// items is added to the items counter when positive.
func (m *Metrics) RecordOperation(component, operation, status string, duration time.Duration, items int64) {
	m.operationsTotal.WithLabelValues(component, operation, status).Inc()
	m.operationDuration.WithLabelValues(component, operation).Observe(duration.Seconds())
	if items > 0 {
		m.operationItems.WithLabelValues(component, operation).Add(float64(items))
	}
}

// CreateCounter registers and returns a new counter vector.
// Panics if a metric with the same name is already registered.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(name, help, labels)
	m.registerer.MustRegister(counter)
	return counter
}

// CreateHistogram registers and returns a new histogram vector.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(name, help, labels, buckets)
	m.registerer.MustRegister(hist)
	return hist
}

func createCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

func createHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
}

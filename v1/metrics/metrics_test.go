package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yang0369/rag/v1/observability"
)

func TestOperationObserverRecords(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "rag-test"})
	obs := NewOperationObserver(m)

	obs.ObserveOperation(observability.OperationContext{
		Component: "qdrant",
		Operation: "insert",
		Duration:  20 * time.Millisecond,
		Size:      3,
	})
	obs.ObserveOperation(observability.OperationContext{
		Component: "qdrant",
		Operation: "insert",
		Error:     errors.New("unavailable"),
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("qdrant", "insert", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("qdrant", "insert", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.operationItems.WithLabelValues("qdrant", "insert")))
}

func TestMetricsHandlerServesServiceLabel(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "rag-test"})
	m.RecordOperation("embedding", "embed", "success", time.Millisecond, 32)

	rec := httptest.NewRecorder()
	m.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `rag_operations_total{component="embedding",operation="embed",service="rag-test",status="success"} 1`), body)
}

func TestCreateCounter(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "rag-test"})
	c := m.CreateCounter("ingested_records_total", "records ingested", []string{"partition"})
	c.WithLabelValues("vdb").Add(2)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.WithLabelValues("vdb")))
	assert.Panics(t, func() {
		m.CreateCounter("ingested_records_total", "records ingested", []string{"partition"})
	})
}

package embedding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/observability"
)

type embedServer struct {
	*httptest.Server
	requests atomic.Int32
	lastAuth atomic.Value
	vector   func(text string) []float32
}

// newEmbedServer answers every request with one vector per input, listed in
// reverse order so clients must sort by index.
func newEmbedServer(t *testing.T, vector func(text string) []float32) *embedServer {
	t.Helper()
	s := &embedServer{vector: vector}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.lastAuth.Store(r.Header.Get("Authorization"))

		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		type item struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		}
		data := make([]item, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, item{Index: i, Embedding: s.vector(req.Input[i])})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"model": req.Model, "data": data})
	}))
	t.Cleanup(s.Close)
	return s
}

func lengthVector(text string) []float32 {
	return []float32{float32(len(text)), 1}
}

func testConfig(endpoint string) *Config {
	return &Config{
		Endpoint:       endpoint + "/v1/",
		Model:          "test-model",
		HTTPTimeout:    5 * time.Second,
		BatchSize:      2,
		MaxConcurrency: 2,
	}
}

func TestEmbedDocumentsBatchesAndKeepsOrder(t *testing.T) {
	srv := newEmbedServer(t, lengthVector)
	client, err := NewClient(testConfig(srv.URL), logger.NewNop())
	require.NoError(t, err)

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	out, err := client.EmbedDocuments(context.Background(), texts)
	require.NoError(t, err)

	require.Len(t, out, len(texts))
	for i, text := range texts {
		assert.Equal(t, float32(len(text)), out[i][0], "vector %d", i)
	}
	assert.Equal(t, int32(3), srv.requests.Load())
}

func TestEmbedQuerySendsToken(t *testing.T) {
	srv := newEmbedServer(t, lengthVector)
	cfg := testConfig(srv.URL)
	cfg.ServiceToken = "secret"
	client, err := NewClient(cfg, logger.NewNop())
	require.NoError(t, err)

	v, err := client.EmbedQuery(context.Background(), "spatial")
	require.NoError(t, err)
	assert.Equal(t, []float32{7, 1}, v)
	assert.Equal(t, "Bearer secret", srv.lastAuth.Load())
}

func TestEmbedNormalize(t *testing.T) {
	srv := newEmbedServer(t, func(string) []float32 { return []float32{3, 4} })
	cfg := testConfig(srv.URL)
	cfg.Normalize = true
	client, err := NewClient(cfg, logger.NewNop())
	require.NoError(t, err)

	v, err := client.EmbedQuery(context.Background(), "x")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
}

func TestEmbedDimensionCheck(t *testing.T) {
	srv := newEmbedServer(t, lengthVector)
	cfg := testConfig(srv.URL)
	cfg.Dimension = 1024
	client, err := NewClient(cfg, logger.NewNop())
	require.NoError(t, err)

	_, err = client.EmbedQuery(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnexpectedDimension)
}

func TestEmbedHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), logger.NewNop())
	require.NoError(t, err)

	_, err = client.EmbedDocuments(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 503")
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestEmbedEmptyInput(t *testing.T) {
	srv := newEmbedServer(t, lengthVector)
	client, err := NewClient(testConfig(srv.URL), logger.NewNop())
	require.NoError(t, err)

	out, err := client.EmbedDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, int32(0), srv.requests.Load())
}

func TestEmbedReportsToObserver(t *testing.T) {
	srv := newEmbedServer(t, lengthVector)
	client, err := NewClient(testConfig(srv.URL), logger.NewNop())
	require.NoError(t, err)

	var mu sync.Mutex
	var ops []observability.OperationContext
	client.WithObserver(observability.ObserverFunc(func(op observability.OperationContext) {
		mu.Lock()
		defer mu.Unlock()
		ops = append(ops, op)
	}))

	_, err = client.EmbedDocuments(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	require.Len(t, ops, 1)
	assert.Equal(t, "embedding", ops[0].Component)
	assert.Equal(t, "test-model", ops[0].Resource)
	assert.Equal(t, int64(3), ops[0].Size)
	assert.Equal(t, "success", ops[0].Status())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Endpoint = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Model = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.BatchSize = -1
	assert.Error(t, cfg.Validate())
}

func TestFXModule(t *testing.T) {
	srv := newEmbedServer(t, lengthVector)

	var e Embedder
	app := fxtest.New(t,
		fx.Supply(testConfig(srv.URL)),
		fx.Provide(func() logger.Logger { return logger.NewNop() }),
		FXModule,
		fx.Populate(&e),
	)
	app.RequireStart()
	defer app.RequireStop()

	_, ok := e.(*Client)
	assert.True(t, ok, "without a cache the client is provided directly")
	assert.Equal(t, "test-model", e.Model())
}

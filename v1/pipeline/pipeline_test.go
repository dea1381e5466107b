package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"

	"github.com/yang0369/rag/v1/embedding"
	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/tracer"
	"github.com/yang0369/rag/v1/vectordb"
)

const dim = 4

func vec(x float32) []float32 {
	return []float32{x, 0, 0, 0}
}

type fixture struct {
	db       *vectordb.MockService
	embedder *embedding.MockEmbedder
	p        *VectorDBPipeline
}

func newFixture(t *testing.T, mutate ...func(*Config)) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	db := vectordb.NewMockService(ctrl)
	emb := embedding.NewMockEmbedder(ctrl)

	cfg := DefaultConfig()
	cfg.VectorDimension = dim
	for _, m := range mutate {
		m(cfg)
	}

	p, err := NewVectorDBPipeline(cfg, db, emb, tracer.NewNop(), logger.NewNop())
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2024, 1, 25, 15, 23, 0, 0, time.UTC) }
	ids := 0
	p.newID = func() string {
		ids++
		return []string{"id-1", "id-2", "id-3"}[ids-1]
	}
	return fixture{db: db, embedder: emb, p: p}
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cases := map[string]struct {
		mutate func(*Config)
		target error
	}{
		"empty collection": {func(c *Config) { c.Collection = "" }, vectordb.ErrEmptyCollectionName},
		"zero dimension":   {func(c *Config) { c.VectorDimension = 0 }, vectordb.ErrDimensionMismatch},
		"unknown metric":   {func(c *Config) { c.Metric = "HAMMING" }, vectordb.ErrUnknownMetric},
		"ivf index":        {func(c *Config) { c.IndexType = "IVF_FLAT" }, vectordb.ErrUnknownIndexType},
		"inverted bounds":  {func(c *Config) { c.LowerBound, c.UpperBound = 0.9, 0.5 }, vectordb.ErrInvalidScoreRange},
		"zero limit":       {func(c *Config) { c.DefaultLimit = 0 }, nil},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			if tc.target != nil {
				assert.ErrorIs(t, err, tc.target)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "test", cfg.Collection)
	assert.Equal(t, uint64(1024), cfg.VectorDimension)
	assert.Equal(t, "COSINE", cfg.Metric)
	assert.Equal(t, "HNSW", cfg.IndexType)
	assert.Equal(t, float32(0.999), cfg.UpperBound)
	assert.Equal(t, float32(0.5), cfg.LowerBound)
	assert.Equal(t, 3, cfg.DefaultLimit)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing collection", func(t *testing.T) {
		f := newFixture(t)
		f.db.EXPECT().CollectionExists(gomock.Any(), "test").Return(false, nil)
		f.db.EXPECT().CreateCollection(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, cfg vectordb.CollectionConfig) error {
				assert.Equal(t, "test", cfg.Name)
				assert.Equal(t, uint64(dim), cfg.VectorSize)
				assert.Equal(t, vectordb.MetricCosine, cfg.Metric)
				assert.Equal(t, vectordb.IndexHNSW, cfg.IndexType)
				assert.Equal(t, []string{FieldText}, cfg.TextFields)
				assert.Equal(t, []string{FieldCreatedAt}, cfg.DatetimeFields)
				return nil
			})

		require.NoError(t, f.p.Create(ctx, CreateOptions{}))
	})

	t.Run("existing collection without drop is a no-op", func(t *testing.T) {
		f := newFixture(t)
		f.db.EXPECT().CollectionExists(gomock.Any(), "test").Return(true, nil)

		require.NoError(t, f.p.Create(ctx, CreateOptions{}))
	})

	t.Run("drop recreates", func(t *testing.T) {
		f := newFixture(t)
		gomock.InOrder(
			f.db.EXPECT().CollectionExists(gomock.Any(), "test").Return(true, nil),
			f.db.EXPECT().DropCollection(gomock.Any(), "test").Return(nil),
			f.db.EXPECT().CreateCollection(gomock.Any(), gomock.Any()).Return(nil),
		)

		require.NoError(t, f.p.Create(ctx, CreateOptions{Drop: true}))
	})

	t.Run("errors propagate", func(t *testing.T) {
		f := newFixture(t)
		boom := errors.New("unavailable")
		f.db.EXPECT().CollectionExists(gomock.Any(), "test").Return(false, boom)

		assert.ErrorIs(t, f.p.Create(ctx, CreateOptions{}), boom)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates partition and embeds records without vectors", func(t *testing.T) {
		f := newFixture(t)
		f.embedder.EXPECT().
			EmbedDocuments(gomock.Any(), []string{"first", "third"}).
			Return([][]float32{vec(1), vec(3)}, nil)
		gomock.InOrder(
			f.db.EXPECT().HasPartition(gomock.Any(), "test", "vdb").Return(false, nil),
			f.db.EXPECT().CreatePartition(gomock.Any(), "test", "vdb").Return(nil),
			f.db.EXPECT().Insert(gomock.Any(), "test", "vdb", gomock.Any()).DoAndReturn(
				func(_ context.Context, _, _ string, inputs []vectordb.EmbeddingInput) error {
					require.Len(t, inputs, 3)
					assert.Equal(t, "id-1", inputs[0].ID)
					assert.Equal(t, "42", inputs[1].ID)
					assert.Equal(t, "id-2", inputs[2].ID)
					assert.Equal(t, vec(1), inputs[0].Vector)
					assert.Equal(t, vec(2), inputs[1].Vector)
					assert.Equal(t, vec(3), inputs[2].Vector)
					assert.Equal(t, "first", inputs[0].Payload[FieldText])
					assert.Equal(t, "a", inputs[0].Payload[FieldTitle])
					assert.Equal(t, time.Date(2024, 1, 25, 15, 23, 0, 0, time.UTC), inputs[0].Payload[FieldCreatedAt])
					return nil
				}),
		)

		ids, err := f.p.Update(ctx, "vdb", []Record{
			{Title: "a", Text: "first"},
			{ID: "42", Title: "b", Text: "second", Vector: vec(2)},
			{Title: "c", Text: "third"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"id-1", "42", "id-2"}, ids)
	})

	t.Run("existing partition and default name", func(t *testing.T) {
		f := newFixture(t)
		f.db.EXPECT().HasPartition(gomock.Any(), "test", vectordb.DefaultPartition).Return(true, nil)
		f.db.EXPECT().Insert(gomock.Any(), "test", vectordb.DefaultPartition, gomock.Len(1)).Return(nil)

		_, err := f.p.Update(ctx, "", []Record{{Text: "x", Vector: vec(1)}})
		require.NoError(t, err)
	})

	t.Run("empty input is a no-op", func(t *testing.T) {
		f := newFixture(t)
		ids, err := f.p.Update(ctx, "vdb", nil)
		require.NoError(t, err)
		assert.Nil(t, ids)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.p.Update(ctx, "vdb", []Record{{Text: "x", Vector: []float32{1, 2}}})
		assert.ErrorIs(t, err, vectordb.ErrDimensionMismatch)
	})

	t.Run("invalid id is rejected before any call", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.p.Update(ctx, "vdb", []Record{{ID: "007", Text: "x", Vector: vec(1)}})
		assert.ErrorIs(t, err, vectordb.ErrInvalidID)
	})

	t.Run("record without text or vector", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.p.Update(ctx, "vdb", []Record{{Title: "only a title"}})
		assert.ErrorIs(t, err, ErrEmptyRecord)
	})

	t.Run("embedding error stops before insert", func(t *testing.T) {
		f := newFixture(t)
		boom := errors.New("inference down")
		f.embedder.EXPECT().EmbedDocuments(gomock.Any(), gomock.Any()).Return(nil, boom)

		_, err := f.p.Update(ctx, "vdb", []Record{{Text: "x"}})
		assert.ErrorIs(t, err, boom)
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("range search with parallel slices per query", func(t *testing.T) {
		f := newFixture(t)
		f.embedder.EXPECT().
			EmbedDocuments(gomock.Any(), []string{"q1", "q2"}).
			Return([][]float32{vec(1), vec(2)}, nil)
		f.db.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, reqs ...vectordb.SearchRequest) ([][]vectordb.SearchResult, error) {
				require.Len(t, reqs, 2)
				for _, r := range reqs {
					assert.Equal(t, "test", r.CollectionName)
					assert.Equal(t, 2, r.TopK)
					assert.Equal(t, []string{"vdb"}, r.Partitions)
					assert.Equal(t, &vectordb.ScoreRange{Lower: 0.5, Upper: 0.999}, r.Range)
					assert.Equal(t, vectordb.MetricCosine, r.Metric)
					assert.False(t, r.Exact)
				}
				return [][]vectordb.SearchResult{
					{
						{ID: "dup", Score: 1.0, Payload: map[string]any{FieldText: "same", FieldTitle: "dup"}},
						{ID: "a", Score: 0.9, Payload: map[string]any{FieldText: "ta", FieldTitle: "A"}},
						{ID: "b", Score: 0.8, Payload: map[string]any{FieldText: "tb", FieldTitle: "B"}},
						{ID: "c", Score: 0.7, Payload: map[string]any{FieldText: "tc", FieldTitle: "C"}},
					},
					{
						{ID: "low", Score: 0.2, Payload: map[string]any{}},
					},
				}, nil
			})

		res, err := f.p.Search(ctx, SearchQuery{Queries: []string{"q1", "q2"}, Partitions: []string{"vdb"}, Limit: 2})
		require.NoError(t, err)
		require.Len(t, res, 2)

		assert.Equal(t, []string{"a", "b"}, res[0].IDs)
		assert.Equal(t, []float32{0.9, 0.8}, res[0].Scores)
		assert.Equal(t, []string{"ta", "tb"}, res[0].Texts)
		assert.Equal(t, []string{"A", "B"}, res[0].Labels)

		assert.Equal(t, 0, res[1].Len())
		assert.Len(t, res[1].Scores, 0)
		assert.Len(t, res[1].Texts, 0)
		assert.Len(t, res[1].Labels, 0)
	})

	t.Run("default limit and flat index", func(t *testing.T) {
		f := newFixture(t, func(c *Config) { c.IndexType = "FLAT" })
		f.embedder.EXPECT().EmbedDocuments(gomock.Any(), gomock.Any()).Return([][]float32{vec(1)}, nil)
		f.db.EXPECT().Search(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, reqs ...vectordb.SearchRequest) ([][]vectordb.SearchResult, error) {
				assert.Equal(t, 3, reqs[0].TopK)
				assert.True(t, reqs[0].Exact)
				return [][]vectordb.SearchResult{nil}, nil
			})

		res, err := f.p.Search(ctx, SearchQuery{Queries: []string{"q"}})
		require.NoError(t, err)
		require.Len(t, res, 1)
	})

	t.Run("no queries", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.p.Search(ctx, SearchQuery{})
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("database error", func(t *testing.T) {
		f := newFixture(t)
		boom := errors.New("timeout")
		f.embedder.EXPECT().EmbedDocuments(gomock.Any(), gomock.Any()).Return([][]float32{vec(1)}, nil)
		f.db.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, boom)

		_, err := f.p.Search(ctx, SearchQuery{Queries: []string{"q"}})
		assert.ErrorIs(t, err, boom)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.db.EXPECT().Delete(gomock.Any(), "test", "", []string{"1", "2"}).Return(nil)
	require.NoError(t, f.p.Delete(ctx, []string{"1", "2"}))

	f.db.EXPECT().Delete(gomock.Any(), "other", "partitionA", []string{"3"}).Return(nil)
	require.NoError(t, f.p.DeleteEntities(ctx, "other", "partitionA", []string{"3"}))

	require.NoError(t, f.p.Delete(ctx, nil))
}

func TestEmbedText(t *testing.T) {
	f := newFixture(t)
	f.embedder.EXPECT().EmbedQuery(gomock.Any(), "hello").Return(vec(1), nil)

	v, err := f.p.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, vec(1), v)
}

func TestCollectionManagement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assert.Equal(t, "test", f.p.Collection())
	require.NoError(t, f.p.SetCollection("slr"))
	assert.Equal(t, "slr", f.p.Collection())
	assert.ErrorIs(t, f.p.SetCollection(""), vectordb.ErrEmptyCollectionName)

	f.db.EXPECT().ListCollections(gomock.Any()).Return([]string{"slr", "test"}, nil)
	names, err := f.p.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"slr", "test"}, names)

	f.db.EXPECT().GetCollection(gomock.Any(), "slr").Return(&vectordb.Collection{Name: "slr", VectorSize: dim}, nil)
	info, err := f.p.DescribeCollection(ctx, "slr")
	require.NoError(t, err)
	assert.Equal(t, dim, info.VectorSize)

	f.db.EXPECT().DropCollection(gomock.Any(), "slr").Return(nil)
	require.NoError(t, f.p.DropCollection(ctx, "slr"))

	_, err = f.p.DescribeCollection(ctx, "")
	assert.ErrorIs(t, err, vectordb.ErrEmptyCollectionName)

	// Create targets the renamed collection.
	f.db.EXPECT().CollectionExists(gomock.Any(), "slr").Return(true, nil)
	require.NoError(t, f.p.Create(ctx, CreateOptions{}))
}

func TestKnowledgeGraphPipeline(t *testing.T) {
	ctx := context.Background()
	var p Pipeline = KnowledgeGraphPipeline{}

	assert.ErrorIs(t, p.Create(ctx, CreateOptions{Drop: true}), ErrNotImplemented)
	_, err := p.Update(ctx, "vdb", []Record{{Text: "x"}})
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.ErrorIs(t, p.Delete(ctx, []string{"1"}), ErrNotImplemented)
	_, err = p.EmbedText(ctx, "x")
	assert.ErrorIs(t, err, ErrNotImplemented)
	_, err = p.Search(ctx, SearchQuery{Queries: []string{"x"}})
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestNewVectorDBPipelineRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IndexType = "IVF_FLAT"
	_, err := NewVectorDBPipeline(cfg, nil, nil, tracer.NewNop(), logger.NewNop())
	assert.ErrorIs(t, err, vectordb.ErrUnknownIndexType)
}

func TestFXModule(t *testing.T) {
	ctrl := gomock.NewController(t)

	var p Pipeline
	app := fxtest.New(t,
		fx.Supply(DefaultConfig()),
		fx.Provide(
			func() vectordb.Service { return vectordb.NewMockService(ctrl) },
			func() embedding.Embedder { return embedding.NewMockEmbedder(ctrl) },
			func() *tracer.Tracer { return tracer.NewNop() },
			func() logger.Logger { return logger.NewNop() },
		),
		FXModule,
		fx.Populate(&p),
	)
	app.RequireStart()
	defer app.RequireStop()

	_, ok := p.(*VectorDBPipeline)
	assert.True(t, ok)
}

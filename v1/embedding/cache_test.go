package embedding

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/yang0369/rag/v1/logger"
)

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	readErr error
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return nil, false, c.readErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func TestCachedEmbedderOnlyEmbedsMisses(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := NewMockEmbedder(ctrl)
	inner.EXPECT().Model().Return("m").AnyTimes()

	cache := newMemCache()
	cache.data[cacheKey("m", "cached")] = encodeVector([]float32{9, 9})

	inner.EXPECT().
		EmbedDocuments(gomock.Any(), []string{"new"}).
		Return([][]float32{{1, 2}}, nil)

	e := NewCachedEmbedder(inner, cache, logger.NewNop())
	out, err := e.EmbedDocuments(context.Background(), []string{"cached", "new"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{9, 9}, {1, 2}}, out)

	stored, ok := cache.data[cacheKey("m", "new")]
	require.True(t, ok)
	v, err := decodeVector(stored)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, v)

	// second lookup is served from the cache
	q, err := e.EmbedQuery(context.Background(), "new")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, q)
}

func TestCachedEmbedderTreatsCacheErrorsAsMisses(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := NewMockEmbedder(ctrl)
	inner.EXPECT().Model().Return("m").AnyTimes()
	inner.EXPECT().EmbedDocuments(gomock.Any(), []string{"a"}).Return([][]float32{{1}}, nil)

	cache := newMemCache()
	cache.readErr = errors.New("connection refused")

	e := NewCachedEmbedder(inner, cache, logger.NewNop())
	out, err := e.EmbedDocuments(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}}, out)
}

func TestCachedEmbedderPropagatesEmbedError(t *testing.T) {
	ctrl := gomock.NewController(t)
	inner := NewMockEmbedder(ctrl)
	inner.EXPECT().Model().Return("m").AnyTimes()
	boom := errors.New("boom")
	inner.EXPECT().EmbedDocuments(gomock.Any(), gomock.Any()).Return(nil, boom)

	e := NewCachedEmbedder(inner, newMemCache(), logger.NewNop())
	_, err := e.EmbedQuery(context.Background(), "a")
	assert.ErrorIs(t, err, boom)
}

func TestCacheKeyDependsOnModel(t *testing.T) {
	assert.NotEqual(t, cacheKey("a", "text"), cacheKey("b", "text"))
	assert.Equal(t, cacheKey("a", "text"), cacheKey("a", "text"))
}

func TestDecodeVectorRejectsTruncatedValue(t *testing.T) {
	_, err := decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}

package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"

	"github.com/yang0369/rag/v1/logger"
)

// Cache stores raw vector bytes. *redis.Client from this repository satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CachedEmbedder serves repeated texts from a Cache and forwards misses to
// the wrapped Embedder. Cache failures are logged and treated as misses.
type CachedEmbedder struct {
	inner  Embedder
	cache  Cache
	logger logger.Logger
}

var _ Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps inner with cache.
func NewCachedEmbedder(inner Embedder, cache Cache, log logger.Logger) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache, logger: log}
}

// Model returns the wrapped embedder's model.
func (e *CachedEmbedder) Model() string {
	return e.inner.Model()
}

// EmbedQuery embeds a single text through the cache.
func (e *CachedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedDocuments returns cached vectors where present and embeds the rest in
// one call to the wrapped embedder.
func (e *CachedEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))

	var missIdx []int
	var missTexts []string
	for i, t := range texts {
		keys[i] = cacheKey(e.inner.Model(), t)
		raw, ok, err := e.cache.Get(ctx, keys[i])
		if err != nil {
			e.logger.WarnWithContext(ctx, "embedding cache read failed", err, map[string]interface{}{"key": keys[i]})
		}
		if ok {
			if v, err := decodeVector(raw); err == nil {
				out[i] = v
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := e.inner.EmbedDocuments(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("embedding: expected %d vectors, got %d", len(missTexts), len(vecs))
	}

	for j, i := range missIdx {
		out[i] = vecs[j]
		if err := e.cache.Set(ctx, keys[i], encodeVector(vecs[j])); err != nil {
			e.logger.WarnWithContext(ctx, "embedding cache write failed", err, map[string]interface{}{"key": keys[i]})
		}
	}
	return out, nil
}

func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return "emb:" + hex.EncodeToString(sum[:])
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

func decodeVector(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("embedding: cached value has %d bytes, not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}

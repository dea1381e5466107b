package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yang0369/rag/v1/embedding"
	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/tracer"
	"github.com/yang0369/rag/v1/vectordb"
)

// VectorDBPipeline forwards each Pipeline method to a vector database and an
// embedding model. It is safe for concurrent use; SetCollection affects calls
// that start after it returns.
type VectorDBPipeline struct {
	mu         sync.RWMutex
	collection string

	cfg      Config
	metric   vectordb.Metric
	index    vectordb.IndexType
	db       vectordb.Service
	embedder embedding.Embedder
	tracer   *tracer.Tracer
	logger   logger.Logger

	now   func() time.Time
	newID func() string
}

var _ Pipeline = (*VectorDBPipeline)(nil)

// NewVectorDBPipeline validates cfg and targets cfg.Collection.
func NewVectorDBPipeline(cfg *Config, db vectordb.Service, embedder embedding.Embedder, tr *tracer.Tracer, log logger.Logger) (*VectorDBPipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: invalid config: %w", err)
	}
	metric, _ := vectordb.ParseMetric(cfg.Metric)
	index, _ := vectordb.ParseIndexType(cfg.IndexType)

	return &VectorDBPipeline{
		collection: cfg.Collection,
		cfg:        *cfg,
		metric:     metric,
		index:      index,
		db:         db,
		embedder:   embedder,
		tracer:     tr,
		logger:     log,
		now:        time.Now,
		newID:      uuid.NewString,
	}, nil
}

// SetCollection changes the target collection.
func (p *VectorDBPipeline) SetCollection(name string) error {
	if name == "" {
		return vectordb.ErrEmptyCollectionName
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.collection = name
	return nil
}

// Collection returns the target collection.
func (p *VectorDBPipeline) Collection() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.collection
}

// Create implements Pipeline.
func (p *VectorDBPipeline) Create(ctx context.Context, opts CreateOptions) (err error) {
	collection := p.Collection()
	ctx, span := p.tracer.StartSpan(ctx, "pipeline.create")
	defer func() {
		p.tracer.RecordErrorOnSpan(span, err)
		span.End()
	}()
	p.tracer.SetAttributes(span, map[string]interface{}{"collection": collection, "drop": opts.Drop})

	exists, err := p.db.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if exists {
		if !opts.Drop {
			p.logger.DebugWithContext(ctx, "collection already exists", nil, map[string]interface{}{"collection": collection})
			return nil
		}
		if err := p.db.DropCollection(ctx, collection); err != nil {
			return err
		}
		p.logger.InfoWithContext(ctx, "dropped collection", nil, map[string]interface{}{"collection": collection})
	}

	if err := p.db.CreateCollection(ctx, p.cfg.collectionConfig(collection)); err != nil {
		return err
	}
	p.logger.InfoWithContext(ctx, "created collection", nil, map[string]interface{}{
		"collection": collection,
		"dimension":  p.cfg.VectorDimension,
		"metric":     p.metric,
		"index":      p.index,
	})
	return nil
}

// Update implements Pipeline.
func (p *VectorDBPipeline) Update(ctx context.Context, partition string, records []Record) (ids []string, err error) {
	if len(records) == 0 {
		return nil, nil
	}
	if partition == "" {
		partition = vectordb.DefaultPartition
	}

	for i, rec := range records {
		if rec.ID == "" {
			continue
		}
		if err := vectordb.ValidateID(rec.ID); err != nil {
			return nil, fmt.Errorf("pipeline: record %d: %w", i, err)
		}
	}

	collection := p.Collection()
	ctx, span := p.tracer.StartSpan(ctx, "pipeline.update")
	defer func() {
		p.tracer.RecordErrorOnSpan(span, err)
		span.End()
	}()
	p.tracer.SetAttributes(span, map[string]interface{}{
		"collection": collection,
		"partition":  partition,
		"records":    len(records),
	})

	vectors, err := p.vectorsFor(ctx, records)
	if err != nil {
		return nil, err
	}

	has, err := p.db.HasPartition(ctx, collection, partition)
	if err != nil {
		return nil, err
	}
	if !has {
		if err := p.db.CreatePartition(ctx, collection, partition); err != nil {
			return nil, err
		}
	}

	createdAt := p.now().UTC()
	ids = make([]string, len(records))
	inputs := make([]vectordb.EmbeddingInput, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
		if ids[i] == "" {
			ids[i] = p.newID()
		}
		inputs[i] = vectordb.EmbeddingInput{
			ID:     ids[i],
			Vector: vectors[i],
			Payload: map[string]any{
				FieldText:      rec.Text,
				FieldTitle:     rec.Title,
				FieldCreatedAt: createdAt,
			},
		}
	}

	if err := p.db.Insert(ctx, collection, partition, inputs); err != nil {
		return nil, err
	}
	p.logger.InfoWithContext(ctx, "inserted records", nil, map[string]interface{}{
		"collection": collection,
		"partition":  partition,
		"records":    len(records),
	})
	return ids, nil
}

// vectorsFor returns one vector per record, embedding the texts of records
// that carry none in a single batched call.
func (p *VectorDBPipeline) vectorsFor(ctx context.Context, records []Record) ([][]float32, error) {
	vectors := make([][]float32, len(records))
	var missing []int
	var texts []string
	for i, rec := range records {
		if len(rec.Vector) > 0 {
			vectors[i] = rec.Vector
			continue
		}
		if rec.Text == "" {
			return nil, fmt.Errorf("%w: record %d", ErrEmptyRecord, i)
		}
		missing = append(missing, i)
		texts = append(texts, rec.Text)
	}

	if len(texts) > 0 {
		embedded, err := p.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return nil, err
		}
		if len(embedded) != len(texts) {
			return nil, fmt.Errorf("pipeline: expected %d embeddings, got %d", len(texts), len(embedded))
		}
		for j, i := range missing {
			vectors[i] = embedded[j]
		}
	}

	for i, v := range vectors {
		if uint64(len(v)) != p.cfg.VectorDimension {
			return nil, fmt.Errorf("%w: record %d has %d dimensions, collection expects %d",
				vectordb.ErrDimensionMismatch, i, len(v), p.cfg.VectorDimension)
		}
	}
	return vectors, nil
}

// Delete implements Pipeline.
func (p *VectorDBPipeline) Delete(ctx context.Context, ids []string) error {
	return p.DeleteEntities(ctx, p.Collection(), "", ids)
}

// DeleteEntities removes ids from collection, limited to partition when it is not empty.
func (p *VectorDBPipeline) DeleteEntities(ctx context.Context, collection, partition string, ids []string) (err error) {
	if len(ids) == 0 {
		return nil
	}
	ctx, span := p.tracer.StartSpan(ctx, "pipeline.delete")
	defer func() {
		p.tracer.RecordErrorOnSpan(span, err)
		span.End()
	}()
	p.tracer.SetAttributes(span, map[string]interface{}{
		"collection": collection,
		"partition":  partition,
		"ids":        len(ids),
	})

	return p.db.Delete(ctx, collection, partition, ids)
}

// EmbedText implements Pipeline.
func (p *VectorDBPipeline) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return p.embedder.EmbedQuery(ctx, text)
}

// Search implements Pipeline. Hits outside [LowerBound, UpperBound] are never
// returned; the database adapter pages past them so a query still gets up to
// Limit hits when near-duplicates are excluded.
func (p *VectorDBPipeline) Search(ctx context.Context, query SearchQuery) (results []SearchResult, err error) {
	if len(query.Queries) == 0 {
		return nil, ErrEmptyQuery
	}
	limit := query.Limit
	if limit <= 0 {
		limit = p.cfg.DefaultLimit
	}

	collection := p.Collection()
	ctx, span := p.tracer.StartSpan(ctx, "pipeline.search")
	defer func() {
		p.tracer.RecordErrorOnSpan(span, err)
		span.End()
	}()
	p.tracer.SetAttributes(span, map[string]interface{}{
		"collection": collection,
		"queries":    len(query.Queries),
		"limit":      limit,
	})

	vectors, err := p.embedder.EmbedDocuments(ctx, query.Queries)
	if err != nil {
		return nil, err
	}

	scoreRange := p.cfg.scoreRange()
	requests := make([]vectordb.SearchRequest, len(vectors))
	for i, v := range vectors {
		requests[i] = vectordb.SearchRequest{
			CollectionName: collection,
			Vector:         v,
			TopK:           limit,
			Partitions:     query.Partitions,
			Filters:        query.Filters,
			Range:          &scoreRange,
			Metric:         p.metric,
			HnswEf:         p.cfg.SearchEf,
			Exact:          p.index == vectordb.IndexFlat,
		}
	}

	hits, err := p.db.Search(ctx, requests...)
	if err != nil {
		return nil, err
	}
	if len(hits) != len(requests) {
		return nil, fmt.Errorf("pipeline: expected %d result sets, got %d", len(requests), len(hits))
	}

	results = make([]SearchResult, len(hits))
	for i, set := range hits {
		results[i] = toSearchResult(set, scoreRange, limit)
	}
	return results, nil
}

func toSearchResult(hits []vectordb.SearchResult, r vectordb.ScoreRange, limit int) SearchResult {
	n := min(len(hits), limit)
	out := SearchResult{
		IDs:    make([]string, 0, n),
		Scores: make([]float32, 0, n),
		Texts:  make([]string, 0, n),
		Labels: make([]string, 0, n),
	}
	for _, h := range hits {
		if out.Len() == limit {
			break
		}
		if !r.Contains(h.Score) {
			continue
		}
		text, _ := h.Payload[FieldText].(string)
		title, _ := h.Payload[FieldTitle].(string)
		out.IDs = append(out.IDs, h.ID)
		out.Scores = append(out.Scores, h.Score)
		out.Texts = append(out.Texts, text)
		out.Labels = append(out.Labels, title)
	}
	return out
}

// ListCollections returns every collection name.
func (p *VectorDBPipeline) ListCollections(ctx context.Context) ([]string, error) {
	return p.db.ListCollections(ctx)
}

// DropCollection drops the named collection.
func (p *VectorDBPipeline) DropCollection(ctx context.Context, name string) error {
	if name == "" {
		return vectordb.ErrEmptyCollectionName
	}
	return p.db.DropCollection(ctx, name)
}

// DescribeCollection returns metadata of the named collection.
func (p *VectorDBPipeline) DescribeCollection(ctx context.Context, name string) (*vectordb.Collection, error) {
	if name == "" {
		return nil, vectordb.ErrEmptyCollectionName
	}
	return p.db.GetCollection(ctx, name)
}

package qdrant

import (
	"context"
	"errors"
	"fmt"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/observability"
	"github.com/yang0369/rag/v1/vectordb"
)

// pointsAPI is the subset of *qdrant.Client the adapter calls.
type pointsAPI interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	DeleteCollection(ctx context.Context, collectionName string) error
	GetCollectionInfo(ctx context.Context, collectionName string) (*qdrant.CollectionInfo, error)
	ListCollections(ctx context.Context) ([]string, error)
	CreateFieldIndex(ctx context.Context, request *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
	Count(ctx context.Context, request *qdrant.CountPoints) (uint64, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
}

var _ pointsAPI = (*qdrant.Client)(nil)

// Adapter implements vectordb.Service on top of Qdrant.
// It is safe for concurrent use.
type Adapter struct {
	api        pointsAPI
	logger     logger.Logger
	observer   observability.Observer
	batchSize  int
	rangePages int
}

var _ vectordb.Service = (*Adapter)(nil)

// NewAdapter wraps a Qdrant SDK client.
//
// Example:
//
//	adapter := qdrant.NewAdapter(client.Client(), log).
//	    WithObserver(metrics.NewOperationObserver(m))
func NewAdapter(client *qdrant.Client, log logger.Logger) *Adapter {
	return newAdapter(client, log)
}

func newAdapter(api pointsAPI, log logger.Logger) *Adapter {
	return &Adapter{
		api:        api,
		logger:     log,
		batchSize:  defaultBatchSize,
		rangePages: defaultRangeSearchPages,
	}
}

// WithObserver attaches an observer that is told about every remote call.
func (a *Adapter) WithObserver(obs observability.Observer) *Adapter {
	a.observer = obs
	return a
}

// WithBatchSize sets the number of points per upsert request.
// Values below 1 are ignored.
func (a *Adapter) WithBatchSize(n int) *Adapter {
	if n > 0 {
		a.batchSize = n
	}
	return a
}

// WithRangeSearchPages sets how many pages a range search may read.
// Values below 1 are ignored.
func (a *Adapter) WithRangeSearchPages(n int) *Adapter {
	if n > 0 {
		a.rangePages = n
	}
	return a
}

func (a *Adapter) observe(op, collection, partition string, start time.Time, err error, size int64) {
	if a.observer == nil {
		return
	}
	a.observer.ObserveOperation(observability.OperationContext{
		Component:   "qdrant",
		Operation:   op,
		Resource:    collection,
		SubResource: partition,
		Duration:    time.Since(start),
		Error:       err,
		Size:        size,
	})
}

// ── Collections ──────────────────────────────────────────────────────────────

// CreateCollection creates the collection and then its payload indexes.
// The partition field always gets a keyword index.
func (a *Adapter) CreateCollection(ctx context.Context, cfg vectordb.CollectionConfig) (err error) {
	start := time.Now()
	defer func() { a.observe("create_collection", cfg.Name, "", start, err, 0) }()

	if err := cfg.Validate(); err != nil {
		return err
	}
	distance, err := toDistance(cfg.Metric)
	if err != nil {
		return err
	}

	req := &qdrant.CreateCollection{
		CollectionName: cfg.Name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:       cfg.VectorSize,
			Distance:   distance,
			HnswConfig: hnswConfig(cfg),
		}),
	}
	if err := a.api.CreateCollection(ctx, req); err != nil {
		return fmt.Errorf("[Qdrant] failed to create collection '%s': %w", cfg.Name, err)
	}

	keyword := append([]string{vectordb.PartitionField}, cfg.KeywordFields...)
	for _, field := range keyword {
		if err := a.createFieldIndex(ctx, cfg.Name, field, qdrant.FieldType_FieldTypeKeyword); err != nil {
			return err
		}
	}
	for _, field := range cfg.TextFields {
		if err := a.createFieldIndex(ctx, cfg.Name, field, qdrant.FieldType_FieldTypeText); err != nil {
			return err
		}
	}
	for _, field := range cfg.DatetimeFields {
		if err := a.createFieldIndex(ctx, cfg.Name, field, qdrant.FieldType_FieldTypeDatetime); err != nil {
			return err
		}
	}

	a.logger.Info("[Qdrant] Created collection", nil, map[string]interface{}{
		"collection": cfg.Name,
		"dimension":  cfg.VectorSize,
		"distance":   distance.String(),
		"index":      string(cfg.IndexType),
	})
	return nil
}

func (a *Adapter) createFieldIndex(ctx context.Context, collection, field string, fieldType qdrant.FieldType) error {
	_, err := a.api.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		FieldName:      field,
		FieldType:      qdrant.PtrOf(fieldType),
	})
	if err != nil {
		return fmt.Errorf("[Qdrant] failed to index field '%s' on '%s': %w", field, collection, err)
	}
	return nil
}

// CollectionExists reports whether the collection exists.
func (a *Adapter) CollectionExists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, vectordb.ErrEmptyCollectionName
	}
	exists, err := a.api.CollectionExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("[Qdrant] failed to check collection '%s': %w", name, err)
	}
	return exists, nil
}

// DropCollection deletes the collection and every point in it.
func (a *Adapter) DropCollection(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { a.observe("drop_collection", name, "", start, err, 0) }()

	if name == "" {
		return vectordb.ErrEmptyCollectionName
	}
	if err := a.api.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("[Qdrant] failed to drop collection '%s': %w", name, err)
	}
	a.logger.Info("[Qdrant] Dropped collection", nil, map[string]interface{}{"collection": name})
	return nil
}

// GetCollection returns status, vector config, counts and payload indexes.
func (a *Adapter) GetCollection(ctx context.Context, name string) (*vectordb.Collection, error) {
	if name == "" {
		return nil, vectordb.ErrEmptyCollectionName
	}

	info, err := a.api.GetCollectionInfo(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to get collection '%s': %w", name, err)
	}

	size, distance := extractVectorDetails(info)
	return &vectordb.Collection{
		Name:               name,
		Status:             info.GetStatus().String(),
		VectorSize:         size,
		Distance:           distance,
		IndexedVectorCount: derefUint64(info.IndexedVectorsCount),
		PointCount:         derefUint64(info.PointsCount),
		PayloadIndexes:     payloadIndexes(info),
	}, nil
}

// ListCollections returns all collection names.
func (a *Adapter) ListCollections(ctx context.Context) ([]string, error) {
	names, err := a.api.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("[Qdrant] failed to list collections: %w", err)
	}
	return names, nil
}

// ── Partitions ───────────────────────────────────────────────────────────────

// HasPartition reports whether at least one point carries the partition name.
func (a *Adapter) HasPartition(ctx context.Context, collection, partition string) (bool, error) {
	if collection == "" {
		return false, vectordb.ErrEmptyCollectionName
	}
	n, err := a.api.Count(ctx, &qdrant.CountPoints{
		CollectionName: collection,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch(vectordb.PartitionField, partition)},
		},
		Exact: qdrant.PtrOf(true),
	})
	if err != nil {
		return false, fmt.Errorf("[Qdrant] failed to count partition '%s' of '%s': %w", partition, collection, err)
	}
	return n > 0, nil
}

// CreatePartition makes sure the partition field is keyword-indexed.
// Qdrant has no partition objects, so a partition comes into existence with
// its first point.
func (a *Adapter) CreatePartition(ctx context.Context, collection, partition string) (err error) {
	start := time.Now()
	defer func() { a.observe("create_partition", collection, partition, start, err, 0) }()

	if collection == "" {
		return vectordb.ErrEmptyCollectionName
	}
	if err := a.createFieldIndex(ctx, collection, vectordb.PartitionField, qdrant.FieldType_FieldTypeKeyword); err != nil {
		return err
	}
	a.logger.Debug("[Qdrant] Partition ready", nil, map[string]interface{}{
		"collection": collection,
		"partition":  partition,
	})
	return nil
}

// ── Points ───────────────────────────────────────────────────────────────────

// Insert upserts inputs in batches, tagging each point with partition.
func (a *Adapter) Insert(ctx context.Context, collection, partition string, inputs []vectordb.EmbeddingInput) (err error) {
	if len(inputs) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { a.observe("insert", collection, partition, start, err, int64(len(inputs))) }()

	if collection == "" {
		return vectordb.ErrEmptyCollectionName
	}
	if partition == "" {
		partition = vectordb.DefaultPartition
	}

	points := make([]*qdrant.PointStruct, 0, len(inputs))
	for i, in := range inputs {
		id, err := toPointID(in.ID)
		if err != nil {
			return fmt.Errorf("input [%d]: %w", i, err)
		}
		payload := make(map[string]any, len(in.Payload)+1)
		for k, v := range in.Payload {
			payload[k] = v
		}
		payload[vectordb.PartitionField] = partition

		values, err := toPayload(payload)
		if err != nil {
			return fmt.Errorf("input [%d]: %w", i, err)
		}
		points = append(points, &qdrant.PointStruct{
			Id:      id,
			Vectors: qdrant.NewVectors(in.Vector...),
			Payload: values,
		})
	}

	for lo := 0; lo < len(points); lo += a.batchSize {
		hi := min(lo+a.batchSize, len(points))
		_, err := a.api.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Points:         points[lo:hi],
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return fmt.Errorf("[Qdrant] batch upsert failed at [%d:%d]: %w", lo, hi, err)
		}
		a.logger.Debug("[Qdrant] Inserted batch", nil, map[string]interface{}{
			"collection": collection,
			"partition":  partition,
			"from":       lo,
			"to":         hi,
		})
	}
	return nil
}

// Delete removes points by id. A non-empty partition limits the delete to
// points of that partition.
func (a *Adapter) Delete(ctx context.Context, collection, partition string, ids []string) (err error) {
	if len(ids) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { a.observe("delete", collection, partition, start, err, int64(len(ids))) }()

	if collection == "" {
		return vectordb.ErrEmptyCollectionName
	}

	pointIDs, err := toPointIDs(ids)
	if err != nil {
		return err
	}

	selector := qdrant.NewPointsSelector(pointIDs...)
	if partition != "" {
		selector = qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewHasID(pointIDs...),
				qdrant.NewMatch(vectordb.PartitionField, partition),
			},
		})
	}

	return a.delete(ctx, collection, selector)
}

// DeleteWhere removes every point matching filters. An empty filter set is
// rejected so that a missing filter cannot wipe a collection.
func (a *Adapter) DeleteWhere(ctx context.Context, collection string, filters *vectordb.FilterSet) (err error) {
	start := time.Now()
	defer func() { a.observe("delete_where", collection, "", start, err, 0) }()

	if collection == "" {
		return vectordb.ErrEmptyCollectionName
	}
	filter, err := convertFilterSet(filters)
	if err != nil {
		return err
	}
	if filter == nil {
		return errors.New("[Qdrant] refusing to delete with an empty filter")
	}
	return a.delete(ctx, collection, qdrant.NewPointsSelectorFilter(filter))
}

func (a *Adapter) delete(ctx context.Context, collection string, selector *qdrant.PointsSelector) error {
	resp, err := a.api.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collection,
		Points:         selector,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("[Qdrant] delete failed: %w", err)
	}
	a.logger.Debug("[Qdrant] Delete completed", nil, map[string]interface{}{
		"collection": collection,
		"status":     resp.GetStatus().String(),
	})
	return nil
}

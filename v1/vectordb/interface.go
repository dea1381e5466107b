package vectordb

import "context"

// Service is the database-agnostic contract for vector storage and search.
// The pipeline depends only on this interface; v1/qdrant provides the
// production implementation.
//
// Partitions scope inserts, searches and deletes inside a collection. An
// empty partition argument to Delete means "every partition".
//
//go:generate mockgen -source=interface.go -destination=mock_service.go -package=vectordb
type Service interface {
	// Search runs one similarity search per request. The outer slice of the
	// result is aligned with requests.
	Search(ctx context.Context, requests ...SearchRequest) ([][]SearchResult, error)

	// Insert upserts inputs into partition of collection.
	Insert(ctx context.Context, collection, partition string, inputs []EmbeddingInput) error

	// Delete removes points by id, limited to partition when it is not empty.
	Delete(ctx context.Context, collection, partition string, ids []string) error

	// DeleteWhere removes every point matching filters.
	DeleteWhere(ctx context.Context, collection string, filters *FilterSet) error

	// CreateCollection creates a collection and its payload indexes.
	CreateCollection(ctx context.Context, cfg CollectionConfig) error

	// CollectionExists reports whether a collection with the given name exists.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// DropCollection deletes a collection and all of its points.
	DropCollection(ctx context.Context, name string) error

	// GetCollection returns metadata about a collection.
	GetCollection(ctx context.Context, name string) (*Collection, error)

	// ListCollections returns the names of all collections.
	ListCollections(ctx context.Context) ([]string, error)

	// HasPartition reports whether any point of collection belongs to partition.
	HasPartition(ctx context.Context, collection, partition string) (bool, error)

	// CreatePartition prepares collection to hold points of partition.
	CreatePartition(ctx context.Context, collection, partition string) error
}

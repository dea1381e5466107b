package pipeline

import (
	"context"
	"errors"

	"github.com/yang0369/rag/v1/vectordb"
)

var (
	// ErrNotImplemented is returned by every KnowledgeGraphPipeline method.
	ErrNotImplemented = errors.New("pipeline: not implemented")

	// ErrEmptyQuery is returned by Search when no query text is given.
	ErrEmptyQuery = errors.New("pipeline: no query")

	// ErrEmptyRecord is returned by Update for a record with neither text nor vector.
	ErrEmptyRecord = errors.New("pipeline: record has no text and no vector")
)

// Pipeline is the contract every retrieval backend implements.
type Pipeline interface {
	// Create creates the target collection if it does not exist. With
	// opts.Drop an existing collection is dropped and recreated.
	Create(ctx context.Context, opts CreateOptions) error

	// Update inserts records into partition, creating the partition first if
	// needed. Records without a vector are embedded. It returns the row ids
	// in record order.
	Update(ctx context.Context, partition string, records []Record) ([]string, error)

	// Delete removes rows by id from every partition.
	Delete(ctx context.Context, ids []string) error

	// EmbedText returns the embedding of text.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// Search runs one range-bounded similarity search per query text.
	Search(ctx context.Context, query SearchQuery) ([]SearchResult, error)
}

// CreateOptions controls Create.
type CreateOptions struct {
	Drop bool
}

// Record is a row to insert.
type Record struct {
	// ID is optional. An empty ID gets a random UUID; otherwise it must be a
	// UUID or an unsigned integer without leading zeros.
	ID     string
	Title  string
	Text   string
	Vector []float32
}

// SearchQuery is a batch of query texts.
type SearchQuery struct {
	Queries []string

	// Partitions restricts the search. Empty means every partition.
	Partitions []string

	// Limit caps the hits per query. Zero uses Config.DefaultLimit.
	Limit int

	// Filters optionally narrows the search by payload, e.g. by created_at.
	Filters *vectordb.FilterSet
}

// SearchResult holds the hits of one query as parallel slices of equal
// length, best match first.
type SearchResult struct {
	IDs    []string
	Scores []float32
	Texts  []string
	Labels []string
}

// Len returns the number of hits.
func (r SearchResult) Len() int {
	return len(r.IDs)
}

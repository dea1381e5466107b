package vectordb

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultPartition receives inserts that name no partition.
	DefaultPartition = "_default"

	// PartitionField is the payload key holding a point's partition.
	PartitionField = "partition"
)

var (
	ErrEmptyCollectionName = errors.New("vectordb: collection name is empty")
	ErrDimensionMismatch   = errors.New("vectordb: vector dimension mismatch")
	ErrUnknownMetric       = errors.New("vectordb: unknown metric")
	ErrUnknownIndexType    = errors.New("vectordb: unknown index type")
	ErrInvalidScoreRange   = errors.New("vectordb: invalid score range")
	ErrInvalidID           = errors.New("vectordb: id must be a UUID or a canonical unsigned integer")
)

// ValidateID accepts a UUID or an unsigned integer in canonical decimal form.
// Leading zeros are rejected so an id reads back exactly as it was written.
func ValidateID(id string) error {
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		if strconv.FormatUint(n, 10) == id {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Metric is the similarity measure of a collection.
type Metric string

const (
	MetricCosine    Metric = "COSINE"
	MetricDot       Metric = "DOT"
	MetricEuclid    Metric = "L2"
	MetricManhattan Metric = "MANHATTAN"
)

// ParseMetric maps a metric name to a Metric. Matching is case-insensitive
// and accepts the common aliases IP (dot) and EUCLID (L2).
func ParseMetric(s string) (Metric, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "COSINE":
		return MetricCosine, nil
	case "DOT", "IP":
		return MetricDot, nil
	case "L2", "EUCLID", "EUCLIDEAN":
		return MetricEuclid, nil
	case "MANHATTAN", "L1":
		return MetricManhattan, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

// HigherIsBetter reports whether larger scores mean closer vectors.
// True for similarity metrics, false for distances.
func (m Metric) HigherIsBetter() bool {
	return m == MetricCosine || m == MetricDot
}

// IndexType selects how a collection's vectors are indexed.
type IndexType string

const (
	// IndexHNSW is the graph index, tuned with M and EfConstruct.
	IndexHNSW IndexType = "HNSW"

	// IndexFlat searches exhaustively, giving exact results.
	IndexFlat IndexType = "FLAT"
)

// ParseIndexType maps an index type name to an IndexType.
func ParseIndexType(s string) (IndexType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HNSW":
		return IndexHNSW, nil
	case "FLAT":
		return IndexFlat, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIndexType, s)
}

// ScoreRange bounds the scores accepted by a range search, inclusive on both ends.
type ScoreRange struct {
	Lower float32 `json:"lower"`
	Upper float32 `json:"upper"`
}

// Validate returns ErrInvalidScoreRange when Lower is above Upper.
func (r ScoreRange) Validate() error {
	if r.Lower > r.Upper {
		return fmt.Errorf("%w: lower %v > upper %v", ErrInvalidScoreRange, r.Lower, r.Upper)
	}
	return nil
}

// Contains reports whether score lies within [Lower, Upper].
func (r ScoreRange) Contains(score float32) bool {
	return score >= r.Lower && score <= r.Upper
}

// SearchRequest is one similarity search.
type SearchRequest struct {
	// CollectionName is the collection to search.
	CollectionName string `json:"collectionName"`

	// Vector is the query embedding.
	Vector []float32 `json:"vector"`

	// TopK caps the number of results.
	TopK int `json:"maxResults"`

	// Partitions restricts the search to these partitions. Empty means all.
	Partitions []string `json:"partitions,omitempty"`

	// Filters narrows the candidate set by payload.
	Filters *FilterSet `json:"filters,omitempty"`

	// Range, when set, drops results whose score falls outside it.
	Range *ScoreRange `json:"range,omitempty"`

	// Metric tells the adapter how to read Range. Defaults to MetricCosine.
	Metric Metric `json:"metric,omitempty"`

	// HnswEf overrides the search-time beam width of an HNSW index.
	HnswEf uint64 `json:"hnswEf,omitempty"`

	// Exact forces exhaustive search.
	Exact bool `json:"exact,omitempty"`
}

// SearchResult is one match.
type SearchResult struct {
	ID string `json:"id"`

	// Score is the similarity (or distance) reported by the database.
	Score float32 `json:"score"`

	Payload map[string]any `json:"payload"`

	CollectionName string `json:"collectionName,omitempty"`
}

// EmbeddingInput is a point to insert.
type EmbeddingInput struct {
	// ID is a UUID or an unsigned integer in decimal form.
	ID string `json:"id"`

	Vector []float32 `json:"vector"`

	Payload map[string]any `json:"payload,omitempty"`
}

// CollectionConfig describes a collection to create.
type CollectionConfig struct {
	Name       string
	VectorSize uint64
	Metric     Metric
	IndexType  IndexType

	// HnswM and HnswEfConstruct tune the HNSW graph. Zero keeps the server default.
	HnswM           uint64
	HnswEfConstruct uint64

	// TextFields get a full-text payload index.
	TextFields []string

	// KeywordFields get an exact-match payload index.
	KeywordFields []string

	// DatetimeFields get a datetime payload index for range filters.
	DatetimeFields []string
}

// Validate checks the fields every backend needs.
func (c CollectionConfig) Validate() error {
	if c.Name == "" {
		return ErrEmptyCollectionName
	}
	if c.VectorSize == 0 {
		return fmt.Errorf("%w: vector size must be positive", ErrDimensionMismatch)
	}
	if _, err := ParseMetric(string(c.Metric)); err != nil {
		return err
	}
	if _, err := ParseIndexType(string(c.IndexType)); err != nil {
		return err
	}
	return nil
}

// Collection is collection metadata.
type Collection struct {
	Name string `json:"name"`

	// Status is the backend's health status, e.g. "green".
	Status string `json:"status"`

	VectorSize int `json:"vectorSize"`

	Distance string `json:"distance"`

	// IndexedVectorCount is the number of vectors already in the ANN index.
	IndexedVectorCount uint64 `json:"indexedVectorCount"`

	PointCount uint64 `json:"pointCount"`

	// PayloadIndexes maps indexed payload keys to their index type.
	PayloadIndexes map[string]string `json:"payloadIndexes,omitempty"`
}

package pipeline

import (
	"fmt"

	"github.com/yang0369/rag/v1/vectordb"
)

// Payload keys written on every row.
const (
	FieldText      = "text"
	FieldTitle     = "title"
	FieldCreatedAt = "created_at"
)

// Config holds the collection schema and search settings.
type Config struct {
	// Collection is the initial target collection.
	Collection string `yaml:"collection" envconfig:"PIPELINE_COLLECTION"`

	// VectorDimension must match the embedding model's output.
	VectorDimension uint64 `yaml:"vector_dimension" envconfig:"PIPELINE_VECTOR_DIMENSION"`

	// Metric is COSINE, DOT, L2 or MANHATTAN.
	Metric string `yaml:"metric" envconfig:"PIPELINE_METRIC"`

	// IndexType is HNSW or FLAT.
	IndexType string `yaml:"index_type" envconfig:"PIPELINE_INDEX_TYPE"`

	// HnswM and HnswEfConstruct tune the graph index. Zero keeps the server default.
	HnswM           uint64 `yaml:"hnsw_m" envconfig:"PIPELINE_HNSW_M"`
	HnswEfConstruct uint64 `yaml:"hnsw_ef_construct" envconfig:"PIPELINE_HNSW_EF_CONSTRUCT"`

	// SearchEf is the search-time beam width. Zero keeps the server default.
	SearchEf uint64 `yaml:"search_ef" envconfig:"PIPELINE_SEARCH_EF"`

	// UpperBound and LowerBound bound accepted scores, inclusive.
	UpperBound float32 `yaml:"upper_bound" envconfig:"PIPELINE_UPPER_BOUND"`
	LowerBound float32 `yaml:"lower_bound" envconfig:"PIPELINE_LOWER_BOUND"`

	// DefaultLimit is the result cap when a query sets none.
	DefaultLimit int `yaml:"default_limit" envconfig:"PIPELINE_DEFAULT_LIMIT"`
}

// DefaultConfig returns the settings for the snowflake-arctic-embed-l model
// with cosine similarity.
func DefaultConfig() *Config {
	return &Config{
		Collection:      "test",
		VectorDimension: 1024,
		Metric:          string(vectordb.MetricCosine),
		IndexType:       string(vectordb.IndexHNSW),
		UpperBound:      0.999,
		LowerBound:      0.5,
		DefaultLimit:    3,
	}
}

// Validate rejects unknown metrics and index types, inverted score bounds
// and non-positive sizes.
func (c *Config) Validate() error {
	if c.Collection == "" {
		return vectordb.ErrEmptyCollectionName
	}
	if c.VectorDimension == 0 {
		return fmt.Errorf("%w: vector dimension must be positive", vectordb.ErrDimensionMismatch)
	}
	if _, err := vectordb.ParseMetric(c.Metric); err != nil {
		return err
	}
	if _, err := vectordb.ParseIndexType(c.IndexType); err != nil {
		return err
	}
	if err := c.scoreRange().Validate(); err != nil {
		return err
	}
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("pipeline: default limit must be positive, got %d", c.DefaultLimit)
	}
	return nil
}

func (c *Config) scoreRange() vectordb.ScoreRange {
	return vectordb.ScoreRange{Lower: c.LowerBound, Upper: c.UpperBound}
}

// collectionConfig assumes Validate has passed.
func (c *Config) collectionConfig(name string) vectordb.CollectionConfig {
	metric, _ := vectordb.ParseMetric(c.Metric)
	index, _ := vectordb.ParseIndexType(c.IndexType)
	return vectordb.CollectionConfig{
		Name:            name,
		VectorSize:      c.VectorDimension,
		Metric:          metric,
		IndexType:       index,
		HnswM:           c.HnswM,
		HnswEfConstruct: c.HnswEfConstruct,
		TextFields:      []string{FieldText},
		DatetimeFields:  []string{FieldCreatedAt},
	}
}

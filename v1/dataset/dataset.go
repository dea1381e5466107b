// Package dataset loads the documents that seed the vector database: JSON
// arrays of {"title", "text"} objects read from a local file or from object
// storage, plus a small built-in set used by the demo.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// ErrNoDocuments is returned when a source yields an empty set.
var ErrNoDocuments = errors.New("dataset: no documents")

// Document is one labeled text.
type Document struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Source yields documents.
type Source interface {
	Load(ctx context.Context) ([]Document, error)
}

// ObjectGetter reads a whole object. *minio.MinioClient implements it.
type ObjectGetter interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// Parse decodes a JSON array of documents. Missing fields decode as empty
// strings; entries with no text are dropped.
func Parse(data []byte) ([]Document, error) {
	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("dataset: decode: %w", err)
	}

	out := docs[:0]
	for _, d := range docs {
		if d.Text == "" {
			continue
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, ErrNoDocuments
	}
	return out, nil
}

// FileSource reads documents from a local JSON file.
type FileSource struct {
	Path string
}

// Load implements Source.
func (s FileSource) Load(_ context.Context) ([]Document, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", s.Path, err)
	}
	return Parse(data)
}

// ObjectSource reads documents from an object in a bucket.
type ObjectSource struct {
	Getter ObjectGetter
	Key    string
}

// Load implements Source.
func (s ObjectSource) Load(ctx context.Context) ([]Document, error) {
	data, err := s.Getter.GetObject(ctx, s.Key)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// BuiltinSource yields the three built-in documents.
type BuiltinSource struct{}

// Load implements Source.
func (BuiltinSource) Load(_ context.Context) ([]Document, error) {
	return Builtin(), nil
}

// Builtin returns three short encyclopedic documents on computer science,
// data science and urban planning.
func Builtin() []Document {
	return []Document{
		{
			Title: "computer science",
			Text: "Computer science is the study of computation, information, and automation. " +
				"Computer science spans theoretical disciplines (such as algorithms, theory of computation, " +
				"and information theory) to applied disciplines (including the design and implementation of " +
				"hardware and software).",
		},
		{
			Title: "data science",
			Text: "Data science is the study of data to extract meaningful insights for business. " +
				"It is a multidisciplinary approach that combines principles and practices from the fields of " +
				"mathematics, statistics, artificial intelligence, and computer engineering to analyze large " +
				"amounts of data.",
		},
		{
			Title: "urban planning",
			Text: "Urban planning includes techniques such as: predicting population growth, zoning, " +
				"geographic mapping and analysis, analyzing park space, surveying the water supply, identifying " +
				"transportation patterns, recognizing food supply demands, allocating healthcare and social " +
				"services, and analyzing the impact of land use.",
		},
	}
}

// Config selects where documents come from. With neither field set the
// built-in documents are used.
type Config struct {
	// Path is a local JSON file.
	Path string `yaml:"path" envconfig:"DATASET_PATH"`

	// ObjectKey is a key in the configured MinIO bucket. It wins over Path
	// when object storage is enabled.
	ObjectKey string `yaml:"object_key" envconfig:"DATASET_OBJECT_KEY"`
}

// NewSource picks a Source for cfg. getter may be nil when object storage is disabled.
func NewSource(cfg Config, getter ObjectGetter) Source {
	switch {
	case cfg.ObjectKey != "" && getter != nil:
		return ObjectSource{Getter: getter, Key: cfg.ObjectKey}
	case cfg.Path != "":
		return FileSource{Path: cfg.Path}
	default:
		return BuiltinSource{}
	}
}

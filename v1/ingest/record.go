// Package ingest defines the record format shared by the ingestion
// transports (Kafka and RabbitMQ) and the handler contract they drive.
package ingest

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/yang0369/rag/v1/vectordb"
)

// ErrEmptyText is returned when a record carries no text.
var ErrEmptyText = errors.New("ingest: record has no text")

// Record is the JSON body of an ingest message.
type Record struct {
	// ID is optional; the pipeline assigns one when empty. A non-empty ID
	// must be a UUID or a canonical unsigned integer.
	ID        string `json:"id,omitempty"`
	Partition string `json:"partition"`
	Title     string `json:"title"`
	Text      string `json:"text"`
}

// Handler stores one record. Transports stop consuming and leave the
// message unacknowledged when it returns an error.
type Handler func(ctx context.Context, rec Record) error

// Transport is implemented by *kafka.KafkaClient and *rabbit.RabbitClient.
type Transport interface {
	// Consume delivers records to handler until ctx is cancelled or handler
	// fails. Cancellation returns nil.
	Consume(ctx context.Context, handler Handler) error

	// Publish sends records to the ingest destination.
	Publish(ctx context.Context, recs ...Record) error
}

// Decode parses and checks a message body. Bodies that can never be stored
// (bad JSON, no text, an unusable id) return an error so transports skip them.
func Decode(body []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return Record{}, fmt.Errorf("ingest: decode record: %w", err)
	}
	if rec.Text == "" {
		return Record{}, ErrEmptyText
	}
	if rec.ID != "" {
		if err := vectordb.ValidateID(rec.ID); err != nil {
			return Record{}, fmt.Errorf("ingest: %w", err)
		}
	}
	return rec, nil
}

// Encode serializes rec as a message body.
func Encode(rec Record) ([]byte, error) {
	return json.Marshal(rec)
}

package kafka

import (
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	DefaultTopic    = "rag.ingest"
	DefaultGroupID  = "rag-ingest"
	DefaultMinBytes = 1
	DefaultMaxBytes = 10e6
	DefaultMaxWait  = 500 * time.Millisecond
)

// Config defines the ingestion topic settings.
type Config struct {
	// Enabled lets binaries skip Kafka entirely when false.
	Enabled bool `yaml:"enabled" envconfig:"KAFKA_ENABLED"`

	// Brokers is the seed broker list. In the environment it is comma separated.
	Brokers []string `yaml:"brokers" envconfig:"KAFKA_BROKERS"`

	// Topic carries JSON ingest records.
	Topic string `yaml:"topic" envconfig:"KAFKA_TOPIC"`

	// GroupID is the consumer group. Offsets are committed after each record is stored.
	GroupID string `yaml:"group_id" envconfig:"KAFKA_GROUP_ID"`

	MinBytes int           `yaml:"min_bytes" envconfig:"KAFKA_MIN_BYTES"`
	MaxBytes int           `yaml:"max_bytes" envconfig:"KAFKA_MAX_BYTES"`
	MaxWait  time.Duration `yaml:"max_wait" envconfig:"KAFKA_MAX_WAIT"`

	// StartFromOldest reads a new group from the beginning of the topic
	// instead of only new messages.
	StartFromOldest bool `yaml:"start_from_oldest" envconfig:"KAFKA_START_FROM_OLDEST"`

	// CompressionCodec for published messages: gzip, snappy, lz4, zstd or empty.
	CompressionCodec string `yaml:"compression_codec" envconfig:"KAFKA_COMPRESSION_CODEC"`

	TLS  TLSConfig  `yaml:"tls"`
	SASL SASLConfig `yaml:"sasl"`
}

// TLSConfig contains TLS settings for the broker connection.
type TLSConfig struct {
	Enabled            bool   `yaml:"enabled" envconfig:"KAFKA_TLS_ENABLED"`
	CACertPath         string `yaml:"ca_cert_path" envconfig:"KAFKA_TLS_CA_CERT_PATH"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify" envconfig:"KAFKA_TLS_INSECURE_SKIP_VERIFY"`
}

// SASLConfig contains SASL authentication settings.
type SASLConfig struct {
	Enabled bool `yaml:"enabled" envconfig:"KAFKA_SASL_ENABLED"`

	// Mechanism is PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512.
	Mechanism string `yaml:"mechanism" envconfig:"KAFKA_SASL_MECHANISM"`
	Username  string `yaml:"username" envconfig:"KAFKA_SASL_USERNAME"`
	Password  string `yaml:"password" envconfig:"KAFKA_SASL_PASSWORD"`
}

// DefaultConfig returns a config for a local single-broker cluster.
func DefaultConfig() *Config {
	return &Config{
		Brokers:  []string{"localhost:9092"},
		Topic:    DefaultTopic,
		GroupID:  DefaultGroupID,
		MinBytes: DefaultMinBytes,
		MaxBytes: DefaultMaxBytes,
		MaxWait:  DefaultMaxWait,
	}
}

// Validate reports missing settings.
func (c *Config) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("kafka: at least one broker is required")
	}
	if c.Topic == "" {
		return errors.New("kafka: topic is required")
	}
	if c.GroupID == "" {
		return errors.New("kafka: group id is required")
	}
	return nil
}

func (c *Config) startOffset() int64 {
	if c.StartFromOldest {
		return kafka.FirstOffset
	}
	return kafka.LastOffset
}

package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/observability"
	"github.com/yang0369/rag/v1/tracer"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaClient consumes ingest records from one topic and can publish them.
type KafkaClient struct {
	cfg      Config
	reader   messageReader
	writer   messageWriter
	logger   logger.Logger
	tracer   *tracer.Tracer
	observer observability.Observer
}

// NewClient creates a reader in cfg.GroupID and a writer on cfg.Topic.
// Neither connects until first use.
//
// Example:
//
//	client, err := kafka.NewClient(kafka.DefaultConfig(), log, tr)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
func NewClient(cfg *Config, log logger.Logger, tr *tracer.Tracer) (*KafkaClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var tlsConfig *tls.Config
	if cfg.TLS.Enabled {
		var err error
		if tlsConfig, err = createTLSConfig(cfg.TLS); err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	var mechanism sasl.Mechanism
	if cfg.SASL.Enabled {
		var err error
		if mechanism, err = createSASLMechanism(cfg.SASL); err != nil {
			return nil, fmt.Errorf("failed to create SASL mechanism: %w", err)
		}
	}

	errorLogger := kafka.LoggerFunc(func(msg string, args ...interface{}) {
		log.Error("Kafka internal error", nil, map[string]interface{}{
			"error": fmt.Sprintf(msg, args...),
		})
	})

	dialer := &kafka.Dialer{TLS: tlsConfig, SASLMechanism: mechanism}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: cfg.startOffset(),
		Dialer:      dialer,
		ErrorLogger: errorLogger,
	})

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  compressionCodec(cfg.CompressionCodec),
		Transport:    &kafka.Transport{TLS: tlsConfig, SASL: mechanism},
		ErrorLogger:  errorLogger,
	}

	log.Info("Kafka client initialized", nil, map[string]interface{}{
		"topic":    cfg.Topic,
		"group_id": cfg.GroupID,
	})

	return &KafkaClient{
		cfg:    *cfg,
		reader: reader,
		writer: writer,
		logger: log,
		tracer: tr,
	}, nil
}

// WithObserver attaches an observer that is told about every consumed and
// published record.
func (k *KafkaClient) WithObserver(observer observability.Observer) *KafkaClient {
	k.observer = observer
	return k
}

// Close closes the reader and the writer.
func (k *KafkaClient) Close() error {
	return errors.Join(k.reader.Close(), k.writer.Close())
}

func compressionCodec(name string) kafka.Compression {
	switch name {
	case "gzip":
		return compress.Gzip
	case "snappy":
		return compress.Snappy
	case "lz4":
		return compress.Lz4
	case "zstd":
		return compress.Zstd
	default:
		return 0
	}
}

func createTLSConfig(cfg TLSConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("failed to parse CA cert")
		}
		tlsConfig.RootCAs = pool
	}

	return tlsConfig, nil
}

func createSASLMechanism(cfg SASLConfig) (sasl.Mechanism, error) {
	switch cfg.Mechanism {
	case "PLAIN":
		return plain.Mechanism{Username: cfg.Username, Password: cfg.Password}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %s", cfg.Mechanism)
	}
}

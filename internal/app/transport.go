package app

import (
	"errors"

	"go.uber.org/fx"

	"github.com/yang0369/rag/v1/config"
	"github.com/yang0369/rag/v1/ingest"
	"github.com/yang0369/rag/v1/kafka"
	"github.com/yang0369/rag/v1/rabbit"
)

// ErrNoTransport is returned when neither Kafka nor RabbitMQ is enabled.
var ErrNoTransport = errors.New("app: no ingest transport enabled, set KAFKA_ENABLED or RABBIT_ENABLED")

// Transport provides ingest.Transport backed by Kafka when it is enabled,
// otherwise by RabbitMQ.
func Transport(cfg *config.AppConfig) (fx.Option, error) {
	switch {
	case cfg.Kafka.Enabled:
		return fx.Options(
			fx.Supply(cfg.Kafka),
			kafka.FXModule,
			fx.Provide(func(c *kafka.KafkaClient) ingest.Transport { return c }),
		), nil
	case cfg.Rabbit.Enabled:
		return fx.Options(
			fx.Supply(cfg.Rabbit),
			rabbit.FXModule,
			fx.Provide(func(c *rabbit.RabbitClient) ingest.Transport { return c }),
		), nil
	}
	return nil, ErrNoTransport
}

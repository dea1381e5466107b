package kafka

import (
	"context"

	"go.uber.org/fx"

	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/observability"
	"github.com/yang0369/rag/v1/tracer"
)

// FXModule provides *KafkaClient and closes it on stop.
// Requires *kafka.Config, logger.Logger and *tracer.Tracer.
var FXModule = fx.Module("kafka",
	fx.Provide(NewClientWithDI),
	fx.Invoke(RegisterKafkaLifecycle),
)

// KafkaParams groups the dependencies of NewClientWithDI.
type KafkaParams struct {
	fx.In

	Config   *Config
	Logger   logger.Logger
	Tracer   *tracer.Tracer
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a Kafka client and attaches the observer if one is provided.
func NewClientWithDI(p KafkaParams) (*KafkaClient, error) {
	c, err := NewClient(p.Config, p.Logger, p.Tracer)
	if err != nil {
		return nil, err
	}
	if p.Observer != nil {
		c.WithObserver(p.Observer)
	}
	return c, nil
}

// RegisterKafkaLifecycle closes the client when the application stops.
func RegisterKafkaLifecycle(lc fx.Lifecycle, client *KafkaClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			client.logger.Info("Closing Kafka client", nil)
			return client.Close()
		},
	})
}

package rabbit

import (
	"context"
	"sync"

	"go.uber.org/fx"

	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/observability"
	"github.com/yang0369/rag/v1/tracer"
)

// FXModule provides *RabbitClient, keeps its connection alive while the
// application runs and closes it on stop.
// Requires *rabbit.Config, logger.Logger and *tracer.Tracer.
//
// Usage:
//
//	app := fx.New(
//		logger.FXModule,
//		tracer.FXModule,
//		fx.Supply(rabbitCfg),
//		rabbit.FXModule,
//	)
var FXModule = fx.Module("rabbit",
	fx.Provide(NewClientWithDI),
	fx.Invoke(RegisterRabbitLifecycle),
)

// RabbitParams groups the dependencies of NewClientWithDI.
type RabbitParams struct {
	fx.In

	Config   *Config
	Logger   logger.Logger
	Tracer   *tracer.Tracer
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a RabbitMQ client and attaches the observer if one
// is provided.
func NewClientWithDI(p RabbitParams) (*RabbitClient, error) {
	c, err := NewClient(p.Config, p.Logger, p.Tracer)
	if err != nil {
		return nil, err
	}
	if p.Observer != nil {
		c.WithObserver(p.Observer)
	}
	return c, nil
}

// RegisterRabbitLifecycle runs RetryConnection in the background from start
// until stop, then closes the client.
func RegisterRabbitLifecycle(lc fx.Lifecycle, client *RabbitClient) {
	wg := &sync.WaitGroup{}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				client.RetryConnection()
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			client.logger.Info("Closing RabbitMQ client", nil)
			err := client.Close()
			wg.Wait()
			return err
		},
	})
}

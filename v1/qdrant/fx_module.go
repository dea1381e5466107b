package qdrant

import (
	"context"

	"go.uber.org/fx"

	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/observability"
	"github.com/yang0369/rag/v1/vectordb"
)

// FXModule provides *QdrantClient, *Adapter and vectordb.Service, and closes
// the client when the application stops.
//
// Dependencies required by this module:
//   - *qdrant.Config
//   - logger.Logger
//   - observability.Observer (optional)
var FXModule = fx.Module("qdrant",
	fx.Provide(
		NewQdrantClient,
		NewAdapterFromClient,
		func(a *Adapter) vectordb.Service { return a },
	),
	fx.Invoke(RegisterQdrantLifecycle),
)

// QdrantParams groups the dependencies of NewQdrantClient.
type QdrantParams struct {
	fx.In

	Config *Config
	Logger logger.Logger
}

// AdapterParams groups the dependencies of NewAdapterFromClient.
type AdapterParams struct {
	fx.In

	Client   *QdrantClient
	Logger   logger.Logger
	Observer observability.Observer `optional:"true"`
}

// NewAdapterFromClient builds an Adapter using the client's batch and range
// search settings.
func NewAdapterFromClient(p AdapterParams) *Adapter {
	a := NewAdapter(p.Client.Client(), p.Logger).
		WithBatchSize(p.Client.cfg.BatchSize).
		WithRangeSearchPages(p.Client.cfg.RangeSearchPages)
	if p.Observer != nil {
		a.WithObserver(p.Observer)
	}
	return a
}

// RegisterQdrantLifecycle closes the client on application stop.
func RegisterQdrantLifecycle(lc fx.Lifecycle, client *QdrantClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}

package embedding

import (
	"context"

	"go.uber.org/fx"

	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/observability"
)

// FXModule wires the embedding client into Fx.
//
// It provides:
//   - *Client   (NewClientFromParams)
//   - Embedder  (the client, wrapped in a CachedEmbedder when a Cache is present)
//   - Lifecycle hook (RegisterEmbeddingLifecycle)
//
// Requires *embedding.Config and logger.Logger.
var FXModule = fx.Module(
	"embedding",

	fx.Provide(
		NewClientFromParams,
		NewEmbedder,
	),

	fx.Invoke(RegisterEmbeddingLifecycle),
)

// ClientParams groups the dependencies of NewClientFromParams.
type ClientParams struct {
	fx.In

	Config   *Config
	Logger   logger.Logger
	Observer observability.Observer `optional:"true"`
}

// NewClientFromParams builds a Client and attaches the observer if one is provided.
func NewClientFromParams(p ClientParams) (*Client, error) {
	c, err := NewClient(p.Config, p.Logger)
	if err != nil {
		return nil, err
	}
	if p.Observer != nil {
		c.WithObserver(p.Observer)
	}
	return c, nil
}

// EmbedderParams groups the dependencies of NewEmbedder.
type EmbedderParams struct {
	fx.In

	Client *Client
	Logger logger.Logger
	Cache  Cache `optional:"true"`
}

// NewEmbedder returns the client, or a CachedEmbedder around it when a Cache
// has been provided.
func NewEmbedder(p EmbedderParams) Embedder {
	if p.Cache == nil {
		return p.Client
	}
	return NewCachedEmbedder(p.Client, p.Cache, p.Logger)
}

// RegisterEmbeddingLifecycle releases the client's resources on shutdown.
func RegisterEmbeddingLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}

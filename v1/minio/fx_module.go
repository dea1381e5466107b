package minio

import (
	"go.uber.org/fx"

	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/observability"
)

// FXModule provides *MinioClient. Requires *minio.Config and logger.Logger.
var FXModule = fx.Module("minio",
	fx.Provide(NewClientWithDI),
)

// MinioParams groups the dependencies of NewClientWithDI.
type MinioParams struct {
	fx.In

	Config   *Config
	Logger   logger.Logger
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a client and attaches the observer if one is provided.
func NewClientWithDI(p MinioParams) (*MinioClient, error) {
	c, err := NewClient(p.Config, p.Logger)
	if err != nil {
		return nil, err
	}
	if p.Observer != nil {
		c.WithObserver(p.Observer)
	}
	return c, nil
}

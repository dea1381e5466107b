// Package app composes the fx modules shared by the rag binaries.
package app

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/yang0369/rag/v1/config"
	"github.com/yang0369/rag/v1/embedding"
	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/metrics"
	"github.com/yang0369/rag/v1/minio"
	"github.com/yang0369/rag/v1/pipeline"
	"github.com/yang0369/rag/v1/qdrant"
	"github.com/yang0369/rag/v1/redis"
	"github.com/yang0369/rag/v1/tracer"
)

// Modules wires logging, tracing, metrics, Qdrant, the embedding client and
// the pipeline. Redis (embedding cache) and MinIO (dataset source) are added
// only when enabled in cfg.
func Modules(cfg *config.AppConfig) fx.Option {
	opts := []fx.Option{
		fx.Supply(
			cfg.Logger,
			cfg.Tracer,
			cfg.Metrics,
			cfg.Qdrant,
			cfg.Embedding,
			cfg.Pipeline,
		),
		fx.WithLogger(func(l *logger.LoggerClient) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Zap}
		}),
		logger.FXModule,
		tracer.FXModule,
		metrics.FXModule,
		qdrant.FXModule,
		embedding.FXModule,
		pipeline.FXModule,
	}

	if cfg.Redis.Enabled {
		opts = append(opts, fx.Supply(cfg.Redis), redis.FXModule)
	}
	if cfg.Minio.Enabled {
		opts = append(opts, fx.Supply(cfg.Minio), minio.FXModule)
	}

	return fx.Options(opts...)
}

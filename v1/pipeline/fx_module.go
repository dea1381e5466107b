package pipeline

import (
	"go.uber.org/fx"

	"github.com/yang0369/rag/v1/embedding"
	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/tracer"
	"github.com/yang0369/rag/v1/vectordb"
)

// FXModule provides *VectorDBPipeline and the Pipeline interface.
//
// Dependencies required by this module:
//   - *pipeline.Config
//   - vectordb.Service (e.g. from qdrant.FXModule)
//   - embedding.Embedder (from embedding.FXModule)
//   - *tracer.Tracer
//   - logger.Logger
var FXModule = fx.Module("pipeline",
	fx.Provide(
		NewVectorDBPipelineWithDI,
		func(p *VectorDBPipeline) Pipeline { return p },
	),
)

// Params groups the dependencies of NewVectorDBPipelineWithDI.
type Params struct {
	fx.In

	Config   *Config
	DB       vectordb.Service
	Embedder embedding.Embedder
	Tracer   *tracer.Tracer
	Logger   logger.Logger
}

// NewVectorDBPipelineWithDI builds the pipeline from injected dependencies.
func NewVectorDBPipelineWithDI(p Params) (*VectorDBPipeline, error) {
	return NewVectorDBPipeline(p.Config, p.DB, p.Embedder, p.Tracer, p.Logger)
}

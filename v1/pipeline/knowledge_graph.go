package pipeline

import "context"

// KnowledgeGraphPipeline reserves a slot for a graph-backed retrieval
// backend. Every method returns ErrNotImplemented and has no side effects.
type KnowledgeGraphPipeline struct{}

var _ Pipeline = KnowledgeGraphPipeline{}

func (KnowledgeGraphPipeline) Create(context.Context, CreateOptions) error {
	return ErrNotImplemented
}

func (KnowledgeGraphPipeline) Update(context.Context, string, []Record) ([]string, error) {
	return nil, ErrNotImplemented
}

func (KnowledgeGraphPipeline) Delete(context.Context, []string) error {
	return ErrNotImplemented
}

func (KnowledgeGraphPipeline) EmbedText(context.Context, string) ([]float32, error) {
	return nil, ErrNotImplemented
}

func (KnowledgeGraphPipeline) Search(context.Context, SearchQuery) ([]SearchResult, error) {
	return nil, ErrNotImplemented
}

package embedding

import "context"

//go:generate mockgen -source=interface.go -destination=mock_embedder.go -package=embedding

// Embedder turns text into dense vectors.
type Embedder interface {
	// EmbedDocuments returns one vector per text, in input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery returns the vector of a single text.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Model names the model producing the vectors.
	Model() string
}

// Provider is the transport contract behind Client.
type Provider interface {
	// Create generates embeddings for the given texts using the specified model.
	Create(ctx context.Context, model string, texts ...string) ([][]float32, error)
}

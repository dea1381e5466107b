package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// InferenceProvider calls an OpenAI-compatible /embeddings endpoint.
type InferenceProvider struct {
	baseURL      string
	serviceToken string
	httpClient   *http.Client
}

var _ Provider = (*InferenceProvider)(nil)

func newInferenceProvider(cfg *Config) (*InferenceProvider, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("inference: missing EMBEDDING_ENDPOINT")
	}

	// Remove trailing slash if user added it.
	base := strings.TrimRight(cfg.Endpoint, "/")

	return &InferenceProvider{
		baseURL:      base,
		serviceToken: cfg.ServiceToken,
		httpClient:   &http.Client{Timeout: cfg.HTTPTimeout},
	}, nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Create generates embeddings for the given texts using the specified model.
func (p *InferenceProvider) Create(ctx context.Context, model string, texts ...string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("inference: no texts provided")
	}
	if model == "" {
		return nil, errors.New("inference: model is required")
	}

	url := fmt.Sprintf("%s/embeddings", p.baseURL)

	var parsed embeddingResponse
	if err := p.postJSON(ctx, url, embeddingRequest{Model: model, Input: texts}, &parsed); err != nil {
		return nil, err
	}

	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("inference: expected %d embeddings, got %d", len(texts), len(parsed.Data))
	}

	// Servers may return items out of order; "index" is authoritative.
	sort.SliceStable(parsed.Data, func(i, j int) bool {
		return parsed.Data[i].Index < parsed.Data[j].Index
	})

	out := make([][]float32, len(parsed.Data))
	for i, d := range parsed.Data {
		out[i] = d.Embedding
	}

	return out, nil
}

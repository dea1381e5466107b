package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/observability"
)

// ErrUnexpectedDimension is returned when the service answers with vectors of
// a length other than Config.Dimension.
var ErrUnexpectedDimension = errors.New("embedding: unexpected vector dimension")

// Client is the public entrypoint for computing embeddings.
//
// It hides the inference endpoint and HTTP details from the application
// layer, splits large inputs into batches and sends them concurrently.
type Client struct {
	provider Provider
	cfg      Config
	logger   logger.Logger
	observer observability.Observer
}

var _ Embedder = (*Client)(nil)

// NewClient constructs a Client from Config.
// It validates the config and internally constructs the inference provider.
func NewClient(cfg *Config, log logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("embedding: invalid config: %w", err)
	}

	p, err := newInferenceProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("embedding: failed to create provider: %w", err)
	}

	return newClient(p, cfg, log), nil
}

func newClient(p Provider, cfg *Config, log logger.Logger) *Client {
	c := &Client{provider: p, cfg: *cfg, logger: log}
	if c.cfg.BatchSize <= 0 {
		c.cfg.BatchSize = 32
	}
	if c.cfg.MaxConcurrency <= 0 {
		c.cfg.MaxConcurrency = 1
	}
	return c
}

// WithObserver attaches an observer that is told about every embed call.
func (c *Client) WithObserver(obs observability.Observer) *Client {
	c.observer = obs
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// EmbedQuery embeds a single text.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	out, err := c.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedDocuments embeds texts in batches of Config.BatchSize, with at most
// Config.MaxConcurrency requests in flight. The result is in input order.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	start := time.Now()
	out := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.MaxConcurrency)

	for lo := 0; lo < len(texts); lo += c.cfg.BatchSize {
		hi := min(lo+c.cfg.BatchSize, len(texts))
		g.Go(func() error {
			vecs, err := c.provider.Create(gctx, c.cfg.Model, texts[lo:hi]...)
			if err != nil {
				return fmt.Errorf("embedding: batch [%d:%d]: %w", lo, hi, err)
			}
			if len(vecs) != hi-lo {
				return fmt.Errorf("embedding: batch [%d:%d]: expected %d vectors, got %d", lo, hi, hi-lo, len(vecs))
			}
			for i, v := range vecs {
				if c.cfg.Dimension > 0 && len(v) != c.cfg.Dimension {
					return fmt.Errorf("%w: expected %d, got %d", ErrUnexpectedDimension, c.cfg.Dimension, len(v))
				}
				if c.cfg.Normalize {
					normalize(v)
				}
				out[lo+i] = v
			}
			return nil
		})
	}

	err := g.Wait()
	c.observe(len(texts), time.Since(start), err)
	if err != nil {
		c.logger.ErrorWithContext(ctx, "embedding request failed", err, map[string]interface{}{
			"model": c.cfg.Model,
			"texts": len(texts),
		})
		return nil, err
	}
	return out, nil
}

// Close is a no-op unless the provider implements Close().
func (c *Client) Close() error {
	if closer, ok := c.provider.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

func (c *Client) observe(n int, d time.Duration, err error) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveOperation(observability.OperationContext{
		Component: "embedding",
		Operation: "embed",
		Resource:  c.cfg.Model,
		Duration:  d,
		Error:     err,
		Size:      int64(n),
	})
}

// Package embedding computes dense text embeddings through an
// OpenAI-compatible inference service.
//
// # Overview
//
// Client is the public entrypoint. It hides endpoint paths, authentication
// and batching from the application layer:
//
//	client, err := embedding.NewClient(cfg, log)
//	vectors, err := client.EmbedDocuments(ctx, []string{"a", "b", "c"})
//	query, err := client.EmbedQuery(ctx, "spatial analysis")
//
// Inputs larger than Config.BatchSize are split into batches that are sent
// concurrently, with at most Config.MaxConcurrency requests in flight. Results
// keep the input order. With Config.Normalize set, every vector is scaled to
// unit length so cosine and dot-product scores agree.
//
// # Wire format
//
// Each batch is a POST to {Endpoint}/embeddings:
//
//	{"model": "Snowflake/snowflake-arctic-embed-l", "input": ["a", "b"]}
//
// and the response is read from data[].embedding, ordered by data[].index.
// A ServiceToken, when set, is sent as "Authorization: Bearer <token>".
//
// # Caching
//
// CachedEmbedder wraps any Embedder with a byte-oriented Cache (the redis
// package in this repository implements one). Keys are derived from the model
// name and the text; values are little-endian float32 arrays.
//
// # Configuration
//
//	EMBEDDING_ENDPOINT         base URL, e.g. http://localhost:8080/v1
//	EMBEDDING_SERVICE_TOKEN    optional bearer token
//	EMBEDDING_MODEL            model name
//	EMBEDDING_HTTP_TIMEOUT     per-request timeout, e.g. 30s
//	EMBEDDING_BATCH_SIZE       texts per request
//	EMBEDDING_MAX_CONCURRENCY  parallel requests
//	EMBEDDING_NORMALIZE        unit-length output
//	EMBEDDING_DIMENSION        expected vector length, 0 disables the check
//
// # Fx
//
//	fx.New(
//	    fx.Supply(embedding.DefaultConfig()),
//	    logger.FXModule,
//	    embedding.FXModule,
//	)
package embedding

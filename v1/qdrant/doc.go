// Package qdrant implements vectordb.Service on Qdrant through the official
// Go SDK (gRPC).
//
// # Connecting
//
// NewQdrantClient dials Qdrant and runs a health check, so a wrong endpoint
// fails at startup rather than on the first query:
//
//	cfg, _ := qdrant.FromURI("http://localhost:6334")
//	client, err := qdrant.NewQdrantClient(qdrant.QdrantParams{Config: cfg, Logger: log})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	var db vectordb.Service = qdrant.NewAdapter(client.Client(), log)
//
// # Collections
//
// CreateCollection maps vectordb.Metric to a Qdrant distance (COSINE→Cosine,
// DOT→Dot, L2→Euclid, MANHATTAN→Manhattan). An HNSW index takes M and
// EfConstruct from the config. A FLAT index is created with m=0, which turns
// off graph building. Searches against it should set Exact.
//
// After the collection, the adapter creates payload indexes: keyword for the
// partition field and CollectionConfig.KeywordFields, full-text for
// TextFields, datetime for DatetimeFields.
//
// # Partitions
//
// Qdrant has no partitions. The adapter writes the partition name into each
// point's payload ("partition") and turns SearchRequest.Partitions into a
// keyword filter. HasPartition counts the points of a partition.
// CreatePartition only makes sure the partition field is indexed.
//
// # Point IDs
//
// Qdrant accepts UUIDs and unsigned integers. Decimal strings are sent as
// numeric ids. Any other id must parse as a UUID.
//
// # Range search
//
// When SearchRequest.Range is set, one bound goes to Qdrant as score_threshold
// and the adapter applies the other. See Adapter.Search.
//
// # Observability
//
// WithObserver reports every remote call (component "qdrant") to an
// observability.Observer. metrics.NewOperationObserver turns those reports
// into Prometheus metrics.
//
// # FX Module Integration
//
//	app := fx.New(
//	    logger.FXModule,
//	    qdrant.FXModule, // provides *QdrantClient, *Adapter, vectordb.Service
//	    fx.Supply(qdrant.DefaultConfig()),
//	)
//
// # Configuration
//
//	QDRANT_ENDPOINT=localhost
//	QDRANT_PORT=6334
//	QDRANT_API_KEY=...
//	QDRANT_USE_TLS=false
//	QDRANT_BATCH_SIZE=200
//	QDRANT_RANGE_SEARCH_PAGES=5
package qdrant

// Package vectordb defines the database-agnostic vector storage contract used
// by the pipeline.
//
// The Service interface covers collection management (create, exists, drop,
// describe, list), partitions, inserts, deletes and similarity search. Types
// in this package carry no backend-specific detail. v1/qdrant converts them
// to Qdrant requests.
//
// # Partitions
//
// A partition is a named subset of a collection. Every inserted point carries
// its partition name under the PartitionField payload key, and
// SearchRequest.Partitions restricts a search to the named partitions.
// Inserts that name no partition go to DefaultPartition.
//
// # Range search
//
// SearchRequest.Range keeps only results whose score lies in
// [Range.Lower, Range.Upper]. SearchRequest.Metric says how to read scores:
// for COSINE and DOT a higher score is closer, for L2 and MANHATTAN a lower
// one is.
//
//	results, err := svc.Search(ctx, vectordb.SearchRequest{
//	    CollectionName: "test",
//	    Vector:         queryVec,
//	    TopK:           3,
//	    Partitions:     []string{"vdb"},
//	    Range:          &vectordb.ScoreRange{Lower: 0.5, Upper: 0.999},
//	    Metric:         vectordb.MetricCosine,
//	})
//
// # Filters
//
// FilterSet groups conditions into Must (AND), Should (OR) and MustNot (NOT)
// clauses:
//
//	filters := vectordb.NewFilterSet(
//	    vectordb.Must(vectordb.NewText("text", "spatial analysis")),
//	    vectordb.MustNot(vectordb.NewMatch("title", "Computer Science")),
//	)
//
// # Testing
//
// MockService is a gomock mock of Service.
package vectordb

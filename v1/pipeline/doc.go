// Package pipeline ties an embedding model to a vector database.
//
// Pipeline is the backend-neutral contract: Create, Update, Delete,
// EmbedText and Search. VectorDBPipeline implements it on top of
// vectordb.Service and embedding.Embedder; KnowledgeGraphPipeline is a
// placeholder that returns ErrNotImplemented.
//
// Rows carry the payload keys text, title and created_at. Search embeds
// every query, asks the database for at most Limit hits per query inside
// [LowerBound, UpperBound], and returns them as parallel slices:
//
//	res, err := p.Search(ctx, pipeline.SearchQuery{
//	    Queries:    []string{"spatial analysis"},
//	    Partitions: []string{"vdb"},
//	    Limit:      5,
//	})
//	fmt.Println(res[0].Labels)
//
// The upper bound drops near-exact matches, typically the query text itself
// when it is already stored.
package pipeline

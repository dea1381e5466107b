package qdrant

import (
	"context"
	"errors"
	"fmt"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/yang0369/rag/v1/vectordb"
)

// Search runs each request in turn. The result for requests[i] is at index i.
func (a *Adapter) Search(ctx context.Context, requests ...vectordb.SearchRequest) ([][]vectordb.SearchResult, error) {
	if len(requests) == 0 {
		return nil, errors.New("at least one search request is required")
	}

	results := make([][]vectordb.SearchResult, 0, len(requests))
	for i, req := range requests {
		res, err := a.searchOne(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("request [%d]: %w", i, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (a *Adapter) searchOne(ctx context.Context, req vectordb.SearchRequest) (res []vectordb.SearchResult, err error) {
	start := time.Now()
	defer func() { a.observe("search", req.CollectionName, "", start, err, int64(len(res))) }()

	if err := validateSearchRequest(req); err != nil {
		return nil, err
	}
	filter, err := searchFilter(req.Partitions, req.Filters)
	if err != nil {
		return nil, err
	}

	query := &qdrant.QueryPoints{
		CollectionName: req.CollectionName,
		Query:          qdrant.NewQuery(req.Vector...),
		Filter:         filter,
		Params:         searchParams(req),
		WithPayload:    qdrant.NewWithPayload(true),
	}

	if req.Range == nil {
		query.Limit = qdrant.PtrOf(uint64(req.TopK))
		points, err := a.api.Query(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("[Qdrant] search failed: %w", err)
		}
		return parseScoredPoints(req.CollectionName, points)
	}
	return a.rangeSearch(ctx, query, req)
}

// rangeSearch keeps only hits whose score lies in req.Range.
//
// One bound is sent to the server as the score threshold: the lower bound for
// similarity metrics, the upper bound for distances. The other bound is
// applied here. Hits it rejects sit at the front of the ranking, so further
// pages are read until TopK hits are collected, the results run out, or the
// page budget is spent.
func (a *Adapter) rangeSearch(ctx context.Context, query *qdrant.QueryPoints, req vectordb.SearchRequest) ([]vectordb.SearchResult, error) {
	metric := req.Metric
	if metric == "" {
		metric = vectordb.MetricCosine
	}
	rng := *req.Range
	if metric.HigherIsBetter() {
		query.ScoreThreshold = qdrant.PtrOf(rng.Lower)
	} else {
		query.ScoreThreshold = qdrant.PtrOf(rng.Upper)
	}

	pageSize := uint64(req.TopK)
	query.Limit = qdrant.PtrOf(pageSize)

	results := make([]vectordb.SearchResult, 0, req.TopK)
	for page := 0; page < a.rangePages; page++ {
		query.Offset = qdrant.PtrOf(uint64(page) * pageSize)

		points, err := a.api.Query(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("[Qdrant] range search failed: %w", err)
		}
		parsed, err := parseScoredPoints(req.CollectionName, points)
		if err != nil {
			return nil, err
		}

		for _, r := range parsed {
			if !rng.Contains(r.Score) {
				continue
			}
			results = append(results, r)
			if len(results) == req.TopK {
				return results, nil
			}
		}
		if uint64(len(points)) < pageSize {
			break
		}
	}
	return results, nil
}

func searchParams(req vectordb.SearchRequest) *qdrant.SearchParams {
	if req.HnswEf == 0 && !req.Exact {
		return nil
	}
	params := &qdrant.SearchParams{}
	if req.HnswEf > 0 {
		params.HnswEf = qdrant.PtrOf(req.HnswEf)
	}
	if req.Exact {
		params.Exact = qdrant.PtrOf(true)
	}
	return params
}

func validateSearchRequest(req vectordb.SearchRequest) error {
	if req.CollectionName == "" {
		return vectordb.ErrEmptyCollectionName
	}
	if len(req.Vector) == 0 {
		return errors.New("vector cannot be empty")
	}
	if req.TopK <= 0 {
		return errors.New("topK must be greater than 0")
	}
	if req.Range != nil {
		if err := req.Range.Validate(); err != nil {
			return err
		}
	}
	return nil
}

package usecase

import (
	"context"
	"fmt"

	"semvec/internal/domain"
	"semvec/internal/port"
)

// SearchUseCase embeds a query and ranks stored items against it.
type SearchUseCase struct {
	embedder port.Embedder
	store    port.VectorStore
}

// MetricResults holds one metric's ranking.
type MetricResults struct {
	Metric  domain.Metric
	Results []domain.RankedResult
}

func NewSearchUseCase(embedder port.Embedder, store port.VectorStore) *SearchUseCase {
	return &SearchUseCase{embedder: embedder, store: store}
}

// Search ranks the stored items against the query text under one metric.
func (u *SearchUseCase) Search(ctx context.Context, query string, metric domain.Metric, k int) ([]domain.RankedResult, error) {
	vec, err := u.embedQuery(query)
	if err != nil {
		return nil, err
	}

	results, err := u.store.QueryNearest(ctx, vec, metric, k)
	if err != nil {
		return nil, fmt.Errorf("ranking under %s: %w", metric, err)
	}
	return results, nil
}

// SearchAll embeds the query once and ranks it under each metric.
func (u *SearchUseCase) SearchAll(ctx context.Context, query string, metrics []domain.Metric, k int) ([]MetricResults, error) {
	vec, err := u.embedQuery(query)
	if err != nil {
		return nil, err
	}

	out := make([]MetricResults, 0, len(metrics))
	for _, m := range metrics {
		results, err := u.store.QueryNearest(ctx, vec, m, k)
		if err != nil {
			return nil, fmt.Errorf("ranking under %s: %w", m, err)
		}
		out = append(out, MetricResults{Metric: m, Results: results})
	}
	return out, nil
}

func (u *SearchUseCase) embedQuery(query string) ([]float32, error) {
	vecs, err := u.embedder.Embed([]string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vecs))
	}
	return vecs[0], nil
}

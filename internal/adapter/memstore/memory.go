package memstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"semvec/internal/domain"
	"semvec/internal/port"
)

// Compile-time interface check.
var _ port.VectorStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory VectorStore with brute-force ranking. It backs
// tests and throwaway runs where no database file is wanted.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	nextID    int64
	items     []domain.Item
}

func NewMemoryStore(dimension int) *MemoryStore {
	return &MemoryStore{dimension: dimension, nextID: 1}
}

func (s *MemoryStore) EnsureSchema(ctx context.Context) error {
	if s.dimension <= 0 {
		return fmt.Errorf("invalid embedding dimension: %d", s.dimension)
	}
	return nil
}

func (s *MemoryStore) InsertMany(ctx context.Context, texts []string, vectors [][]float32) (int, error) {
	if len(texts) != len(vectors) {
		return 0, fmt.Errorf("texts/vectors length mismatch: %d vs %d", len(texts), len(vectors))
	}

	// Validate the whole batch before touching state.
	for i, vec := range vectors {
		if len(vec) != s.dimension {
			return 0, fmt.Errorf("row %d: vector dimension mismatch: expected %d, got %d", i, s.dimension, len(vec))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range texts {
		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		s.items = append(s.items, domain.Item{
			ID:        s.nextID,
			Text:      texts[i],
			Embedding: vec,
		})
		s.nextID++
	}
	return len(texts), nil
}

func (s *MemoryStore) QueryNearest(ctx context.Context, query []float32, metric domain.Metric, k int) ([]domain.RankedResult, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", s.dimension, len(query))
	}
	if !metric.Valid() {
		return nil, fmt.Errorf("unsupported metric: %s", metric)
	}
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.RankedResult, 0, len(s.items))
	for _, item := range s.items {
		var d float64
		switch metric {
		case domain.MetricEuclidean:
			d = l2Distance(query, item.Embedding)
		case domain.MetricCosine:
			d = 1 - cosineSimilarity(query, item.Embedding)
		}
		results = append(results, domain.RankedResult{
			ItemID:   item.ID,
			Text:     item.Text,
			Distance: d,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ItemID < results[j].ItemID
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

package port

import (
	"context"

	"semvec/internal/domain"
)

// VectorStore persists (text, embedding) items and ranks them by distance.
type VectorStore interface {
	// EnsureSchema idempotently creates the items table and the vector
	// capability it depends on. The embedding dimension is fixed at
	// schema-creation time.
	EnsureSchema(ctx context.Context) error

	// InsertMany appends all pairs as new items in one atomic batch and
	// returns the number inserted. Any per-row failure (such as a
	// dimension mismatch) aborts the whole batch.
	InsertMany(ctx context.Context, texts []string, vectors [][]float32) (int, error)

	// QueryNearest returns at most k items ordered ascending by distance
	// under the given metric, ties broken by ascending item id.
	QueryNearest(ctx context.Context, query []float32, metric domain.Metric, k int) ([]domain.RankedResult, error)

	// Count returns the number of stored items.
	Count(ctx context.Context) (int, error)

	Close() error
}

package usecase

import (
	"context"
	"fmt"

	"semvec/internal/port"
)

// IngestUseCase embeds a corpus and persists it in the vector store.
type IngestUseCase struct {
	embedder  port.Embedder
	store     port.VectorStore
	batchSize int
}

// IngestResult summarizes a completed ingestion.
type IngestResult struct {
	Inserted int
	Total    int // rows in the store after the insert
}

// ProgressFunc reports how many texts have been embedded so far.
type ProgressFunc func(done, total int)

func NewIngestUseCase(embedder port.Embedder, store port.VectorStore, batchSize int) *IngestUseCase {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &IngestUseCase{
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
	}
}

// Ingest embeds texts in order and appends them to the store as one atomic
// batch. The model's output width is checked against the store schema before
// anything is written.
func (u *IngestUseCase) Ingest(ctx context.Context, texts []string, progress ProgressFunc) (IngestResult, error) {
	if err := u.store.EnsureSchema(ctx); err != nil {
		return IngestResult{}, fmt.Errorf("ensuring schema: %w", err)
	}

	if len(texts) == 0 {
		total, err := u.store.Count(ctx)
		if err != nil {
			return IngestResult{}, err
		}
		return IngestResult{Total: total}, nil
	}

	vectors := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += u.batchSize {
		end := i + u.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		vs, err := u.embedder.Embed(texts[i:end])
		if err != nil {
			return IngestResult{}, fmt.Errorf("embedding corpus: %w", err)
		}
		if len(vs) != end-i {
			return IngestResult{}, fmt.Errorf("embedder returned %d vectors for %d texts", len(vs), end-i)
		}
		vectors = append(vectors, vs...)

		if progress != nil {
			progress(end, len(texts))
		}
	}

	// Fail before the insert when the model's width disagrees with the
	// configured dimension.
	if len(vectors[0]) != u.embedder.Dimension() {
		return IngestResult{}, fmt.Errorf("model produced %d-dimensional vectors, configured dimension is %d",
			len(vectors[0]), u.embedder.Dimension())
	}

	inserted, err := u.store.InsertMany(ctx, texts, vectors)
	if err != nil {
		return IngestResult{}, fmt.Errorf("inserting items: %w", err)
	}

	total, err := u.store.Count(ctx)
	if err != nil {
		return IngestResult{}, err
	}

	return IngestResult{Inserted: inserted, Total: total}, nil
}

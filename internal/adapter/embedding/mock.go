package embedding

// MockEmbedder produces deterministic embeddings derived from the input
// runes. Useful for tests and offline runs.
type MockEmbedder struct {
	dimension int
	normalize bool
}

func NewMockEmbedder(dimension int, normalize bool) *MockEmbedder {
	return &MockEmbedder{dimension: dimension, normalize: normalize}
}

func (e *MockEmbedder) Embed(texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i := range texts {
		embeddings[i] = make([]float32, e.dimension)

		for j, r := range texts[i] {
			if j < e.dimension {
				embeddings[i][j] = float32(r) / 1000.0
			}
		}
		// Guarantee a nonzero vector so normalization is well defined.
		if len(texts[i]) == 0 && e.dimension > 0 {
			embeddings[i][0] = 1
		}
		if e.normalize {
			normalizeVector(embeddings[i])
		}
	}
	return embeddings, nil
}

func (e *MockEmbedder) Dimension() int {
	return e.dimension
}

func (e *MockEmbedder) ModelName() string {
	return "mock"
}

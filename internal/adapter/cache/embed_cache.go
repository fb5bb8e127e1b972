package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"

	"go.etcd.io/bbolt"

	"semvec/internal/port"
)

var bucketEmbeddings = []byte("embeddings")

// EmbeddingCache is a persistent text->vector cache wrapped around another
// Embedder. Repeated ingestion or querying of the same text skips the model
// round trip. Entries are keyed by model name and text, so switching models
// never serves stale vectors.
type EmbeddingCache struct {
	db    *bbolt.DB
	inner port.Embedder
}

// NewEmbeddingCache wraps inner with a cache stored in db.
func NewEmbeddingCache(db *bbolt.DB, inner port.Embedder) (*EmbeddingCache, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEmbeddings)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings bucket: %w", err)
	}
	return &EmbeddingCache{db: db, inner: inner}, nil
}

func (c *EmbeddingCache) cacheKey(text string) []byte {
	h := sha256.New()
	h.Write([]byte(c.inner.ModelName()))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return h.Sum(nil)
}

// Embed returns cached vectors where available and delegates the rest to the
// wrapped embedder, preserving input order.
func (c *EmbeddingCache) Embed(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmbeddings)
		for i, text := range texts {
			data := b.Get(c.cacheKey(text))
			if data == nil || len(data) != c.inner.Dimension()*4 {
				missIdx = append(missIdx, i)
				missTexts = append(missTexts, text)
				continue
			}
			results[i] = decodeVector(data)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding cache: %w", err)
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	fresh, err := c.inner.Embed(missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(fresh), len(missTexts))
	}

	err = c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmbeddings)
		for j, i := range missIdx {
			results[i] = fresh[j]
			if err := b.Put(c.cacheKey(texts[i]), encodeVector(fresh[j])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write embedding cache: %w", err)
	}

	return results, nil
}

// Dimension returns the wrapped embedder's dimension.
func (c *EmbeddingCache) Dimension() int {
	return c.inner.Dimension()
}

// ModelName returns the wrapped embedder's model name.
func (c *EmbeddingCache) ModelName() string {
	return c.inner.ModelName()
}

// encodeVector packs a vector as little-endian IEEE 754 float32 values.
func encodeVector(vec []float32) []byte {
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func decodeVector(b []byte) []float32 {
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec
}

package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"semvec/internal/domain"
)

func openTestStore(t *testing.T, dimension int) *SQLiteVectorStore {
	t.Helper()
	s, err := NewSQLiteVectorStore(filepath.Join(t.TempDir(), "items.db"), dimension)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatal(err)
	}
	return s
}

func unit(vals ...float32) []float32 {
	var sum float64
	for _, v := range vals {
		sum += float64(v) * float64(v)
	}
	n := math.Sqrt(sum)
	out := make([]float32, len(vals))
	for i, v := range vals {
		out[i] = float32(float64(v) / n)
	}
	return out
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	s := openTestStore(t, 3)

	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Errorf("second EnsureSchema failed: %v", err)
	}
}

func TestEnsureSchema_DimensionPinned(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "items.db")

	s, err := NewSQLiteVectorStore(path, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := NewSQLiteVectorStore(path, 4)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	if err := s2.EnsureSchema(context.Background()); err == nil {
		t.Error("expected error reopening store with a different dimension")
	}
}

func TestInsertMany_AtomicOnDimensionMismatch(t *testing.T) {
	s := openTestStore(t, 3)
	ctx := context.Background()

	texts := []string{"ok", "bad", "ok too"}
	vectors := [][]float32{
		{1, 0, 0},
		{1, 0}, // wrong dimension
		{0, 1, 0},
	}

	if _, err := s.InsertMany(ctx, texts, vectors); err == nil {
		t.Fatal("expected batch to fail")
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows after failed batch, got %d", n)
	}
}

func TestInsertMany_AssignsSequentialIDs(t *testing.T) {
	s := openTestStore(t, 2)
	ctx := context.Background()

	count, err := s.InsertMany(ctx, []string{"a", "b"}, [][]float32{{1, 0}, {0, 1}})
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("expected 2 inserted, got %d", count)
	}

	results, err := s.QueryNearest(ctx, []float32{1, 0}, domain.MetricEuclidean, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ItemID != 1 || results[0].Text != "a" {
		t.Errorf("expected item 1 (a) nearest, got %d (%s)", results[0].ItemID, results[0].Text)
	}
}

func TestQueryNearest_AscendingWithIDTieBreak(t *testing.T) {
	s := openTestStore(t, 2)
	ctx := context.Background()

	// Items 1 and 2 are equidistant from the query; 3 is farther away.
	_, err := s.InsertMany(ctx,
		[]string{"tie a", "tie b", "far"},
		[][]float32{{0, 1}, {0, -1}, {-1, 0}},
	)
	if err != nil {
		t.Fatal(err)
	}

	results, err := s.QueryNearest(ctx, []float32{1, 0}, domain.MetricEuclidean, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if results[0].ItemID != 1 || results[1].ItemID != 2 {
		t.Errorf("expected tie broken by id: got %d then %d", results[0].ItemID, results[1].ItemID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Distance < results[i-1].Distance {
			t.Errorf("distances not ascending at %d: %f < %f", i, results[i].Distance, results[i-1].Distance)
		}
	}
	for _, r := range results {
		if r.Distance < 0 {
			t.Errorf("negative distance for item %d: %f", r.ItemID, r.Distance)
		}
	}
}

func TestQueryNearest_MetricOrderingEquivalence(t *testing.T) {
	s := openTestStore(t, 3)
	ctx := context.Background()

	// Unit-normalized corpus: euclidean and cosine rankings must agree.
	texts := []string{"a", "b", "c", "d"}
	vectors := [][]float32{
		unit(1, 0.2, 0),
		unit(0, 1, 0.5),
		unit(0.7, 0.7, 0),
		unit(0.1, 0.1, 1),
	}
	if _, err := s.InsertMany(ctx, texts, vectors); err != nil {
		t.Fatal(err)
	}

	query := unit(0.9, 0.4, 0.1)

	for k := 1; k <= len(texts); k++ {
		l2, err := s.QueryNearest(ctx, query, domain.MetricEuclidean, k)
		if err != nil {
			t.Fatal(err)
		}
		cos, err := s.QueryNearest(ctx, query, domain.MetricCosine, k)
		if err != nil {
			t.Fatal(err)
		}

		if len(l2) != len(cos) {
			t.Fatalf("k=%d: result count mismatch: %d vs %d", k, len(l2), len(cos))
		}
		for i := range l2 {
			if l2[i].ItemID != cos[i].ItemID {
				t.Errorf("k=%d position %d: euclidean ranked %d, cosine ranked %d",
					k, i, l2[i].ItemID, cos[i].ItemID)
			}
		}
	}
}

func TestQueryNearest_UnsupportedMetric(t *testing.T) {
	s := openTestStore(t, 2)

	_, err := s.QueryNearest(context.Background(), []float32{1, 0}, domain.Metric("manhattan"), 1)
	if err == nil {
		t.Error("expected error for unsupported metric")
	}
}

func TestQueryNearest_DimensionMismatch(t *testing.T) {
	s := openTestStore(t, 3)

	_, err := s.QueryNearest(context.Background(), []float32{1, 0}, domain.MetricEuclidean, 1)
	if err == nil {
		t.Error("expected error for mismatched query dimension")
	}
}

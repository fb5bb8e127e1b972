package modelcache

import (
	"os"
	"path/filepath"
	"testing"

	"semvec/internal/domain"
)

func TestCandidates_OwnerName(t *testing.T) {
	l := NewLocator("/cache")

	got := l.Candidates("BAAI/bge-m3")
	want := []string{
		filepath.Join("/cache", "BAAI", "bge-m3"),
		filepath.Join("/cache", "BAAI-bge-m3"),
		filepath.Join("/cache", "BAAI_bge-m3"),
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestCandidates_NonStandardID(t *testing.T) {
	l := NewLocator("/cache")

	got := l.Candidates("bge-m3")
	if got[0] != filepath.Join("/cache", "bge-m3") {
		t.Errorf("expected verbatim candidate first, got %s", got[0])
	}
}

func TestLocate_Miss(t *testing.T) {
	l := NewLocator(filepath.Join(t.TempDir(), "empty"))

	if path, ok := l.Locate("BAAI/bge-m3"); ok {
		t.Errorf("expected cache miss, got %s", path)
	}
}

func TestLocate_FirstExistingWins(t *testing.T) {
	base := t.TempDir()
	l := NewLocator(base)

	// Only the dash-variant directory exists.
	dash := filepath.Join(base, "BAAI-bge-m3")
	if err := os.MkdirAll(dash, 0755); err != nil {
		t.Fatal(err)
	}

	path, ok := l.Locate("BAAI/bge-m3")
	if !ok {
		t.Fatal("expected a hit")
	}
	if path != dash {
		t.Errorf("expected %s, got %s", dash, path)
	}

	// The owner/name candidate takes precedence once it exists.
	canonical := filepath.Join(base, "BAAI", "bge-m3")
	if err := os.MkdirAll(canonical, 0755); err != nil {
		t.Fatal(err)
	}

	path, ok = l.Locate("BAAI/bge-m3")
	if !ok {
		t.Fatal("expected a hit")
	}
	if path != canonical {
		t.Errorf("expected %s, got %s", canonical, path)
	}
}

func TestLocate_Deterministic(t *testing.T) {
	base := t.TempDir()
	canonical := filepath.Join(base, "BAAI", "bge-m3")
	if err := os.MkdirAll(canonical, 0755); err != nil {
		t.Fatal(err)
	}

	l := NewLocator(base)
	for i := 0; i < 3; i++ {
		path, ok := l.Locate("BAAI/bge-m3")
		if !ok || path != canonical {
			t.Fatalf("call %d: expected %s, got %s (ok=%v)", i, canonical, path, ok)
		}
	}
}

func TestResolve(t *testing.T) {
	base := t.TempDir()
	l := NewLocator(base)

	src := l.Resolve("BAAI/bge-m3")
	if src.Kind != domain.SourceRemoteID || src.Value != "BAAI/bge-m3" {
		t.Errorf("expected remote fallback, got %+v", src)
	}

	canonical := filepath.Join(base, "BAAI", "bge-m3")
	if err := os.MkdirAll(canonical, 0755); err != nil {
		t.Fatal(err)
	}

	src = l.Resolve("BAAI/bge-m3")
	if src.Kind != domain.SourceLocalPath || src.Value != canonical {
		t.Errorf("expected local path, got %+v", src)
	}
}

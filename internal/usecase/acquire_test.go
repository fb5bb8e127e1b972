package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"semvec/internal/adapter/modelcache"
)

// fakeFetcher counts calls and materializes a snapshot directory on Fetch.
type fakeFetcher struct {
	available    bool
	installErr   error
	fetchErr     error
	installCalls int
	fetchCalls   int
}

func (f *fakeFetcher) Available() bool { return f.available }

func (f *fakeFetcher) Install(ctx context.Context) error {
	f.installCalls++
	if f.installErr != nil {
		return f.installErr
	}
	f.available = true
	return nil
}

func (f *fakeFetcher) Fetch(ctx context.Context, modelID, cacheDir string) (string, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return "", f.fetchErr
	}
	path := modelcache.SnapshotPath(cacheDir, modelID)
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", err
	}
	return path, nil
}

func TestDownload_Idempotent(t *testing.T) {
	cacheDir := t.TempDir()
	fetcher := &fakeFetcher{available: true}
	u := NewAcquireUseCase(modelcache.NewLocator(cacheDir), fetcher, cacheDir, false)
	ctx := context.Background()

	first, err := u.Download(ctx, "BAAI/bge-m3")
	if err != nil {
		t.Fatal(err)
	}
	if fetcher.fetchCalls != 1 {
		t.Fatalf("expected 1 fetch, got %d", fetcher.fetchCalls)
	}

	second, err := u.Download(ctx, "BAAI/bge-m3")
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Errorf("expected same path, got %s then %s", first, second)
	}
	if fetcher.fetchCalls != 1 {
		t.Errorf("expected no second fetch, got %d", fetcher.fetchCalls)
	}
}

func TestDownload_CacheHitSkipsFetcherEntirely(t *testing.T) {
	cacheDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(cacheDir, "BAAI", "bge-m3"), 0755); err != nil {
		t.Fatal(err)
	}

	// Fetcher is unavailable, but a cached model never needs it.
	fetcher := &fakeFetcher{available: false}
	u := NewAcquireUseCase(modelcache.NewLocator(cacheDir), fetcher, cacheDir, false)

	path, err := u.Download(context.Background(), "BAAI/bge-m3")
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(cacheDir, "BAAI", "bge-m3") {
		t.Errorf("unexpected path: %s", path)
	}
	if fetcher.fetchCalls != 0 || fetcher.installCalls != 0 {
		t.Errorf("expected fetcher untouched, got fetch=%d install=%d", fetcher.fetchCalls, fetcher.installCalls)
	}
}

func TestDownload_UnavailableWithoutAutoInstall(t *testing.T) {
	cacheDir := t.TempDir()
	fetcher := &fakeFetcher{available: false}
	u := NewAcquireUseCase(modelcache.NewLocator(cacheDir), fetcher, cacheDir, false)

	_, err := u.Download(context.Background(), "BAAI/bge-m3")
	if !errors.Is(err, ErrFetcherUnavailable) {
		t.Errorf("expected ErrFetcherUnavailable, got %v", err)
	}
	if fetcher.installCalls != 0 {
		t.Errorf("expected no install attempt without opt-in, got %d", fetcher.installCalls)
	}
}

func TestDownload_AutoInstallProvisionsFetcher(t *testing.T) {
	cacheDir := t.TempDir()
	fetcher := &fakeFetcher{available: false}
	u := NewAcquireUseCase(modelcache.NewLocator(cacheDir), fetcher, cacheDir, true)

	path, err := u.Download(context.Background(), "BAAI/bge-m3")
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Error("expected a snapshot path")
	}
	if fetcher.installCalls != 1 {
		t.Errorf("expected 1 install attempt, got %d", fetcher.installCalls)
	}
}

func TestDownload_InstallFailure(t *testing.T) {
	cacheDir := t.TempDir()
	fetcher := &fakeFetcher{available: false, installErr: errors.New("pip exploded")}
	u := NewAcquireUseCase(modelcache.NewLocator(cacheDir), fetcher, cacheDir, true)

	_, err := u.Download(context.Background(), "BAAI/bge-m3")
	if !errors.Is(err, ErrFetcherUnavailable) {
		t.Errorf("expected ErrFetcherUnavailable, got %v", err)
	}
}

func TestDownload_FetchFailure(t *testing.T) {
	cacheDir := t.TempDir()
	fetcher := &fakeFetcher{available: true, fetchErr: errors.New("network down")}
	u := NewAcquireUseCase(modelcache.NewLocator(cacheDir), fetcher, cacheDir, false)

	_, err := u.Download(context.Background(), "BAAI/bge-m3")
	if err == nil {
		t.Fatal("expected fetch error to propagate")
	}
	if errors.Is(err, ErrFetcherUnavailable) {
		t.Error("fetch failure must be distinct from unavailability")
	}
}

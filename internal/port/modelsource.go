package port

import (
	"context"

	"semvec/internal/domain"
)

// ModelLocator checks the local model cache.
type ModelLocator interface {
	// Locate returns the cached snapshot path for the model, if any.
	// A miss is reported as ok=false, never as an error.
	Locate(modelID string) (path string, ok bool)

	// Resolve decides between local-path loading and online-identifier
	// loading for the model.
	Resolve(modelID string) domain.ModelSource
}

// ModelFetcher downloads model snapshots into the local cache.
type ModelFetcher interface {
	// Available reports whether the download mechanism is usable.
	Available() bool

	// Install attempts to provision the download mechanism.
	Install(ctx context.Context) error

	// Fetch downloads the model's complete artifact set into cacheDir and
	// returns the resulting snapshot path.
	Fetch(ctx context.Context, modelID, cacheDir string) (string, error)
}

package usecase

import (
	"context"
	"errors"
	"fmt"

	"semvec/internal/port"
)

// ErrFetcherUnavailable signals that the download tool is missing and was
// not (or could not be) provisioned. The download command maps it to a
// distinct exit code with remediation guidance.
var ErrFetcherUnavailable = errors.New("model download tool unavailable")

// AcquireUseCase resolves a model to a local snapshot, downloading it once
// when it is not cached yet.
type AcquireUseCase struct {
	locator     port.ModelLocator
	fetcher     port.ModelFetcher
	cacheDir    string
	autoInstall bool
}

func NewAcquireUseCase(locator port.ModelLocator, fetcher port.ModelFetcher, cacheDir string, autoInstall bool) *AcquireUseCase {
	return &AcquireUseCase{
		locator:     locator,
		fetcher:     fetcher,
		cacheDir:    cacheDir,
		autoInstall: autoInstall,
	}
}

// EnsureAvailable reports whether the download mechanism is usable,
// attempting to provision it first when auto-install is enabled. A false
// return is a recoverable condition for the caller, not a fault.
func (u *AcquireUseCase) EnsureAvailable(ctx context.Context) bool {
	if u.fetcher.Available() {
		return true
	}
	if !u.autoInstall {
		return false
	}
	if err := u.fetcher.Install(ctx); err != nil {
		return false
	}
	return u.fetcher.Available()
}

// Download returns the local snapshot path for the model. An already-cached
// model is returned as-is with no fetch; otherwise the artifact set is
// downloaded into the cache directory.
func (u *AcquireUseCase) Download(ctx context.Context, modelID string) (string, error) {
	if path, ok := u.locator.Locate(modelID); ok {
		return path, nil
	}

	if !u.EnsureAvailable(ctx) {
		return "", ErrFetcherUnavailable
	}

	path, err := u.fetcher.Fetch(ctx, modelID, u.cacheDir)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", modelID, err)
	}
	return path, nil
}

package modelscope

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"semvec/internal/adapter/modelcache"
	"semvec/internal/port"
)

// Compile-time interface check.
var _ port.ModelFetcher = (*CLIFetcher)(nil)

// CLIFetcher downloads model snapshots by shelling out to the modelscope
// command-line tool. The underlying tool skips files that are already fully
// cached, which keeps Fetch idempotent.
type CLIFetcher struct {
	Binary string   // modelscope executable
	Python string   // interpreter used for pip install
	Env    []string // extra environment for subprocesses
	Stdout io.Writer
	Stderr io.Writer
}

// NewCLIFetcher creates a fetcher with default tool names. CUDA device
// probing is disabled for the subprocess; a download never needs a GPU and
// the probe only produces warnings.
func NewCLIFetcher(python string) *CLIFetcher {
	if python == "" {
		python = "python3"
	}
	return &CLIFetcher{
		Binary: "modelscope",
		Python: python,
		Env:    []string{"CUDA_VISIBLE_DEVICES=-1"},
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Available reports whether the modelscope tool is on PATH.
func (f *CLIFetcher) Available() bool {
	_, err := exec.LookPath(f.Binary)
	return err == nil
}

// Install provisions the modelscope tool via pip.
func (f *CLIFetcher) Install(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, f.Python, "-m", "pip", "install", "--upgrade", "modelscope")
	cmd.Stdout = f.Stdout
	cmd.Stderr = f.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pip install modelscope: %w", err)
	}
	return nil
}

// Fetch downloads the model's artifact set into cacheDir and returns the
// snapshot path. Already-cached artifacts are not transferred again.
func (f *CLIFetcher) Fetch(ctx context.Context, modelID, cacheDir string) (string, error) {
	args := []string{"download", "--model", modelID}
	if cacheDir != "" {
		args = append(args, "--cache_dir", cacheDir)
	}

	cmd := exec.CommandContext(ctx, f.Binary, args...)
	cmd.Env = append(os.Environ(), f.Env...)
	cmd.Stdout = f.Stdout
	cmd.Stderr = f.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("modelscope download %s: %w", modelID, err)
	}

	base := cacheDir
	if base == "" {
		base = modelcache.DefaultBaseDir()
	}
	path := modelcache.SnapshotPath(base, modelID)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("download finished but snapshot missing at %s: %w", path, err)
	}
	return path, nil
}

package modelcache

import (
	"os"
	"path/filepath"
	"strings"

	"semvec/internal/domain"
	"semvec/internal/port"
)

// Compile-time interface check.
var _ port.ModelLocator = (*Locator)(nil)

// Locator resolves model identifiers against the local ModelScope snapshot
// cache using its directory-naming convention.
type Locator struct {
	baseDir string
}

// NewLocator creates a locator rooted at baseDir. An empty baseDir falls back
// to the default cache root under the user's home directory.
func NewLocator(baseDir string) *Locator {
	if baseDir == "" {
		baseDir = DefaultBaseDir()
	}
	return &Locator{baseDir: baseDir}
}

// DefaultBaseDir returns the conventional ModelScope cache root,
// ~/.cache/modelscope/hub/models.
func DefaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cache", "modelscope", "hub", "models")
	}
	return filepath.Join(home, ".cache", "modelscope", "hub", "models")
}

// Candidates returns the cache paths a model identifier may live under, in
// the order they are checked. Identifiers of the form owner/name map to
// base/owner/name; other identifiers are used verbatim. Variants with the
// slash replaced by "-" or "_" are always tried last.
func (l *Locator) Candidates(modelID string) []string {
	var out []string

	parts := strings.Split(modelID, "/")
	if len(parts) == 2 {
		out = append(out, filepath.Join(l.baseDir, parts[0], parts[1]))
	} else {
		out = append(out, filepath.Join(l.baseDir, modelID))
	}

	out = append(out,
		filepath.Join(l.baseDir, strings.ReplaceAll(modelID, "/", "-")),
		filepath.Join(l.baseDir, strings.ReplaceAll(modelID, "/", "_")),
	)
	return out
}

// Locate returns the first existing candidate path for the model. A miss is
// the normal "not cached" signal, not an error.
func (l *Locator) Locate(modelID string) (string, bool) {
	for _, p := range l.Candidates(modelID) {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// Resolve decides the model source: the cached snapshot path when present,
// otherwise the identifier itself for online loading.
func (l *Locator) Resolve(modelID string) domain.ModelSource {
	if path, ok := l.Locate(modelID); ok {
		return domain.ModelSource{Kind: domain.SourceLocalPath, Value: path}
	}
	return domain.ModelSource{Kind: domain.SourceRemoteID, Value: modelID}
}

// SnapshotPath returns the conventional snapshot path for a model under
// baseDir, without checking existence.
func SnapshotPath(baseDir, modelID string) string {
	parts := strings.Split(modelID, "/")
	if len(parts) == 2 {
		return filepath.Join(baseDir, parts[0], parts[1])
	}
	return filepath.Join(baseDir, modelID)
}

package cli

import (
	"fmt"

	"go.etcd.io/bbolt"

	"semvec/config"
	"semvec/internal/adapter/cache"
	"semvec/internal/adapter/embedding"
	"semvec/internal/adapter/modelcache"
	"semvec/internal/adapter/store"
	"semvec/internal/port"
)

// buildEmbedder resolves the configured model to a source and constructs the
// embedding provider, optionally wrapped with the persistent embedding cache.
// The returned cleanup closes the cache database when one was opened.
func buildEmbedder(cfg *config.Config, rootDir string) (port.Embedder, func(), error) {
	locator := modelcache.NewLocator(cfg.Model.CacheDir)
	source := locator.Resolve(cfg.Model.ID)
	if source.IsLocal() {
		fmt.Printf("Using local model snapshot: %s\n", source.Value)
	} else {
		fmt.Printf("No local snapshot found, using online model id: %s\n", source.Value)
	}

	opts := embedding.Options{
		BaseURL:   cfg.Embedding.BaseURL,
		APIKeyEnv: cfg.Embedding.APIKeyEnv,
		Dimension: cfg.Embedding.Dimension,
		Normalize: cfg.Embedding.Normalize,
		BatchSize: cfg.Embedding.BatchSize,
	}

	var embedder port.Embedder
	var err error
	switch cfg.Embedding.Provider {
	case "ollama":
		embedder, err = embedding.NewOllamaEmbedder(source, opts)
	case "openai":
		embedder, err = embedding.NewOpenAIEmbedder(source, opts)
	case "mock":
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimension, cfg.Embedding.Normalize)
	default:
		return nil, nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	cleanup := func() {}
	if cfg.Embedding.Cache {
		if err := config.EnsureDataDir(rootDir); err != nil {
			return nil, nil, fmt.Errorf("failed to create .semvec directory: %w", err)
		}
		db, err := bbolt.Open(config.EmbedCacheDBPath(rootDir), 0600, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open embedding cache: %w", err)
		}
		cached, err := cache.NewEmbeddingCache(db, embedder)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		embedder = cached
		cleanup = func() { _ = db.Close() }
	}

	return embedder, cleanup, nil
}

// openStore opens the SQLite vector store configured for this run.
func openStore(cfg *config.Config, rootDir string) (port.VectorStore, error) {
	path := cfg.Store.Path
	if path == "" {
		if err := config.EnsureDataDir(rootDir); err != nil {
			return nil, fmt.Errorf("failed to create .semvec directory: %w", err)
		}
		path = config.StoreDBPath(rootDir)
	}

	st, err := store.NewSQLiteVectorStore(path, cfg.Embedding.Dimension)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}
	return st, nil
}

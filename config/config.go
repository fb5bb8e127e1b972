package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the semvec tool.
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Store     StoreConfig     `yaml:"store"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Download  DownloadConfig  `yaml:"download"`
}

// ModelConfig names the embedding model and its local cache.
type ModelConfig struct {
	ID       string `yaml:"id"`        // e.g., "BAAI/bge-m3"
	CacheDir string `yaml:"cache_dir"` // override for the snapshot cache root
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "ollama", "openai", "mock"
	BaseURL   string `yaml:"base_url"`    // OpenAI-compatible endpoint
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	Dimension int    `yaml:"dimension"`
	Normalize bool   `yaml:"normalize"`
	BatchSize int    `yaml:"batch_size"`
	Cache     bool   `yaml:"cache"` // persist text->vector results locally
}

// StoreConfig holds vector store configuration.
type StoreConfig struct {
	Path string `yaml:"path"` // SQLite database file
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK int `yaml:"top_k"`
}

// DownloadConfig holds model download configuration.
type DownloadConfig struct {
	AutoInstall bool   `yaml:"auto_install"` // opt-in: pip install modelscope when missing
	Python      string `yaml:"python"`       // interpreter used for the install
}

// DefaultConfig returns the default configuration. The defaults match a local
// development setup: an Ollama-compatible endpoint on localhost and databases
// under .semvec/ in the working directory.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			ID: "BAAI/bge-m3",
		},
		Embedding: EmbeddingConfig{
			Provider:  "ollama",
			BaseURL:   "http://localhost:11434/v1",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1024,
			Normalize: true,
			BatchSize: 64,
			Cache:     true,
		},
		Store: StoreConfig{
			Path: "",
		},
		Retrieve: RetrieveConfig{
			TopK: 3,
		},
		Download: DownloadConfig{
			AutoInstall: false,
			Python:      "python3",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for semvec.yaml).
func LoadFromDir(dir string) (*Config, error) {
	// Try semvec.yaml in the directory
	path := filepath.Join(dir, "semvec.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	// Try .semvec/config.yaml
	path = filepath.Join(dir, ".semvec", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	// Return defaults
	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StoreDBPath returns the path to the vector store database.
func StoreDBPath(dir string) string {
	return filepath.Join(dir, ".semvec", "items.db")
}

// EmbedCacheDBPath returns the path to the embedding cache database.
func EmbedCacheDBPath(dir string) string {
	return filepath.Join(dir, ".semvec", "embeddings.db")
}

// EnsureDataDir ensures the .semvec directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".semvec"), 0755)
}

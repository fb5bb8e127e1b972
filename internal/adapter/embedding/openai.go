package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"

	"semvec/internal/domain"
)

// Embedder calls an OpenAI-compatible embeddings endpoint. The model
// reference sent to the server is the resolved source: a local snapshot path
// (which the serving side loads without any remote pull) or a bare model
// identifier (which the serving side may fetch and cache on its own).
type Embedder struct {
	apiKey    string
	model     string
	baseURL   string
	dimension int
	normalize bool
	batchSize int
	client    *http.Client
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data  []embeddingData `json:"data"`
	Error *apiError       `json:"error,omitempty"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Options configures an Embedder.
type Options struct {
	BaseURL   string
	APIKeyEnv string // env var holding the bearer token; empty for local servers
	Dimension int
	Normalize bool
	BatchSize int
}

// NewOllamaEmbedder creates an embedder for a local Ollama-compatible
// endpoint. No API key is required.
func NewOllamaEmbedder(source domain.ModelSource, opts Options) (*Embedder, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:11434/v1"
	}
	return newEmbedder(source, "ollama", opts)
}

// NewOpenAIEmbedder creates an embedder for a hosted OpenAI-compatible
// endpoint, reading the API key from the configured environment variable.
func NewOpenAIEmbedder(source domain.ModelSource, opts Options) (*Embedder, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.openai.com/v1"
	}
	apiKey := os.Getenv(opts.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", opts.APIKeyEnv)
	}
	return newEmbedder(source, apiKey, opts)
}

func newEmbedder(source domain.ModelSource, apiKey string, opts Options) (*Embedder, error) {
	if opts.Dimension <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension: %d", opts.Dimension)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 64
	}
	return &Embedder{
		apiKey:    apiKey,
		model:     source.Value,
		baseURL:   opts.BaseURL,
		dimension: opts.Dimension,
		normalize: opts.Normalize,
		batchSize: opts.BatchSize,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Embed generates one embedding per input text, in input order.
func (e *Embedder) Embed(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var allEmbeddings [][]float32

	for i := 0; i < len(texts); i += e.batchSize {
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		embeddings, err := e.embedBatch(texts[i:end])
		if err != nil {
			return nil, err
		}
		allEmbeddings = append(allEmbeddings, embeddings...)
	}

	return allEmbeddings, nil
}

func (e *Embedder) embedBatch(texts []string) ([][]float32, error) {
	reqBody := embeddingRequest{
		Input: texts,
		Model: e.model,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", e.baseURL+"/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if embResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", embResp.Error.Message)
	}

	// Responses may arrive out of order; the index field restores input order.
	embeddings := make([][]float32, len(texts))
	for _, data := range embResp.Data {
		if data.Index < 0 || data.Index >= len(embeddings) {
			return nil, fmt.Errorf("embedding index %d out of range for batch of %d", data.Index, len(texts))
		}
		embeddings[data.Index] = data.Embedding
	}

	for i, emb := range embeddings {
		if emb == nil {
			return nil, fmt.Errorf("no embedding returned for input %d", i)
		}
		if len(emb) != e.dimension {
			return nil, fmt.Errorf("model returned %d-dimensional vector, expected %d", len(emb), e.dimension)
		}
		if e.normalize {
			normalizeVector(emb)
		}
	}

	return embeddings, nil
}

// Dimension returns the embedding vector dimension.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// ModelName returns the model reference sent to the server.
func (e *Embedder) ModelName() string {
	return e.model
}

// normalizeVector scales v to unit Euclidean length in place. Zero vectors
// are left unchanged.
func normalizeVector(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

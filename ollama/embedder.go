package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/tverano/docqa"
)

// DefaultEmbedModel is the embedding model used when none is configured.
const DefaultEmbedModel = "nomic-embed-text"

// defaultEmbedDimension matches nomic-embed-text output.
const defaultEmbedDimension = 768

// Ensure Embedder implements docqa.Embedder at compile time.
var _ docqa.Embedder = (*Embedder)(nil)

// Embedder implements docqa.Embedder against the Ollama embeddings API.
type Embedder struct {
	baseURL   string
	model     string
	dimension int
	client    *http.Client
}

// NewEmbedder creates an Embedder. Empty arguments use DefaultBaseURL
// and DefaultEmbedModel.
func NewEmbedder(baseURL, model string) *Embedder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultEmbedModel
	}
	return &Embedder{
		baseURL:   baseURL,
		model:     model,
		dimension: defaultEmbedDimension,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed returns the embedding vector for the text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: e.model, Prompt: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, docqa.Errorf(docqa.EUNAVAILABLE, "embedding server is not reachable at %s", e.baseURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, docqa.Errorf(docqa.EUNAVAILABLE, "embedding server returned status %d", resp.StatusCode)
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, err
	}
	if len(embedResp.Embedding) == 0 {
		return nil, docqa.Errorf(docqa.EINTERNAL, "embedding server returned an empty vector")
	}

	// Lock onto the first observed dimension so a model change mid-corpus
	// is caught instead of silently mixing spaces.
	if e.dimension == 0 {
		e.dimension = len(embedResp.Embedding)
	}
	if len(embedResp.Embedding) != e.dimension {
		return nil, docqa.Errorf(docqa.EINTERNAL, "embedding has %d dimensions, expected %d", len(embedResp.Embedding), e.dimension)
	}

	return embedResp.Embedding, nil
}

// Dimension returns the embedding dimensionality.
func (e *Embedder) Dimension() int {
	return e.dimension
}

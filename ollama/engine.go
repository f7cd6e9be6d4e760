// Package ollama implements inference and embedding against a local
// Ollama server.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tverano/docqa"
)

// DefaultBaseURL is the standard local Ollama endpoint.
const DefaultBaseURL = "http://localhost:11434"

// tokenBufferSize bounds how far generation runs ahead of the consumer.
const tokenBufferSize = 100

// Ensure Engine implements docqa.Engine at compile time.
var _ docqa.Engine = (*Engine)(nil)

// Engine implements docqa.Engine against the Ollama generate API. Cached
// model files are registered with the server on demand, so a completed
// download is all a model needs to become usable.
type Engine struct {
	baseURL string
	cache   docqa.ModelCache
	client  *http.Client
}

// NewEngine creates an Engine resolving model files through cache. An
// empty baseURL uses DefaultBaseURL.
func NewEngine(baseURL string, cache docqa.ModelCache) *Engine {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Engine{
		baseURL: baseURL,
		cache:   cache,
		// No overall timeout: generation streams until done or ctx
		// cancels it.
		client: &http.Client{},
	}
}

// Tag is the server-side model name for a catalog entry, derived from
// its file name.
func Tag(model docqa.ModelDescriptor) string {
	return strings.TrimSuffix(model.FileName, ".gguf")
}

// Load makes the model available on the server and returns a handle
// bound to it. A model the server does not know yet is created from the
// downloaded file in the local cache.
func (e *Engine) Load(ctx context.Context, model docqa.ModelDescriptor, params docqa.ExecutionParams) (docqa.EngineHandle, error) {
	tag := Tag(model)

	known, err := e.hasModel(ctx, tag)
	if err != nil {
		return nil, err
	}
	if !known {
		if err := e.createModel(ctx, tag, e.cache.Path(model)); err != nil {
			return nil, err
		}
	}

	return &handle{
		baseURL: e.baseURL,
		client:  e.client,
		tag:     tag,
		params:  params,
	}, nil
}

// hasModel asks the server whether tag is already registered.
func (e *Engine) hasModel(ctx context.Context, tag string) (bool, error) {
	body, err := json.Marshal(map[string]string{"model": tag})
	if err != nil {
		return false, err
	}

	resp, err := e.post(ctx, "/api/show", body)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, docqa.Errorf(docqa.EUNAVAILABLE, "inference server returned status %d", resp.StatusCode)
	}
}

// createModel registers the downloaded file under tag via the create
// API. The server reads the file directly from the cache path.
func (e *Engine) createModel(ctx context.Context, tag, path string) error {
	body, err := json.Marshal(map[string]any{
		"model":     tag,
		"modelfile": "FROM " + path,
		"stream":    false,
	})
	if err != nil {
		return err
	}

	resp, err := e.post(ctx, "/api/create", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return docqa.Errorf(docqa.EUNAVAILABLE,
			"inference server could not load the model file at %s (status %d)", path, resp.StatusCode)
	}
	return nil
}

func (e *Engine) post(ctx context.Context, endpoint string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, docqa.Errorf(docqa.EUNAVAILABLE, "inference server is not reachable at %s", e.baseURL)
	}
	return resp, nil
}

// handle implements docqa.EngineHandle.
type handle struct {
	baseURL string
	client  *http.Client
	tag     string
	params  docqa.ExecutionParams
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	NumGPU    int `json:"num_gpu"`
	NumCtx    int `json:"num_ctx"`
	NumThread int `json:"num_thread"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// Generate streams tokens for the prompt. The returned channel is closed
// after a terminal token. Cancelling ctx ends the stream with the context
// error as its terminal token.
func (h *handle) Generate(ctx context.Context, prompt string) (<-chan docqa.Token, error) {
	body, err := json.Marshal(generateRequest{
		Model:  h.tag,
		Prompt: prompt,
		Stream: true,
		Options: generateOptions{
			NumGPU:    h.params.GPULayers,
			NumCtx:    h.params.ContextWindow,
			NumThread: h.params.ThreadCount,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, docqa.Errorf(docqa.EUNAVAILABLE, "inference server is not reachable at %s", h.baseURL)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, docqa.Errorf(docqa.EUNAVAILABLE, "inference server returned status %d", resp.StatusCode)
	}

	ch := make(chan docqa.Token, tokenBufferSize)

	go func() {
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			// Check cancellation between every token.
			select {
			case <-ctx.Done():
				ch <- docqa.Token{Err: ctx.Err()}
				return
			default:
			}

			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var chunk generateResponse
			if err := json.Unmarshal(line, &chunk); err != nil {
				continue
			}
			if chunk.Error != "" {
				ch <- docqa.Token{Err: fmt.Errorf("generation failed: %s", chunk.Error)}
				return
			}

			if chunk.Response != "" {
				ch <- docqa.Token{Text: chunk.Response}
			}
			if chunk.Done {
				ch <- docqa.Token{Done: true}
				return
			}
		}

		if err := scanner.Err(); err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			ch <- docqa.Token{Err: err}
			return
		}
		// Stream ended without a done marker; treat as complete.
		ch <- docqa.Token{Done: true}
	}()

	return ch, nil
}

// Close releases the handle. Ollama manages model residency itself, so
// there is nothing to unload here.
func (h *handle) Close() error {
	return nil
}

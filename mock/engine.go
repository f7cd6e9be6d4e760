package mock

import (
	"context"

	"github.com/tverano/docqa"
)

var _ docqa.Engine = (*Engine)(nil)

// Engine is a mock implementation of docqa.Engine.
type Engine struct {
	LoadFn func(ctx context.Context, model docqa.ModelDescriptor, params docqa.ExecutionParams) (docqa.EngineHandle, error)
}

func (e *Engine) Load(ctx context.Context, model docqa.ModelDescriptor, params docqa.ExecutionParams) (docqa.EngineHandle, error) {
	return e.LoadFn(ctx, model, params)
}

var _ docqa.EngineHandle = (*EngineHandle)(nil)

// EngineHandle is a mock implementation of docqa.EngineHandle.
type EngineHandle struct {
	GenerateFn func(ctx context.Context, prompt string) (<-chan docqa.Token, error)
	CloseFn    func() error
}

func (h *EngineHandle) Generate(ctx context.Context, prompt string) (<-chan docqa.Token, error) {
	return h.GenerateFn(ctx, prompt)
}

func (h *EngineHandle) Close() error {
	if h.CloseFn == nil {
		return nil
	}
	return h.CloseFn()
}

var _ docqa.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of docqa.Embedder.
type Embedder struct {
	EmbedFn     func(ctx context.Context, text string) ([]float32, error)
	DimensionFn func() int
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedFn(ctx, text)
}

func (e *Embedder) Dimension() int { return e.DimensionFn() }

package docqa

import "context"

// Token is a single increment of generated text. Exactly one terminal
// token (Done or Err set) ends every stream.
type Token struct {
	Text string
	Done bool
	Err  error
}

// Engine is the opaque inference capability. Load prepares a model for
// generation with the given execution parameters and returns a handle.
type Engine interface {
	Load(ctx context.Context, model ModelDescriptor, params ExecutionParams) (EngineHandle, error)
}

// EngineHandle generates text from a loaded model.
type EngineHandle interface {
	// Generate streams tokens for the prompt. The engine consults ctx
	// between token productions; cancellation stops the stream within a
	// bounded number of tokens.
	Generate(ctx context.Context, prompt string) (<-chan Token, error)

	// Close releases the loaded model.
	Close() error
}

// Embedder computes fixed-dimension embedding vectors for text.
type Embedder interface {
	// Embed returns the embedding vector for the text. The returned
	// vector always has Dimension() elements.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding dimensionality.
	Dimension() int
}

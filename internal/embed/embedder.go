// Package embed provides the embedding oracle boundary: a narrow interface
// over an external embedding model, an OpenAI-compatible implementation,
// and an LRU-caching decorator. Embedding failures never crash a search;
// callers fall back to keyword-only retrieval.
package embed

import (
	"context"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string
}

// TokenRecorder receives the token count of each successful embedding
// call. An error from Record blocks the call before it is made; the
// usage package uses this to enforce the embedding token budget.
type TokenRecorder interface {
	// CanSpend reports whether the budget allows another call.
	CanSpend() bool

	// Record adds consumed tokens to the running total.
	Record(tokens int)
}

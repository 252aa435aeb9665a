// ABOUTME: Embedding provider contract and its failure modes.
// ABOUTME: Providers map ordered text batches to ordered fixed-dimension vectors.
package embeddings

import (
	"context"
	"errors"
)

var (
	// ErrModelUnavailable means the model or endpoint could not be reached or loaded.
	ErrModelUnavailable = errors.New("embedding model unavailable")
	// ErrEmbeddingFailure means the model ran but did not produce usable vectors.
	ErrEmbeddingFailure = errors.New("embedding failed")
)

// Provider generates vector embeddings from text.
//
// Encode returns exactly one vector per input, in input order. An empty input
// yields an empty result and no error. Implementations must be safe for
// concurrent use.
type Provider interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the dimensionality of the output vectors, or 0 if not yet known.
	Dimension() int

	// ModelID identifies the model so vectors from different models are never mixed.
	ModelID() string

	// Close releases any resources held by the provider.
	Close() error
}

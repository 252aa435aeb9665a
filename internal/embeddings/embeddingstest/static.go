// ABOUTME: Deterministic in-memory Provider for tests.
// ABOUTME: Maps each text to a fixed vector and counts calls so tests can assert batching.
package embeddingstest

import (
	"context"
	"fmt"
	"sync"

	"github.com/2389-research/sectiondiff/internal/embeddings"
)

// Static returns preset vectors by text. Unknown texts fail with ErrEmbeddingFailure.
type Static struct {
	Vectors map[string][]float32
	Err     error
	Model   string

	mu     sync.Mutex
	calls  int
	texts  int
	closed bool
}

// NewStatic builds a Static provider from a text-to-vector map.
func NewStatic(vectors map[string][]float32) *Static {
	return &Static{Vectors: vectors, Model: "static"}
}

func (s *Static) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.calls++
	s.texts += len(texts)
	s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := s.Vectors[t]
		if !ok {
			return nil, fmt.Errorf("%w: no vector for %q", embeddings.ErrEmbeddingFailure, t)
		}
		out[i] = v
	}
	return out, nil
}

func (s *Static) Dimension() int {
	for _, v := range s.Vectors {
		return len(v)
	}
	return 0
}

func (s *Static) ModelID() string { return s.Model }

func (s *Static) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Calls reports how many Encode calls were made.
func (s *Static) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Texts reports the total number of texts passed to Encode.
func (s *Static) Texts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.texts
}

// Closed reports whether Close was called.
func (s *Static) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

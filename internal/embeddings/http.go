// ABOUTME: Embedding provider backed by an OpenAI-compatible /embeddings endpoint.
// ABOUTME: Splits input into batches and reorders returned vectors by their index field.
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultBatchSize bounds how many texts go into a single request.
const DefaultBatchSize = 32

// HTTPProvider calls a remote embedding service.
type HTTPProvider struct {
	baseURL   string
	apiKey    string
	model     string
	batchSize int
	dimension atomic.Int64
	client    *http.Client
}

// HTTPOption configures an HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithBatchSize overrides the per-request batch size.
func WithBatchSize(n int) HTTPOption {
	return func(p *HTTPProvider) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(p *HTTPProvider) {
		if d > 0 {
			p.client.Timeout = d
		}
	}
}

// WithDimension declares the expected vector dimension up front.
func WithDimension(dim int) HTTPOption {
	return func(p *HTTPProvider) {
		if dim > 0 {
			p.dimension.Store(int64(dim))
		}
	}
}

// NewHTTPProvider creates a provider for the given endpoint. baseURL should
// include any version prefix, e.g. "http://localhost:11434/v1".
func NewHTTPProvider(baseURL, apiKey, model string, opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		model:     model,
		batchSize: DefaultBatchSize,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []embeddingDataItem `json:"data"`
}

type embeddingDataItem struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

// Encode embeds texts in order, issuing one request per batch.
func (p *HTTPProvider) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += p.batchSize {
		end := min(start+p.batchSize, len(texts))
		vecs, err := p.encodeBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (p *HTTPProvider) encodeBatch(ctx context.Context, batch []string) ([][]float32, error) {
	data, err := json.Marshal(embeddingRequest{Input: batch, Model: p.model})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", ErrEmbeddingFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrModelUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrModelUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d: %s", ErrModelUnavailable, resp.StatusCode, truncate(body))
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: status %d: %s", ErrEmbeddingFailure, resp.StatusCode, truncate(body))
	}

	var result embeddingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: parse response: %w", ErrEmbeddingFailure, err)
	}
	if len(result.Data) != len(batch) {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", ErrEmbeddingFailure, len(result.Data), len(batch))
	}

	vectors := make([][]float32, len(batch))
	for _, item := range result.Data {
		if item.Index < 0 || item.Index >= len(batch) || vectors[item.Index] != nil {
			return nil, fmt.Errorf("%w: bad or duplicate index %d", ErrEmbeddingFailure, item.Index)
		}
		if err := p.checkDimension(len(item.Embedding)); err != nil {
			return nil, err
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

// checkDimension records the first observed dimension and rejects any vector that differs.
func (p *HTTPProvider) checkDimension(n int) error {
	if n == 0 {
		return fmt.Errorf("%w: empty vector", ErrEmbeddingFailure)
	}
	if p.dimension.CompareAndSwap(0, int64(n)) {
		return nil
	}
	if want := p.dimension.Load(); want != int64(n) {
		return fmt.Errorf("%w: vector dimension %d, expected %d", ErrEmbeddingFailure, n, want)
	}
	return nil
}

func (p *HTTPProvider) Dimension() int { return int(p.dimension.Load()) }

func (p *HTTPProvider) ModelID() string { return p.model }

// Close releases idle connections.
func (p *HTTPProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func truncate(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

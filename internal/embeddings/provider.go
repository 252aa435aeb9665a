// ABOUTME: Provider factory selecting the HTTP or ONNX backend from options.
// ABOUTME: Optionally wraps the chosen backend in a TTL cache.
package embeddings

import (
	"fmt"
	"time"
)

// Backend names accepted by NewProvider.
const (
	BackendHTTP = "http"
	BackendONNX = "onnx"
)

// Options selects and configures a provider.
type Options struct {
	Backend       string
	BaseURL       string
	APIKey        string
	Model         string
	Dimension     int
	BatchSize     int
	Timeout       time.Duration
	CacheTTL      time.Duration // 0 disables caching
	CacheCapacity uint64
	ONNX          ONNXOptions
}

// NewProvider builds the provider described by opts.
func NewProvider(opts Options) (Provider, error) {
	var p Provider
	switch opts.Backend {
	case "", BackendHTTP:
		if opts.BaseURL == "" {
			return nil, fmt.Errorf("%w: no embedding endpoint configured", ErrModelUnavailable)
		}
		p = NewHTTPProvider(opts.BaseURL, opts.APIKey, opts.Model,
			WithBatchSize(opts.BatchSize),
			WithTimeout(opts.Timeout),
			WithDimension(opts.Dimension),
		)
	case BackendONNX:
		onnx, err := NewONNXProvider(opts.ONNX)
		if err != nil {
			return nil, err
		}
		p = onnx
	default:
		return nil, fmt.Errorf("unknown embedding backend %q", opts.Backend)
	}

	if opts.CacheTTL > 0 {
		p = NewCachedProvider(p, opts.CacheTTL, opts.CacheCapacity)
	}
	return p, nil
}

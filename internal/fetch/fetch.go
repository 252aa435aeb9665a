// ABOUTME: HTTP retrieval of policy documents by URL.
// ABOUTME: Single GET with timeout, user agent, and a body size cap; failures wrap ErrRetrievalFailure.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrRetrievalFailure is wrapped by every fetch error.
var ErrRetrievalFailure = errors.New("retrieval failed")

// Defaults used when Options leaves a field zero.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "sectiondiff/1.0 (+https://github.com/2389-research/sectiondiff)"
	DefaultMaxBytes  = 5 << 20
)

// Options configures a Fetcher.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
}

// Fetcher downloads documents.
type Fetcher struct {
	userAgent string
	maxBytes  int64
	client    *http.Client
}

// New creates a Fetcher, filling unset options with defaults.
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	return &Fetcher{
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
		client:    &http.Client{Timeout: opts.Timeout},
	}
}

// Fetch returns the body at url. Non-2xx responses and empty bodies are errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("%w: unsupported url %q", ErrRetrievalFailure, url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrRetrievalFailure, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrRetrievalFailure, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrRetrievalFailure, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrRetrievalFailure, url, f.maxBytes)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("%w: %s returned an empty body", ErrRetrievalFailure, url)
	}
	return body, nil
}

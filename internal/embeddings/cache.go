// ABOUTME: Caching decorator over any Provider using a TTL cache keyed by model and text.
// ABOUTME: Only cache misses reach the wrapped provider, deduplicated within a call.
package embeddings

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// CachedProvider memoizes vectors from an inner provider.
type CachedProvider struct {
	inner Provider
	cache *ttlcache.Cache[string, []float32]
}

// NewCachedProvider wraps inner with a TTL cache. capacity 0 means unbounded.
func NewCachedProvider(inner Provider, ttl time.Duration, capacity uint64) *CachedProvider {
	opts := []ttlcache.Option[string, []float32]{
		ttlcache.WithTTL[string, []float32](ttl),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []float32](capacity))
	}
	c := ttlcache.New[string, []float32](opts...)
	go c.Start()
	return &CachedProvider{inner: inner, cache: c}
}

func (c *CachedProvider) key(text string) string {
	sum := sha1.Sum([]byte(c.inner.ModelID() + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// Encode returns cached vectors where present and fetches the rest in one inner call.
func (c *CachedProvider) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	pending := make(map[string][]int)
	var misses []string

	for i, text := range texts {
		if item := c.cache.Get(c.key(text)); item != nil {
			out[i] = item.Value()
			continue
		}
		if _, seen := pending[text]; !seen {
			misses = append(misses, text)
		}
		pending[text] = append(pending[text], i)
	}

	if len(misses) == 0 {
		return out, nil
	}

	vecs, err := c.inner.Encode(ctx, misses)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(misses) {
		return nil, fmt.Errorf("%w: got %d vectors for %d inputs", ErrEmbeddingFailure, len(vecs), len(misses))
	}

	for j, text := range misses {
		c.cache.Set(c.key(text), vecs[j], ttlcache.DefaultTTL)
		for _, i := range pending[text] {
			out[i] = vecs[j]
		}
	}
	return out, nil
}

// Len reports how many vectors are cached.
func (c *CachedProvider) Len() int { return c.cache.Len() }

func (c *CachedProvider) Dimension() int { return c.inner.Dimension() }

func (c *CachedProvider) ModelID() string { return c.inner.ModelID() }

// Close stops the expiration loop and closes the inner provider.
func (c *CachedProvider) Close() error {
	c.cache.Stop()
	return c.inner.Close()
}

// ABOUTME: Tests for provider selection and the local pooling math.
// ABOUTME: ONNX inference itself needs a model on disk and is not exercised here.
package embeddings

import (
	"errors"
	"math"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model/wordlevel"
	"github.com/sugarme/tokenizer/pretokenizer"
	"github.com/sugarme/tokenizer/processor"
)

func TestNewProviderHTTP(t *testing.T) {
	p, err := NewProvider(Options{Backend: BackendHTTP, BaseURL: "http://localhost:1/v1", Model: "m"})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	if _, ok := p.(*HTTPProvider); !ok {
		t.Errorf("expected *HTTPProvider, got %T", p)
	}
}

func TestNewProviderCached(t *testing.T) {
	p, err := NewProvider(Options{BaseURL: "http://localhost:1/v1", Model: "m", CacheTTL: time.Minute})
	if err != nil {
		t.Fatalf("NewProvider error: %v", err)
	}
	defer p.Close()
	if _, ok := p.(*CachedProvider); !ok {
		t.Errorf("expected *CachedProvider, got %T", p)
	}
	if p.ModelID() != "m" {
		t.Errorf("expected model id m, got %q", p.ModelID())
	}
}

func TestNewProviderErrors(t *testing.T) {
	if _, err := NewProvider(Options{Backend: BackendHTTP}); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable without endpoint, got %v", err)
	}
	if _, err := NewProvider(Options{Backend: BackendONNX}); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable without model paths, got %v", err)
	}
	if _, err := NewProvider(Options{Backend: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestMeanPool(t *testing.T) {
	hidden := []float32{
		1, 2,
		3, 4,
		100, 100,
	}
	mask := []int64{1, 1, 0}
	got := meanPool(hidden, mask, 2)
	if got[0] != 2 || got[1] != 3 {
		t.Errorf("expected [2 3], got %v", got)
	}

	Normalize(got)
	norm := math.Hypot(float64(got[0]), float64(got[1]))
	if math.Abs(norm-1) > 1e-6 {
		t.Errorf("expected unit norm after Normalize, got %f", norm)
	}
}

func TestMeanPoolEmptyMask(t *testing.T) {
	got := meanPool([]float32{1, 2}, []int64{0}, 2)
	if got[0] != 0 || got[1] != 0 {
		t.Errorf("expected zero vector, got %v", got)
	}
}

func newBertStyleTokenizer(t *testing.T) *tokenizer.Tokenizer {
	t.Helper()
	m, err := wordlevel.New(map[string]int{"[UNK]": 0, "[CLS]": 1, "[SEP]": 2, "privacy": 3}, "[UNK]")
	if err != nil {
		t.Fatalf("wordlevel.New: %v", err)
	}
	tk := tokenizer.NewTokenizer(m)
	tk.WithPreTokenizer(pretokenizer.NewWhitespace())
	tk.WithPostProcessor(processor.NewBertProcessing(
		processor.PostToken{Value: "[SEP]", Id: 2},
		processor.PostToken{Value: "[CLS]", Id: 1},
	))
	return tk
}

func TestLimitSequenceKeepsSpecialTokens(t *testing.T) {
	tk := newBertStyleTokenizer(t)
	limitSequence(tk, 5)

	enc, err := tk.EncodeSingle(strings.Repeat("privacy ", 20), true)
	if err != nil {
		t.Fatalf("EncodeSingle: %v", err)
	}
	want := []int{1, 3, 3, 3, 2}
	if !slices.Equal(enc.Ids, want) {
		t.Errorf("Ids = %v, want %v", enc.Ids, want)
	}
	if len(enc.AttentionMask) != len(enc.Ids) {
		t.Errorf("mask length %d, ids length %d", len(enc.AttentionMask), len(enc.Ids))
	}
}

func TestLimitSequenceShortInputUnchanged(t *testing.T) {
	tk := newBertStyleTokenizer(t)
	limitSequence(tk, 5)

	enc, err := tk.EncodeSingle("privacy", true)
	if err != nil {
		t.Fatalf("EncodeSingle: %v", err)
	}
	if want := []int{1, 3, 2}; !slices.Equal(enc.Ids, want) {
		t.Errorf("Ids = %v, want %v", enc.Ids, want)
	}
}

func TestShutdownRuntimeWithoutInit(t *testing.T) {
	if err := ShutdownRuntime(); err != nil {
		t.Errorf("ShutdownRuntime before init: %v", err)
	}
}

// ABOUTME: Local embedding provider running a sentence-transformer ONNX export.
// ABOUTME: Tokenizes with a HuggingFace tokenizer.json, mean-pools hidden states, and L2-normalizes.
package embeddings

import (
	"context"
	"fmt"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// Defaults for the MiniLM family of sentence-transformers.
const (
	DefaultONNXDimension = 384
	DefaultMaxSeqLen     = 256
)

// ONNXOptions configures an ONNXProvider.
type ONNXOptions struct {
	SharedLibrary string // path to libonnxruntime; empty uses the loader default
	ModelPath     string
	TokenizerPath string
	ModelID       string
	Dimension     int
	MaxSeqLen     int
	// TokenTypeIDs feeds a token_type_ids input; disable for exports that lack it.
	TokenTypeIDs bool
}

var (
	runtimeOnce sync.Once
	runtimeErr  error
)

func initRuntime(lib string) error {
	runtimeOnce.Do(func() {
		if ort.IsInitialized() {
			return
		}
		if lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
		runtimeErr = ort.InitializeEnvironment()
	})
	return runtimeErr
}

// ShutdownRuntime tears down the process-wide ONNX runtime environment.
func ShutdownRuntime() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// ONNXProvider runs inference in-process. Session access is serialized.
type ONNXProvider struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
	tk      *tokenizer.Tokenizer
	opts    ONNXOptions
}

// NewONNXProvider loads the tokenizer and model session.
func NewONNXProvider(opts ONNXOptions) (*ONNXProvider, error) {
	if opts.ModelPath == "" || opts.TokenizerPath == "" {
		return nil, fmt.Errorf("%w: model and tokenizer paths are required", ErrModelUnavailable)
	}
	if opts.Dimension <= 0 {
		opts.Dimension = DefaultONNXDimension
	}
	if opts.MaxSeqLen <= 0 {
		opts.MaxSeqLen = DefaultMaxSeqLen
	}
	if opts.ModelID == "" {
		opts.ModelID = opts.ModelPath
	}

	if err := initRuntime(opts.SharedLibrary); err != nil {
		return nil, fmt.Errorf("%w: onnx runtime: %w", ErrModelUnavailable, err)
	}

	tk, err := pretrained.FromFile(opts.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("%w: load tokenizer: %w", ErrModelUnavailable, err)
	}
	limitSequence(tk, opts.MaxSeqLen)

	inputs := []string{"input_ids", "attention_mask"}
	if opts.TokenTypeIDs {
		inputs = append(inputs, "token_type_ids")
	}
	session, err := ort.NewDynamicAdvancedSession(opts.ModelPath, inputs, []string{"last_hidden_state"}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: load model: %w", ErrModelUnavailable, err)
	}

	return &ONNXProvider{session: session, tk: tk, opts: opts}, nil
}

// Encode embeds each text with a separate forward pass.
func (p *ONNXProvider) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := p.encodeOne(text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (p *ONNXProvider) encodeOne(text string) ([]float32, error) {
	enc, err := p.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("%w: tokenize: %w", ErrEmbeddingFailure, err)
	}

	n := len(enc.Ids)
	if n == 0 {
		return nil, fmt.Errorf("%w: no tokens for %q", ErrEmbeddingFailure, text)
	}
	ids := toInt64(enc.Ids)
	mask := toInt64(enc.AttentionMask)

	shape := ort.NewShape(1, int64(n))
	var tensors []ort.Value
	defer func() {
		for _, t := range tensors {
			_ = t.Destroy()
		}
	}()

	idsT, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: input tensor: %w", ErrEmbeddingFailure, err)
	}
	tensors = append(tensors, idsT)
	maskT, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, fmt.Errorf("%w: mask tensor: %w", ErrEmbeddingFailure, err)
	}
	tensors = append(tensors, maskT)
	if p.opts.TokenTypeIDs {
		typeT, err := ort.NewTensor(shape, toInt64(enc.TypeIds))
		if err != nil {
			return nil, fmt.Errorf("%w: type tensor: %w", ErrEmbeddingFailure, err)
		}
		tensors = append(tensors, typeT)
	}

	hidden, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(n), int64(p.opts.Dimension)))
	if err != nil {
		return nil, fmt.Errorf("%w: output tensor: %w", ErrEmbeddingFailure, err)
	}
	defer hidden.Destroy()

	p.mu.Lock()
	err = p.session.Run(tensors, []ort.Value{hidden})
	p.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: inference: %w", ErrEmbeddingFailure, err)
	}

	vec := meanPool(hidden.GetData(), mask, p.opts.Dimension)
	Normalize(vec)
	return vec, nil
}

// limitSequence caps encodings at maxLen tokens. The tokenizer reserves room
// for [CLS] and [SEP], so long inputs keep both.
func limitSequence(tk *tokenizer.Tokenizer, maxLen int) {
	tk.WithTruncation(&tokenizer.TruncationParams{
		MaxLength: maxLen,
		Strategy:  tokenizer.LongestFirst,
	})
}

// meanPool averages token vectors whose attention mask is set.
func meanPool(hidden []float32, mask []int64, dim int) []float32 {
	out := make([]float32, dim)
	var count float32
	for t, m := range mask {
		if m == 0 {
			continue
		}
		row := hidden[t*dim : (t+1)*dim]
		for j, v := range row {
			out[j] += v
		}
		count++
	}
	if count == 0 {
		return out
	}
	for j := range out {
		out[j] /= count
	}
	return out
}

func toInt64(xs []int) []int64 {
	out := make([]int64, len(xs))
	for i, x := range xs {
		out[i] = int64(x)
	}
	return out
}

func (p *ONNXProvider) Dimension() int { return p.opts.Dimension }

func (p *ONNXProvider) ModelID() string { return p.opts.ModelID }

// Close destroys the session. The runtime environment stays up; see ShutdownRuntime.
func (p *ONNXProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return nil
	}
	err := p.session.Destroy()
	p.session = nil
	return err
}

// ABOUTME: Heading aligner: embeds two heading lists and pairs them by cosine similarity.
// ABOUTME: Produces a report with A rows first, then B headings nothing claimed.
package align

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/2389-research/sectiondiff/internal/embeddings"
	"github.com/2389-research/sectiondiff/internal/models"
)

// Mode selects the pairing strategy.
type Mode int

const (
	// ModeGreedy gives each A heading its best B heading; B headings may be claimed repeatedly.
	ModeGreedy Mode = iota
	// ModeOneToOne solves a maximum-weight assignment so each B heading is claimed at most once.
	ModeOneToOne
)

func (m Mode) String() string {
	if m == ModeOneToOne {
		return "one-to-one"
	}
	return "greedy"
}

// ParseMode accepts "greedy" or "one-to-one".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "greedy":
		return ModeGreedy, nil
	case "one-to-one", "onetoone", "hungarian":
		return ModeOneToOne, nil
	}
	return ModeGreedy, fmt.Errorf("unknown alignment mode %q", s)
}

// Default thresholds for raw and normalized headings.
const (
	RawThreshold        = 0.75
	NormalizedThreshold = 0.65
)

// DefaultThreshold returns the threshold suited to whether headings were normalized upstream.
func DefaultThreshold(normalized bool) float64 {
	if normalized {
		return NormalizedThreshold
	}
	return RawThreshold
}

// ErrInvalidThreshold is returned for thresholds outside [0, 1].
var ErrInvalidThreshold = errors.New("threshold must be between 0 and 1")

// ValidateThreshold checks that t lies in [0, 1].
func ValidateThreshold(t float64) error {
	if math.IsNaN(t) || t < 0 || t > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, t)
	}
	return nil
}

// Options controls a single alignment.
type Options struct {
	Threshold float64
	Mode      Mode
}

// scoreEpsilon absorbs float error so a self-match scores at least 1.0 against threshold 1.0.
const scoreEpsilon = 1e-9

// Align pairs headingsA against headingsB.
//
// Each side is deduplicated in first-seen order before embedding. Every A
// heading yields one record; every B heading appears either as a match target
// or in its own MissingInA record.
func Align(ctx context.Context, provider embeddings.Provider, headingsA, headingsB []string, opts Options) (*models.Report, error) {
	if err := ValidateThreshold(opts.Threshold); err != nil {
		return nil, err
	}

	a := models.NewHeadings(models.SideA, Dedupe(headingsA))
	b := models.NewHeadings(models.SideB, Dedupe(headingsB))

	vecA, err := encode(ctx, provider, a)
	if err != nil {
		return nil, err
	}
	vecB, err := encode(ctx, provider, b)
	if err != nil {
		return nil, err
	}
	if err := checkDimensions(vecA, vecB); err != nil {
		return nil, err
	}

	sim := similarityMatrix(vecA, vecB)

	var pairs []int
	switch opts.Mode {
	case ModeOneToOne:
		pairs = assignOneToOne(sim, opts.Threshold)
	default:
		pairs = assignGreedy(sim, opts.Threshold)
	}

	report := models.NewReport(opts.Threshold, opts.Mode.String())
	report.Records = buildRecords(a, b, sim, pairs)
	return report, nil
}

// Dedupe drops repeated strings, keeping the first occurrence of each.
func Dedupe(texts []string) []string {
	seen := make(map[string]struct{}, len(texts))
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func encode(ctx context.Context, provider embeddings.Provider, hs []models.Heading) ([][]float32, error) {
	if len(hs) == 0 {
		return nil, nil
	}
	texts := make([]string, len(hs))
	for i, h := range hs {
		texts[i] = h.Text
	}
	vecs, err := provider.Encode(ctx, texts)
	if err != nil {
		if errors.Is(err, embeddings.ErrEmbeddingFailure) {
			return nil, fmt.Errorf("encode side %s: %w", hs[0].Side, err)
		}
		return nil, fmt.Errorf("%w: encode side %s: %w", embeddings.ErrEmbeddingFailure, hs[0].Side, err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: side %s: got %d vectors for %d headings",
			embeddings.ErrEmbeddingFailure, hs[0].Side, len(vecs), len(texts))
	}
	return vecs, nil
}

// checkDimensions requires every vector on both sides to share one non-zero length.
func checkDimensions(a, b [][]float32) error {
	dim := -1
	for _, side := range []struct {
		name models.Side
		vecs [][]float32
	}{{models.SideA, a}, {models.SideB, b}} {
		for i, v := range side.vecs {
			if len(v) == 0 {
				return fmt.Errorf("%w: side %s: empty vector at %d", embeddings.ErrEmbeddingFailure, side.name, i)
			}
			if dim < 0 {
				dim = len(v)
			}
			if len(v) != dim {
				return fmt.Errorf("%w: side %s: vector %d has dimension %d, want %d",
					embeddings.ErrEmbeddingFailure, side.name, i, len(v), dim)
			}
		}
	}
	return nil
}

// similarityMatrix returns sim[i][j] = cosine(a_i, b_j), clamped to [-1, 1].
func similarityMatrix(a, b [][]float32) [][]float64 {
	sim := make([][]float64, len(a))
	for i := range a {
		sim[i] = make([]float64, len(b))
		for j := range b {
			s := embeddings.CosineSimilarity(a[i], b[j])
			sim[i][j] = math.Max(-1, math.Min(1, s))
		}
	}
	return sim
}

func meetsThreshold(score, threshold float64) bool {
	return score+scoreEpsilon >= threshold
}

// buildRecords turns pairs (pairs[i] = matched B index or -1) into ordered records.
func buildRecords(a, b []models.Heading, sim [][]float64, pairs []int) []models.MatchRecord {
	records := make([]models.MatchRecord, 0, len(a)+len(b))
	claimed := make([]bool, len(b))

	for i, h := range a {
		j := pairs[i]
		if j < 0 {
			records = append(records, models.MissingInB(h.Text))
			continue
		}
		claimed[j] = true
		records = append(records, models.Matched(h.Text, b[j].Text, sim[i][j]))
	}

	for j, h := range b {
		if !claimed[j] {
			records = append(records, models.MissingInA(h.Text))
		}
	}
	return records
}

// ABOUTME: Comparison service: fetch or accept two heading sets, optionally normalize, and align.
// ABOUTME: Logs each stage with zap and records outcome, duration, and record counts.
package compare

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/2389-research/sectiondiff/internal/align"
	"github.com/2389-research/sectiondiff/internal/embeddings"
	"github.com/2389-research/sectiondiff/internal/extract"
	"github.com/2389-research/sectiondiff/internal/fetch"
	"github.com/2389-research/sectiondiff/internal/metrics"
	"github.com/2389-research/sectiondiff/internal/models"
	"github.com/2389-research/sectiondiff/internal/search"
)

// Fetcher retrieves a document body by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Searcher discovers a policy URL from an organization name.
type Searcher interface {
	FindPolicyURL(ctx context.Context, name string) (string, error)
}

// Options controls one comparison. A nil Threshold picks the default for the
// normalization setting.
type Options struct {
	Threshold *float64
	Mode      align.Mode
	Normalize bool
	Stopwords []string
}

// EffectiveThreshold resolves the threshold to use.
func (o Options) EffectiveThreshold() float64 {
	if o.Threshold != nil {
		return *o.Threshold
	}
	return align.DefaultThreshold(o.Normalize)
}

// Service runs comparisons.
type Service struct {
	provider embeddings.Provider
	fetcher  Fetcher
	searcher Searcher
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewService wires a service. fetcher, searcher, and m may be nil when the
// corresponding operations are not used.
func NewService(provider embeddings.Provider, fetcher Fetcher, searcher Searcher, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider: provider,
		fetcher:  fetcher,
		searcher: searcher,
		metrics:  m,
		logger:   logger,
	}
}

// CompareHeadings aligns caller-supplied heading lists.
func (s *Service) CompareHeadings(ctx context.Context, a, b []string, opts Options) (report *models.Report, err error) {
	start := time.Now()
	defer func() { s.observe("headings", err, start) }()

	return s.align(ctx, a, b, opts)
}

// CompareURLs fetches both documents concurrently, extracts headings, and aligns them.
func (s *Service) CompareURLs(ctx context.Context, urlA, urlB string, opts Options) (report *models.Report, err error) {
	start := time.Now()
	defer func() { s.observe("urls", err, start) }()

	return s.compareURLs(ctx, urlA, urlB, opts)
}

// FindAndCompare discovers both policy URLs by name, then compares them.
func (s *Service) FindAndCompare(ctx context.Context, nameA, nameB string, opts Options) (report *models.Report, err error) {
	start := time.Now()
	defer func() { s.observe("find", err, start) }()

	if s.searcher == nil {
		return nil, search.ErrNotConfigured
	}

	var urlA, urlB string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.searcher.FindPolicyURL(gctx, nameA)
		urlA = u
		return err
	})
	g.Go(func() error {
		u, err := s.searcher.FindPolicyURL(gctx, nameB)
		urlB = u
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.logger.Info("discovered policy urls",
		zap.String("name_a", nameA), zap.String("url_a", urlA),
		zap.String("name_b", nameB), zap.String("url_b", urlB))

	return s.compareURLs(ctx, urlA, urlB, opts)
}

// FindPolicyURL exposes URL discovery on its own.
func (s *Service) FindPolicyURL(ctx context.Context, name string) (string, error) {
	if s.searcher == nil {
		return "", search.ErrNotConfigured
	}
	return s.searcher.FindPolicyURL(ctx, name)
}

func (s *Service) compareURLs(ctx context.Context, urlA, urlB string, opts Options) (*models.Report, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("%w: no fetcher configured", fetch.ErrRetrievalFailure)
	}

	var headingsA, headingsB []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hs, err := s.headingsAt(gctx, urlA)
		headingsA = hs
		return err
	})
	g.Go(func() error {
		hs, err := s.headingsAt(gctx, urlB)
		headingsB = hs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report, err := s.align(ctx, headingsA, headingsB, opts)
	if err != nil {
		return nil, err
	}
	report.SourceA, report.SourceB = urlA, urlB
	return report, nil
}

func (s *Service) headingsAt(ctx context.Context, url string) ([]string, error) {
	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	hs, err := extract.Headings(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", fetch.ErrRetrievalFailure, url, err)
	}
	s.logger.Debug("extracted headings", zap.String("url", url), zap.Int("count", len(hs)))
	return hs, nil
}

func (s *Service) align(ctx context.Context, a, b []string, opts Options) (*models.Report, error) {
	if opts.Normalize {
		n := extract.NewNormalizer(opts.Stopwords)
		a, b = n.NormalizeAll(a), n.NormalizeAll(b)
	}

	threshold := opts.EffectiveThreshold()
	s.logger.Debug("aligning headings",
		zap.Int("a", len(a)), zap.Int("b", len(b)),
		zap.Float64("threshold", threshold), zap.Stringer("mode", opts.Mode))

	report, err := align.Align(ctx, s.provider, a, b, align.Options{Threshold: threshold, Mode: opts.Mode})
	if err != nil {
		return nil, err
	}

	matched, inB, inA := report.Summary()
	s.logger.Info("comparison complete",
		zap.String("report_id", report.ID.String()),
		zap.Int("matched", matched), zap.Int("missing_in_b", inB), zap.Int("missing_in_a", inA))

	if s.metrics != nil {
		s.metrics.Headings.WithLabelValues(string(models.SideA)).Add(float64(len(a)))
		s.metrics.Headings.WithLabelValues(string(models.SideB)).Add(float64(len(b)))
		for _, status := range []models.Status{models.StatusMatched, models.StatusMissingInB, models.StatusMissingInA} {
			s.metrics.Records.WithLabelValues(status.String()).Add(float64(report.Count(status)))
		}
	}
	return report, nil
}

func (s *Service) observe(kind string, err error, start time.Time) {
	outcome := Outcome(err)
	if err != nil {
		s.logger.Warn("comparison failed", zap.String("kind", kind), zap.String("outcome", outcome), zap.Error(err))
	}
	s.metrics.Observe(kind, outcome, time.Since(start))
}

// Outcome classifies an error into a metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, fetch.ErrRetrievalFailure):
		return "retrieval_failure"
	case errors.Is(err, embeddings.ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, embeddings.ErrEmbeddingFailure):
		return "embedding_failure"
	case errors.Is(err, search.ErrNotConfigured), errors.Is(err, search.ErrNoResult):
		return "search_failure"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

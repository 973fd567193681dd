// Package ask implements the hybrid retrieval pipeline: coarse lexical
// and vector retrieval, score calibration, key-based fusion, and
// optional cross-encoder reranking over the fused candidate set.
package ask

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clausehub/clausehub/internal/domain"
	"github.com/clausehub/clausehub/internal/domain/clause"
	"github.com/clausehub/clausehub/internal/domain/search/request"
	"github.com/clausehub/clausehub/internal/logger"
	"github.com/clausehub/clausehub/internal/metrics"
)

// Response is the outcome of one search request. Reranked reports
// whether the oracle stage actually ran; it is never true on a failed
// oracle call because such failures fail the whole request.
type Response struct {
	Reranked bool
	Results  []*clause.Hit
	Summary  string
}

// Service orchestrates the two-stage retrieval pipeline. All state is
// request-local; concurrent requests share nothing.
type Service struct {
	lexical    Backend
	vector     Backend
	oracle     RelevanceOracle
	summarizer Summarizer
	uniform    UniformPolicy
}

// New creates the search service.
func New(lexical, vector Backend) *Service {
	return &Service{
		lexical: lexical,
		vector:  vector,
		uniform: UniformAsMax,
	}
}

// WithOracle attaches the reranking oracle.
func (s *Service) WithOracle(o RelevanceOracle) *Service {
	s.oracle = o
	return s
}

// WithSummarizer attaches the result summarizer.
func (s *Service) WithSummarizer(sum Summarizer) *Service {
	s.summarizer = sum
	return s
}

// WithUniformPolicy overrides the degenerate-range normalization policy.
func (s *Service) WithUniformPolicy(p UniformPolicy) *Service {
	if p.IsValid() {
		s.uniform = p
	}
	return s
}

// Ask runs one complete retrieve → normalize → fuse → (optional) rerank
// pass from a clean start. The two backend searches run concurrently as
// a latency optimization only; fusion is commutative in backend-call
// order. Cancelling ctx aborts both calls and discards partial state.
func (s *Service) Ask(ctx context.Context, req *request.Request) (*Response, error) {
	resp, err := s.ask(ctx, req)

	reranked := "false"
	status := "success"
	if err != nil {
		status = "error"
	} else {
		if resp.Reranked {
			reranked = "true"
		}
		metrics.SearchResultsReturned.Observe(float64(len(resp.Results)))
	}
	metrics.SearchRequestsTotal.WithLabelValues(reranked, status).Inc()

	return resp, err
}

func (s *Service) ask(ctx context.Context, req *request.Request) (*Response, error) {
	log := logger.FromContext(ctx)

	retrieveStart := time.Now()

	var lexHits, vecHits []*clause.Hit
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if lexHits, err = s.lexical.Search(gctx, req.Query(), req.TopK()); err != nil {
			return fmt.Errorf("lexical backend: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if vecHits, err = s.vector.Search(gctx, req.Query(), req.TopK()); err != nil {
			return fmt.Errorf("vector backend: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	metrics.SearchStageDuration.WithLabelValues("retrieve").Observe(time.Since(retrieveStart).Seconds())

	fuseStart := time.Now()
	normalizeScores(lexHits, s.uniform)
	normalizeScores(vecHits, s.uniform)

	results, err := fuse(lexHits, vecHits, req.Alpha(), req.TopK())
	if err != nil {
		return nil, err
	}
	metrics.SearchStageDuration.WithLabelValues("fuse").Observe(time.Since(fuseStart).Seconds())

	log.Debug("fused backend results",
		zap.Int("lexical_hits", len(lexHits)),
		zap.Int("vector_hits", len(vecHits)),
		zap.Int("fused", len(results)),
		zap.Float64("alpha", req.Alpha()),
	)

	resp := &Response{Results: results}

	if req.Rerank() {
		rerankStart := time.Now()
		if err := s.rerank(ctx, req.Query(), results); err != nil {
			return nil, err
		}
		metrics.SearchStageDuration.WithLabelValues("rerank").Observe(time.Since(rerankStart).Seconds())
		resp.Reranked = true
	}

	if req.Summarize() && len(resp.Results) > 0 {
		summarizeStart := time.Now()
		summary, err := s.summarize(ctx, req.Query(), resp.Results)
		if err != nil {
			return nil, err
		}
		metrics.SearchStageDuration.WithLabelValues("summarize").Observe(time.Since(summarizeStart).Seconds())
		resp.Summary = summary
	}

	return resp, nil
}

// rerank re-scores the fused candidate set with the oracle and re-sorts
// in place. The stage never grows the candidate set, and an oracle
// failure fails the request: silently returning the fused order would
// misreport an unreranked response as reranked.
func (s *Service) rerank(ctx context.Context, query string, hits []*clause.Hit) error {
	if s.oracle == nil {
		return fmt.Errorf("%w: no oracle configured", domain.ErrOracleFailure)
	}
	if len(hits) == 0 {
		return nil
	}

	// Score against the bounded snippet, not the full clause text.
	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.TextSnippet
	}

	scores, err := s.oracle.Score(ctx, query, texts)
	if err != nil {
		return fmt.Errorf("rerank: %w", err)
	}
	if len(scores) != len(hits) {
		return fmt.Errorf("%w: got %d scores for %d candidates", domain.ErrOracleFailure, len(scores), len(hits))
	}

	// Attach without discarding prior scores; they stay for audit.
	for i, h := range hits {
		score := scores[i]
		h.RerankerScore = &score
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return *hits[i].RerankerScore > *hits[j].RerankerScore
	})

	return nil
}

func (s *Service) summarize(ctx context.Context, query string, hits []*clause.Hit) (string, error) {
	if s.summarizer == nil {
		return "", fmt.Errorf("%w: no summarizer configured", domain.ErrSummaryFailure)
	}
	summary, err := s.summarizer.Summarize(ctx, query, hits)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return summary, nil
}

// Package request models a validated clause-search query.
package request

import (
	"fmt"

	"github.com/clausehub/clausehub/internal/domain"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	DefaultTopK    = 10
	DefaultAlpha   = 0.5
)

// Request is a validated hybrid-search query.
type Request struct {
	query     string
	topK      int
	alpha     float64
	rerank    bool
	summarize bool
}

// New validates and normalizes search parameters.
// topK must be >= 1; defaulting an absent topK is the caller's job, since
// only the transport can tell absent from an explicit zero. topK is clamped
// to serviceCap. alpha outside [0,1] is rejected rather than clamped: the
// caller asked for a weighting the fusion contract cannot honor.
func New(query string, topK int, alpha float64, rerank, summarize bool, serviceCap int) (Request, error) {
	if query == "" {
		return Request{}, fmt.Errorf("%w: query is required", domain.ErrInvalidRequest)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if topK < 1 {
		return Request{}, fmt.Errorf("%w: top_k must be >= 1", domain.ErrInvalidRequest)
	}
	if serviceCap > 0 && topK > serviceCap {
		topK = serviceCap
	}
	if alpha < 0 || alpha > 1 {
		return Request{}, fmt.Errorf("%w: alpha must be between 0 and 1", domain.ErrInvalidRequest)
	}

	return Request{
		query:     query,
		topK:      topK,
		alpha:     alpha,
		rerank:    rerank,
		summarize: summarize,
	}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// TopK returns the result-count budget.
func (r *Request) TopK() int { return r.topK }

// Alpha returns the lexical weight of the hybrid score.
func (r *Request) Alpha() float64 { return r.alpha }

// Rerank reports whether the oracle reranking stage was requested.
func (r *Request) Rerank() bool { return r.rerank }

// Summarize reports whether a summary of the final results was requested.
func (r *Request) Summarize() bool { return r.summarize }

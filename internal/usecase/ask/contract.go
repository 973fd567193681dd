package ask

import (
	"context"

	"github.com/clausehub/clausehub/internal/domain/clause"
)

// Backend is a coarse retrieval engine returning raw-scored clause hits
// ordered by its own relevance measure. Scores are not assumed to be
// normalized or comparable across backends.
type Backend interface {
	Search(ctx context.Context, query string, limit int) ([]*clause.Hit, error)
}

// RelevanceOracle scores (query, text) pairs with a cross-encoder.
// Higher is more relevant; the scale is oracle-defined and must be
// deterministic for a fixed model version. The returned slice is
// aligned with texts.
type RelevanceOracle interface {
	Score(ctx context.Context, query string, texts []string) ([]float64, error)
}

// Summarizer generates a grounded summary of the final result set.
type Summarizer interface {
	Summarize(ctx context.Context, query string, hits []*clause.Hit) (string, error)
}

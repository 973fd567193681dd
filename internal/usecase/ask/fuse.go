package ask

import (
	"fmt"
	"sort"

	"github.com/clausehub/clausehub/internal/domain"
	"github.com/clausehub/clausehub/internal/domain/clause"
)

// fuse joins the two normalized result lists by clause key and combines
// them via a weighted linear score:
//
//	hybrid = alpha*bm25 + (1-alpha)*vec
//
// A clause absent from one backend contributes zero from that side, so
// cross-backend agreement is rewarded. The output is sorted descending
// by hybrid score, stable on first-encounter order, and truncated to
// topK. The join is strictly key-based; backends return different
// clauses, in different orders, with different cardinalities, and a hit
// without a complete key would corrupt the merge, so it fails the
// request instead.
func fuse(lexical, vector []*clause.Hit, alpha float64, topK int) ([]*clause.Hit, error) {
	merged := make(map[clause.Key]*clause.Hit, len(lexical)+len(vector))
	order := make([]clause.Key, 0, len(lexical)+len(vector))

	// Seed from the lexical list; highlight spans only exist here.
	for _, h := range lexical {
		if err := h.Validate(); err != nil {
			return nil, fmt.Errorf("%w: lexical backend: %w", domain.ErrMalformedHit, err)
		}
		h.BM25Score = h.NormScore
		h.VecScore = 0.0
		key := h.Key()
		if _, ok := merged[key]; !ok {
			order = append(order, key)
		}
		merged[key] = h
	}

	for _, h := range vector {
		if err := h.Validate(); err != nil {
			return nil, fmt.Errorf("%w: vector backend: %w", domain.ErrMalformedHit, err)
		}
		key := h.Key()
		if existing, ok := merged[key]; ok {
			existing.VecScore = h.NormScore
			// Keep the stronger backend's raw confidence for display.
			// The two scales are incommensurable; this value never
			// participates in ranking.
			if h.Score > existing.Score {
				existing.Score = h.Score
			}
			continue
		}
		h.BM25Score = 0.0
		h.VecScore = h.NormScore
		h.Highlight = nil
		merged[key] = h
		order = append(order, key)
	}

	fused := make([]*clause.Hit, 0, len(order))
	for _, key := range order {
		h := merged[key]
		h.HybridScore = alpha*h.BM25Score + (1-alpha)*h.VecScore
		fused = append(fused, h)
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].HybridScore > fused[j].HybridScore
	})

	if len(fused) > topK {
		fused = fused[:topK]
	}

	return fused, nil
}

package ask

import "github.com/clausehub/clausehub/internal/domain/clause"

// UniformPolicy decides what a result set with zero score variance
// normalizes to. Treating it as maximally relevant (the default) keeps a
// tied set contributing full weight to fusion instead of vanishing; the
// zero policy discards such a set's signal entirely.
type UniformPolicy string

const (
	// UniformAsMax maps an all-equal score set to 1.0.
	UniformAsMax UniformPolicy = "max"
	// UniformAsZero maps an all-equal score set to 0.0.
	UniformAsZero UniformPolicy = "zero"
)

// IsValid reports whether the policy is a known value.
func (p UniformPolicy) IsValid() bool {
	return p == UniformAsMax || p == UniformAsZero
}

func (p UniformPolicy) uniformValue() float64 {
	if p == UniformAsZero {
		return 0.0
	}
	return 1.0
}

// normalizeScores min-max rescales each hit's raw backend score into
// NormScore in [0,1], in place, preserving order. The range is computed
// fresh from this result set only; score distributions drift between
// requests, so nothing is cached. With distinct min and max the mapping
// is strictly linear (monotonic, order-preserving); a degenerate range
// follows the uniform policy.
func normalizeScores(hits []*clause.Hit, policy UniformPolicy) {
	if len(hits) == 0 {
		return
	}

	minScore, maxScore := hits[0].Score, hits[0].Score
	for _, h := range hits[1:] {
		if h.Score < minScore {
			minScore = h.Score
		}
		if h.Score > maxScore {
			maxScore = h.Score
		}
	}

	if maxScore == minScore {
		v := policy.uniformValue()
		for _, h := range hits {
			h.NormScore = v
		}
		return
	}

	for _, h := range hits {
		h.NormScore = (h.Score - minScore) / (maxScore - minScore)
	}
}

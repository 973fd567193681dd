package ask

import (
	"math"
	"testing"

	"github.com/clausehub/clausehub/internal/domain/clause"
)

func hitWithScore(contractID, clauseID string, score float64) *clause.Hit {
	return &clause.Hit{ContractID: contractID, ClauseID: clauseID, Score: score}
}

func TestNormalizeScores_LinearMapping(t *testing.T) {
	hits := []*clause.Hit{
		hitWithScore("c1", "s1", 2.0),
		hitWithScore("c1", "s2", 6.0),
		hitWithScore("c1", "s3", 10.0),
	}

	normalizeScores(hits, UniformAsMax)

	want := []float64{0.0, 0.5, 1.0}
	for i, h := range hits {
		if math.Abs(h.NormScore-want[i]) > 1e-9 {
			t.Errorf("hit %d: expected norm %v, got %v", i, want[i], h.NormScore)
		}
	}
}

func TestNormalizeScores_PreservesOrderAndMonotonicity(t *testing.T) {
	hits := []*clause.Hit{
		hitWithScore("c1", "s1", 13.7),
		hitWithScore("c1", "s2", 0.42),
		hitWithScore("c1", "s3", 7.1),
		hitWithScore("c1", "s4", 7.1),
	}

	normalizeScores(hits, UniformAsMax)

	if hits[0].ClauseID != "s1" || hits[3].ClauseID != "s4" {
		t.Fatal("normalization must not reorder hits")
	}
	for _, h := range hits {
		if h.NormScore < 0 || h.NormScore > 1 {
			t.Errorf("norm score %v out of [0,1]", h.NormScore)
		}
	}
	if hits[0].NormScore != 1.0 {
		t.Errorf("max raw score must map to 1.0, got %v", hits[0].NormScore)
	}
	if hits[1].NormScore != 0.0 {
		t.Errorf("min raw score must map to 0.0, got %v", hits[1].NormScore)
	}
	if hits[2].NormScore != hits[3].NormScore {
		t.Errorf("equal raw scores must map to equal norms: %v vs %v", hits[2].NormScore, hits[3].NormScore)
	}
}

func TestNormalizeScores_UniformPolicies(t *testing.T) {
	tests := []struct {
		name   string
		policy UniformPolicy
		want   float64
	}{
		{"max policy", UniformAsMax, 1.0},
		{"zero policy", UniformAsZero, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := []*clause.Hit{
				hitWithScore("c1", "s1", 3.3),
				hitWithScore("c1", "s2", 3.3),
				hitWithScore("c1", "s3", 3.3),
			}

			normalizeScores(hits, tt.policy)

			for i, h := range hits {
				if h.NormScore != tt.want {
					t.Errorf("hit %d: expected %v, got %v", i, tt.want, h.NormScore)
				}
			}
		})
	}
}

func TestNormalizeScores_SingleHit(t *testing.T) {
	hits := []*clause.Hit{hitWithScore("c1", "s1", 42.0)}

	normalizeScores(hits, UniformAsMax)

	if hits[0].NormScore != 1.0 {
		t.Errorf("single hit has zero variance, expected 1.0, got %v", hits[0].NormScore)
	}
}

func TestNormalizeScores_Empty(t *testing.T) {
	normalizeScores(nil, UniformAsMax)
	normalizeScores([]*clause.Hit{}, UniformAsZero)
}

func TestUniformPolicy_IsValid(t *testing.T) {
	if !UniformAsMax.IsValid() || !UniformAsZero.IsValid() {
		t.Error("known policies must be valid")
	}
	if UniformPolicy("median").IsValid() {
		t.Error("unknown policy must be invalid")
	}
}

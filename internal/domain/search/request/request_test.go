package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/clausehub/clausehub/internal/domain"
)

func TestNew_AcceptsValid(t *testing.T) {
	req, err := New("notice period", 10, 0.5, false, false, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.TopK() != 10 {
		t.Errorf("expected top_k 10, got %d", req.TopK())
	}
	if req.Alpha() != 0.5 {
		t.Errorf("expected alpha 0.5, got %v", req.Alpha())
	}
}

func TestNew_ClampsToServiceCap(t *testing.T) {
	req, err := New("notice period", 500, 0.5, false, false, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.TopK() != 100 {
		t.Errorf("expected top_k clamped to 100, got %d", req.TopK())
	}
}

func TestNew_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		query string
		topK  int
		alpha float64
	}{
		{"empty query", "", 10, 0.5},
		{"query too long", strings.Repeat("q", MaxQueryLength+1), 10, 0.5},
		{"zero top_k", "q", 0, 0.5},
		{"negative top_k", "q", -1, 0.5},
		{"alpha below range", "q", 10, -0.1},
		{"alpha above range", "q", 10, 1.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.query, tt.topK, tt.alpha, false, false, 100)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestNew_AlphaBoundariesAccepted(t *testing.T) {
	for _, alpha := range []float64{0.0, 1.0} {
		req, err := New("q", 10, alpha, false, false, 100)
		if err != nil {
			t.Errorf("alpha %v must be accepted: %v", alpha, err)
			continue
		}
		if req.Alpha() != alpha {
			t.Errorf("expected alpha %v, got %v", alpha, req.Alpha())
		}
	}
}

func TestNew_Flags(t *testing.T) {
	req, err := New("q", 10, 0.5, true, true, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !req.Rerank() || !req.Summarize() {
		t.Error("expected rerank and summarize flags set")
	}
}

package ask

import (
	"context"
	"errors"
	"testing"

	"github.com/clausehub/clausehub/internal/domain"
	"github.com/clausehub/clausehub/internal/domain/clause"
	"github.com/clausehub/clausehub/internal/domain/search/request"
)

// --- Mocks ---

type mockBackend struct {
	hits []*clause.Hit
	err  error
}

func (m *mockBackend) Search(_ context.Context, _ string, _ int) ([]*clause.Hit, error) {
	return m.hits, m.err
}

type mockOracle struct {
	scores []float64
	err    error
	calls  int
}

func (m *mockOracle) Score(_ context.Context, _ string, texts []string) ([]float64, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.scores != nil {
		return m.scores, nil
	}
	return make([]float64, len(texts)), nil
}

type mockSummarizer struct {
	summary string
	err     error
}

func (m *mockSummarizer) Summarize(_ context.Context, _ string, _ []*clause.Hit) (string, error) {
	return m.summary, m.err
}

func mustRequest(t *testing.T, topK int, alpha float64, rerank, summarize bool) *request.Request {
	t.Helper()
	req, err := request.New("termination notice period", topK, alpha, rerank, summarize, 100)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	return &req
}

func backendHit(clauseID string, score float64) *clause.Hit {
	return &clause.Hit{
		ContractID:  "c1",
		ClauseID:    clauseID,
		TextSnippet: "clause " + clauseID,
		Score:       score,
	}
}

// --- Tests ---

func TestAsk_FusesBothBackends(t *testing.T) {
	lexical := &mockBackend{hits: []*clause.Hit{backendHit("a", 10.0), backendHit("b", 5.0)}}
	vector := &mockBackend{hits: []*clause.Hit{backendHit("a", 0.9), backendHit("c", 0.8)}}

	svc := New(lexical, vector)
	resp, err := svc.Ask(context.Background(), mustRequest(t, 10, 0.5, false, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.Results) != 3 {
		t.Fatalf("expected 3 fused hits, got %d", len(resp.Results))
	}
	if resp.Results[0].ClauseID != "a" {
		t.Errorf("expected clause matched by both backends first, got %s", resp.Results[0].ClauseID)
	}
	if resp.Reranked {
		t.Error("response must not report reranked without the rerank flag")
	}
}

func TestAsk_OracleNotCalledWithoutFlag(t *testing.T) {
	oracle := &mockOracle{}
	svc := New(
		&mockBackend{hits: []*clause.Hit{backendHit("a", 1.0)}},
		&mockBackend{},
	).WithOracle(oracle)

	if _, err := svc.Ask(context.Background(), mustRequest(t, 10, 0.5, false, false)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oracle.calls != 0 {
		t.Errorf("oracle must not be invoked when rerank is off, got %d calls", oracle.calls)
	}
}

func TestAsk_RerankReordersResults(t *testing.T) {
	lexical := &mockBackend{hits: []*clause.Hit{
		backendHit("a", 10.0),
		backendHit("b", 8.0),
		backendHit("c", 2.0),
	}}
	// Oracle inverts the fused order.
	oracle := &mockOracle{scores: []float64{0.1, 0.5, 0.9}}

	svc := New(lexical, &mockBackend{}).WithOracle(oracle)
	resp, err := svc.Ask(context.Background(), mustRequest(t, 10, 0.5, true, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !resp.Reranked {
		t.Error("expected reranked response")
	}
	if len(resp.Results) != 3 {
		t.Fatalf("rerank must preserve candidate count, got %d", len(resp.Results))
	}
	if resp.Results[0].ClauseID != "c" {
		t.Errorf("expected oracle order, got %s first", resp.Results[0].ClauseID)
	}
	for _, h := range resp.Results {
		if h.RerankerScore == nil {
			t.Errorf("clause %s: missing reranker score", h.ClauseID)
		}
	}
}

func TestAsk_OracleFailureFailsRequest(t *testing.T) {
	svc := New(
		&mockBackend{hits: []*clause.Hit{backendHit("a", 1.0)}},
		&mockBackend{},
	).WithOracle(&mockOracle{err: domain.ErrOracleFailure})

	_, err := svc.Ask(context.Background(), mustRequest(t, 10, 0.5, true, false))
	if !errors.Is(err, domain.ErrOracleFailure) {
		t.Errorf("expected ErrOracleFailure, got %v", err)
	}
}

func TestAsk_OracleScoreCountMismatch(t *testing.T) {
	svc := New(
		&mockBackend{hits: []*clause.Hit{backendHit("a", 1.0), backendHit("b", 0.5)}},
		&mockBackend{},
	).WithOracle(&mockOracle{scores: []float64{0.9}})

	_, err := svc.Ask(context.Background(), mustRequest(t, 10, 0.5, true, false))
	if !errors.Is(err, domain.ErrOracleFailure) {
		t.Errorf("expected ErrOracleFailure on score count mismatch, got %v", err)
	}
}

func TestAsk_RerankWithoutOracleConfigured(t *testing.T) {
	svc := New(
		&mockBackend{hits: []*clause.Hit{backendHit("a", 1.0)}},
		&mockBackend{},
	)

	_, err := svc.Ask(context.Background(), mustRequest(t, 10, 0.5, true, false))
	if !errors.Is(err, domain.ErrOracleFailure) {
		t.Errorf("expected ErrOracleFailure without oracle, got %v", err)
	}
}

func TestAsk_BackendErrorPropagates(t *testing.T) {
	svc := New(
		&mockBackend{err: domain.ErrBackendUnavailable},
		&mockBackend{hits: []*clause.Hit{backendHit("a", 1.0)}},
	)

	_, err := svc.Ask(context.Background(), mustRequest(t, 10, 0.5, false, false))
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestAsk_BothBackendsEmpty(t *testing.T) {
	svc := New(&mockBackend{}, &mockBackend{})

	resp, err := svc.Ask(context.Background(), mustRequest(t, 10, 0.5, false, false))
	if err != nil {
		t.Fatalf("empty corpus is not an error: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected no results, got %d", len(resp.Results))
	}
}

func TestAsk_RerankOnEmptyResultsSucceeds(t *testing.T) {
	oracle := &mockOracle{}
	svc := New(&mockBackend{}, &mockBackend{}).WithOracle(oracle)

	resp, err := svc.Ask(context.Background(), mustRequest(t, 10, 0.5, true, false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oracle.calls != 0 {
		t.Errorf("oracle must not score an empty candidate set, got %d calls", oracle.calls)
	}
	if !resp.Reranked {
		t.Error("an empty reranked request still reports the stage as run")
	}
}

func TestAsk_Summarize(t *testing.T) {
	svc := New(
		&mockBackend{hits: []*clause.Hit{backendHit("a", 1.0)}},
		&mockBackend{},
	).WithSummarizer(&mockSummarizer{summary: "The contract allows termination with 30 days notice."})

	resp, err := svc.Ask(context.Background(), mustRequest(t, 10, 0.5, false, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Summary == "" {
		t.Error("expected a summary")
	}
}

func TestAsk_SummaryFailureFailsRequest(t *testing.T) {
	svc := New(
		&mockBackend{hits: []*clause.Hit{backendHit("a", 1.0)}},
		&mockBackend{},
	).WithSummarizer(&mockSummarizer{err: domain.ErrSummaryFailure})

	_, err := svc.Ask(context.Background(), mustRequest(t, 10, 0.5, false, true))
	if !errors.Is(err, domain.ErrSummaryFailure) {
		t.Errorf("expected ErrSummaryFailure, got %v", err)
	}
}

func TestAsk_SummarizeSkippedOnEmptyResults(t *testing.T) {
	svc := New(&mockBackend{}, &mockBackend{}).
		WithSummarizer(&mockSummarizer{err: errors.New("must not be called")})

	resp, err := svc.Ask(context.Background(), mustRequest(t, 10, 0.5, false, true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Summary != "" {
		t.Errorf("expected no summary for empty results, got %q", resp.Summary)
	}
}

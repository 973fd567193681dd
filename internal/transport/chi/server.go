// Package chi wires the HTTP API onto a chi router: request decoding,
// domain error mapping, and bearer authentication.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clausehub/clausehub/internal/domain"
	"github.com/clausehub/clausehub/internal/domain/clause"
	"github.com/clausehub/clausehub/internal/domain/search/request"
	askuc "github.com/clausehub/clausehub/internal/usecase/ask"
	healthuc "github.com/clausehub/clausehub/internal/usecase/health"
	ingestuc "github.com/clausehub/clausehub/internal/usecase/ingest"
)

const maxIngestBatch = 1000

// ErrorCode identifies a machine-readable API error class.
type ErrorCode string

const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeValidationFailed   ErrorCode = "validation_failed"
	CodeBackendUnavailable ErrorCode = "backend_unavailable"
	CodeMalformedHit       ErrorCode = "malformed_hit"
	CodeRerankFailed       ErrorCode = "rerank_failed"
	CodeSummaryFailed      ErrorCode = "summary_failed"
	CodeEmbeddingError     ErrorCode = "embedding_provider_error"
	CodeInternalError      ErrorCode = "internal_error"
)

// errorResponse is the JSON error body.
type errorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// SearchLimits carries the request-shaping knobs from configuration.
type SearchLimits struct {
	DefaultTopK  int
	MaxTopK      int
	DefaultAlpha float64
}

// Server exposes the retrieval pipeline over HTTP.
type Server struct {
	ask           *askuc.Service
	ingest        *ingestuc.Service
	health        *healthuc.Service
	limits        SearchLimits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ask *askuc.Service,
	ingest *ingestuc.Service,
	health *healthuc.Service,
	limits SearchLimits,
	logger *zap.Logger,
) *Server {
	s := &Server{
		ask:    ask,
		ingest: ingest,
		health: health,
		limits: limits,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidClause, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrMalformedHit, http.StatusBadGateway, CodeMalformedHit),
		sentinelHandler(domain.ErrBackendUnavailable, http.StatusBadGateway, CodeBackendUnavailable),
		sentinelHandler(domain.ErrOracleFailure, http.StatusBadGateway, CodeRerankFailed),
		sentinelHandler(domain.ErrSummaryFailure, http.StatusBadGateway, CodeSummaryFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingError),
	}
	return s
}

// Routes mounts all API handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/ask", s.Ask)
	r.Post("/ingest", s.Ingest)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// askRequest is the POST /ask body. Pointer fields distinguish an
// absent parameter from an explicit zero: alpha=0 is a valid pure
// vector search, not a request for the default.
type askRequest struct {
	Query     string   `json:"query"`
	TopK      *int     `json:"top_k,omitempty"`
	Alpha     *float64 `json:"alpha,omitempty"`
	Rerank    bool     `json:"rerank,omitempty"`
	Summarize bool     `json:"summarize,omitempty"`
}

// askResponse is the POST /ask body on success. Query, TopK and Alpha echo
// the effective request parameters after defaults and clamping.
type askResponse struct {
	Query    string        `json:"query"`
	TopK     int           `json:"top_k"`
	Alpha    float64       `json:"alpha"`
	Results  []*clause.Hit `json:"results"`
	Total    int           `json:"total"`
	Reranked bool          `json:"reranked"`
	Summary  string        `json:"summary,omitempty"`
}

// Ask handles POST /ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var body askRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	topK := s.limits.DefaultTopK
	if body.TopK != nil {
		topK = *body.TopK
	}
	alpha := s.limits.DefaultAlpha
	if body.Alpha != nil {
		alpha = *body.Alpha
	}

	req, err := request.New(body.Query, topK, alpha, body.Rerank, body.Summarize, s.limits.MaxTopK)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp, err := s.ask.Ask(r.Context(), &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		Query:    req.Query(),
		TopK:     req.TopK(),
		Alpha:    req.Alpha(),
		Results:  resp.Results,
		Total:    len(resp.Results),
		Reranked: resp.Reranked,
		Summary:  resp.Summary,
	})
}

// ingestRequest is the POST /ingest body.
type ingestRequest struct {
	Clauses []clause.Clause `json:"clauses"`
}

// ingestResponse is the POST /ingest body on success.
type ingestResponse struct {
	Indexed int    `json:"indexed"`
	Message string `json:"message"`
}

// Ingest handles POST /ingest.
func (s *Server) Ingest(w http.ResponseWriter, r *http.Request) {
	var body ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(body.Clauses) == 0 || len(body.Clauses) > maxIngestBatch {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("clauses count must be between 1 and %d", maxIngestBatch))
		return
	}

	if err := s.ingest.Ingest(r.Context(), body.Clauses); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		Indexed: len(body.Clauses),
		Message: fmt.Sprintf("indexed %d clauses", len(body.Clauses)),
	})
}

// healthResponse is the GET /health body.
type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidRequest,
		domain.ErrInvalidClause,
		domain.ErrMalformedHit,
		domain.ErrBackendUnavailable,
		domain.ErrOracleFailure,
		domain.ErrSummaryFailure,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

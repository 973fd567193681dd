// Package rerank provides an HTTP client for a cross-encoder scoring
// service exposing the text-embeddings-inference /rerank API.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clausehub/clausehub/internal/domain"
	"github.com/clausehub/clausehub/internal/metrics"
)

// Client scores (query, text) pairs against a cross-encoder model.
// Scores are on the model's own scale and deterministic for a fixed
// model version.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
}

// Config holds the rerank service settings.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewClient creates a rerank client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		http:    &http.Client{Timeout: timeout},
	}
}

type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
	Model string   `json:"model,omitempty"`
}

type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Score rates each text's relevance to the query in one batched call.
// The returned slice is aligned with texts.
func (c *Client) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(rerankRequest{Query: query, Texts: texts, Model: c.model})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", domain.ErrOracleFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", domain.ErrOracleFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RerankRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrOracleFailure, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.RerankRequestsTotal.WithLabelValues("error").Inc()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%w: rerank service returned %d: %s",
			domain.ErrOracleFailure, resp.StatusCode, bytes.TrimSpace(detail))
	}

	var results []rerankResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		metrics.RerankRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrOracleFailure, err)
	}

	// The service returns results sorted by score; realign by index so
	// every input text gets exactly one score.
	scores := make([]float64, len(texts))
	seen := make([]bool, len(texts))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(texts) {
			metrics.RerankRequestsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("%w: result index %d out of range [0,%d)",
				domain.ErrOracleFailure, r.Index, len(texts))
		}
		scores[r.Index] = r.Score
		seen[r.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			metrics.RerankRequestsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("%w: missing score for text %d", domain.ErrOracleFailure, i)
		}
	}

	metrics.RerankRequestsTotal.WithLabelValues("success").Inc()
	metrics.RerankRequestDuration.Observe(time.Since(start).Seconds())

	return scores, nil
}

// HealthCheck verifies rerank service availability.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rerank health check: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rerank health check: status %d", resp.StatusCode)
	}
	return nil
}

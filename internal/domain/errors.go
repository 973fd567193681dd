// Package domain holds shared domain contracts and error taxonomy.
package domain

import "errors"

var (
	// ErrBackendUnavailable signals that a retrieval backend is unreachable or erroring.
	ErrBackendUnavailable = errors.New("retrieval backend unavailable")
	// ErrMalformedHit signals a backend hit missing its join key.
	ErrMalformedHit = errors.New("malformed hit")
	// ErrOracleFailure signals a reranking oracle failure.
	ErrOracleFailure = errors.New("reranking oracle failure")
	// ErrSummaryFailure signals a summary generation failure.
	ErrSummaryFailure = errors.New("summary generation failure")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrInvalidRequest signals invalid request parameters.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrInvalidClause signals an unindexable clause record.
	ErrInvalidClause = errors.New("invalid clause")
)

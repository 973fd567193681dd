package clausehub

import "github.com/clausehub/clausehub/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrBackendUnavailable     = domain.ErrBackendUnavailable
	ErrMalformedHit           = domain.ErrMalformedHit
	ErrOracleFailure          = domain.ErrOracleFailure
	ErrSummaryFailure         = domain.ErrSummaryFailure
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrInvalidClause          = domain.ErrInvalidClause
)

// Package ingest loads contract clauses into both retrieval backends so
// that lexical and vector search see an identical corpus.
package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/clausehub/clausehub/internal/domain"
	"github.com/clausehub/clausehub/internal/domain/clause"
	"github.com/clausehub/clausehub/internal/logger"
	"github.com/clausehub/clausehub/internal/metrics"
)

// LexicalIndexer writes clauses into the full-text backend.
type LexicalIndexer interface {
	EnsureIndex(ctx context.Context) error
	IndexClauses(ctx context.Context, clauses []clause.Clause) error
}

// VectorIndexer embeds and writes clauses into the vector backend.
type VectorIndexer interface {
	EnsureCollection(ctx context.Context) error
	IndexClauses(ctx context.Context, clauses []clause.Clause) error
}

// Service indexes clause batches into both backends. Writes are
// idempotent per clause key, so re-ingesting a batch overwrites rather
// than duplicates.
type Service struct {
	lexical LexicalIndexer
	vector  VectorIndexer
}

func New(lexical LexicalIndexer, vector VectorIndexer) *Service {
	return &Service{lexical: lexical, vector: vector}
}

// Ingest validates and indexes a batch of clauses. The batch is
// rejected as a whole when any clause is invalid; partial ingestion
// would leave the two backends disagreeing about the corpus.
func (s *Service) Ingest(ctx context.Context, clauses []clause.Clause) error {
	log := logger.FromContext(ctx)

	if len(clauses) == 0 {
		return fmt.Errorf("%w: empty batch", domain.ErrInvalidClause)
	}
	for i, c := range clauses {
		if err := c.Validate(); err != nil {
			metrics.IngestClausesTotal.WithLabelValues("invalid").Add(float64(len(clauses)))
			return fmt.Errorf("clause %d: %w", i, err)
		}
	}

	start := time.Now()

	if err := s.lexical.EnsureIndex(ctx); err != nil {
		metrics.IngestClausesTotal.WithLabelValues("error").Add(float64(len(clauses)))
		return fmt.Errorf("ensure lexical index: %w", err)
	}
	if err := s.vector.EnsureCollection(ctx); err != nil {
		metrics.IngestClausesTotal.WithLabelValues("error").Add(float64(len(clauses)))
		return fmt.Errorf("ensure vector collection: %w", err)
	}

	if err := s.lexical.IndexClauses(ctx, clauses); err != nil {
		metrics.IngestClausesTotal.WithLabelValues("error").Add(float64(len(clauses)))
		return fmt.Errorf("index lexical: %w", err)
	}
	if err := s.vector.IndexClauses(ctx, clauses); err != nil {
		metrics.IngestClausesTotal.WithLabelValues("error").Add(float64(len(clauses)))
		return fmt.Errorf("index vector: %w", err)
	}

	metrics.IngestClausesTotal.WithLabelValues("success").Add(float64(len(clauses)))

	log.Info("ingested clause batch",
		zap.Int("clauses", len(clauses)),
		zap.Duration("took", time.Since(start)),
	)

	return nil
}

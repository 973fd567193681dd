package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks across the retrieval backends and
// external providers.
type Service struct {
	lexical   Pinger
	vector    Checker
	embedding Checker
	reranker  Checker
}

// New creates a Service. Any checker but lexical can be nil, in which
// case that component is skipped.
func New(lexical Pinger, vector, embedding, reranker Checker) *Service {
	return &Service{
		lexical:   lexical,
		vector:    vector,
		embedding: embedding,
		reranker:  reranker,
	}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.lexical.Ping(ctx); err != nil {
		checks["lexical"] = CheckError
	} else {
		checks["lexical"] = CheckOK
	}

	probe := func(name string, c Checker) {
		if c == nil {
			return
		}
		if err := c.HealthCheck(ctx); err != nil {
			checks[name] = CheckError
		} else {
			checks[name] = CheckOK
		}
	}
	probe("vector", s.vector)
	probe("embedding", s.embedding)
	probe("reranker", s.reranker)

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

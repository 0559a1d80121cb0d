// Package health aggregates the health of the search backends.
package health

import (
	"context"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all checked components are operational.
	Healthy Status = "ok"
	// Degraded indicates at least one component failed. Search still answers
	// from the paths that remain.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckMissing indicates a reachable store without the product index.
	CheckMissing CheckResult = "missing"
)

// Check names.
const (
	CheckStore     = "vector_store"
	CheckIndex     = "vector_index"
	CheckEmbedding = "embedding"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store     StorePinger
	index     IndexChecker
	embedding EmbeddingChecker
	logger    *zap.Logger
}

// New creates a Service. Any checker may be nil, in which case its check is skipped.
func New(store StorePinger, index IndexChecker, embedding EmbeddingChecker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, index: index, embedding: embedding, logger: logger}
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	storeUp := true
	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			s.logger.Warn("Vector store ping failed", zap.Error(err))
			checks[CheckStore] = CheckError
			storeUp = false
		} else {
			checks[CheckStore] = CheckOK
		}
	}

	if s.index != nil {
		switch {
		case !storeUp:
			checks[CheckIndex] = CheckError
		default:
			ok, err := s.index.Available(ctx)
			switch {
			case err != nil:
				s.logger.Warn("Vector index check failed", zap.Error(err))
				checks[CheckIndex] = CheckError
			case !ok:
				checks[CheckIndex] = CheckMissing
			default:
				checks[CheckIndex] = CheckOK
			}
		}
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			s.logger.Warn("Embedding provider health check failed", zap.Error(err))
			checks[CheckEmbedding] = CheckError
		} else {
			checks[CheckEmbedding] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v != CheckOK {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates search still answers, with reduced capability.
	Degraded Status = "degraded"
	// Unhealthy indicates the backend is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckDisabled marks a component that is not configured.
	CheckDisabled CheckResult = "disabled"
)

// checkTimeout bounds each probe.
const checkTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	// Documents is the index document count, -1 when unknown.
	Documents int
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	index     IndexInspector
	embedding EmbeddingChecker
}

// New creates a Service. index and embedding can be nil.
func New(db DBPinger, index IndexInspector, embedding EmbeddingChecker) *Service {
	return &Service{db: db, index: index, embedding: embedding}
}

// Check runs health checks against all components.
// A failing database is fatal; a missing index or embedding provider only degrades.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	report := Report{Status: Healthy, Checks: checks, Documents: -1}

	if err := probe(ctx, s.db.Ping); err != nil {
		checks["database"] = CheckError
		report.Status = Unhealthy
		return report
	}
	checks["database"] = CheckOK

	if s.index != nil {
		pctx, cancel := context.WithTimeout(ctx, checkTimeout)
		stats, err := s.index.Info(pctx)
		cancel()
		if err != nil {
			checks["index"] = CheckError
		} else {
			checks["index"] = CheckOK
			report.Documents = stats.NumDocs
		}
	}

	switch {
	case s.embedding == nil || !s.embedding.Available():
		checks["embedding"] = CheckDisabled
	case probe(ctx, s.embedding.HealthCheck) != nil:
		checks["embedding"] = CheckError
	default:
		checks["embedding"] = CheckOK
	}

	for _, v := range checks {
		if v == CheckError {
			report.Status = Degraded
			break
		}
	}
	return report
}

func probe(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return fn(ctx)
}

package health

import (
	"context"

	"github.com/kailas-cloud/bizdex/internal/domain"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexInspector reads the search index state.
type IndexInspector interface {
	Info(ctx context.Context) (domain.IndexStats, error)
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	Available() bool
	HealthCheck(ctx context.Context) error
}

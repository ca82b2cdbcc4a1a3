package index

import (
	"context"

	"github.com/kailas-cloud/bizdex/internal/domain"
)

// Repository defines the lifecycle contract of the search index.
type Repository interface {
	Name() string
	Create(ctx context.Context) error
	Exists(ctx context.Context) (bool, error)
	Drop(ctx context.Context, deleteDocs bool) error
	Info(ctx context.Context) (domain.IndexStats, error)
}

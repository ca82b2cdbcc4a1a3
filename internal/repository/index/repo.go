package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/bizdex/internal/db"
	"github.com/kailas-cloud/bizdex/internal/domain"
)

// store is the consumer interface for index lifecycle (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error)
}

// Repo implements usecase/index.Repository for one index definition.
type Repo struct {
	store store
	def   *db.IndexDefinition
}

// New creates an index repository.
func New(s store, def *db.IndexDefinition) *Repo {
	return &Repo{store: s, def: def}
}

// Name returns the index name.
func (r *Repo) Name() string { return r.def.Name }

// Create runs FT.CREATE.
func (r *Repo) Create(ctx context.Context) error {
	err := r.store.CreateIndex(ctx, r.def)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrIndexExists):
		return fmt.Errorf("index %s: %w", r.def.Name, domain.ErrIndexAlreadyExists)
	default:
		return fmt.Errorf("create index %s: %w: %w", r.def.Name, domain.ErrBackendUnavailable, err)
	}
}

// Exists reports whether the index is present.
func (r *Repo) Exists(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.def.Name)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w: %w", r.def.Name, domain.ErrBackendUnavailable, err)
	}
	return ok, nil
}

// Drop removes the index and, with deleteDocs, every key it covers.
func (r *Repo) Drop(ctx context.Context, deleteDocs bool) error {
	err := r.store.DropIndex(ctx, r.def.Name, deleteDocs)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrIndexNotFound):
		return fmt.Errorf("index %s: %w", r.def.Name, domain.ErrIndexNotFound)
	default:
		return fmt.Errorf("drop index %s: %w: %w", r.def.Name, domain.ErrBackendUnavailable, err)
	}
}

// Info returns the FT.INFO summary.
func (r *Repo) Info(ctx context.Context) (domain.IndexStats, error) {
	info, err := r.store.IndexInfo(ctx, r.def.Name)
	switch {
	case errors.Is(err, db.ErrIndexNotFound):
		return domain.IndexStats{}, fmt.Errorf("index %s: %w", r.def.Name, domain.ErrIndexNotFound)
	case err != nil:
		return domain.IndexStats{}, fmt.Errorf("index %s info: %w: %w", r.def.Name, domain.ErrBackendUnavailable, err)
	}
	return domain.IndexStats{
		Name:           r.def.Name,
		NumDocs:        info.NumDocs,
		Indexing:       info.Indexing,
		PercentIndexed: info.PercentIndexed,
		Failures:       info.IndexFailures,
	}, nil
}

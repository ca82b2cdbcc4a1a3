package index

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/bizdex/internal/db"
	"github.com/kailas-cloud/bizdex/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn   func(ctx context.Context, name string, deleteDocs bool) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	indexInfoFn   func(ctx context.Context, name string) (*db.IndexInfo, error)
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string, deleteDocs bool) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name, deleteDocs)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error) {
	if m.indexInfoFn != nil {
		return m.indexInfoFn(ctx, name)
	}
	return &db.IndexInfo{Name: name}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	def := db.NewIndex("estabelecimentos_v001").
		Prefix("biz:estabelecimentos_v001:").
		Tag("$.doc.id", "id").
		MustBuild()
	ms := &mockStore{}
	return New(ms, def), ms
}

func TestCreate(t *testing.T) {
	repo, ms := newTestRepo(t)
	var got *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		got = def
		return nil
	}
	if err := repo.Create(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Name != "estabelecimentos_v001" {
		t.Fatalf("definition not forwarded: %+v", got)
	}
}

func TestCreate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"exists", &db.Error{Op: db.OpCreateIndex, Err: db.ErrIndexExists}, domain.ErrIndexAlreadyExists},
		{"backend", &db.Error{Op: db.OpCreateIndex, Err: errors.New("conn reset")}, domain.ErrBackendUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, ms := newTestRepo(t)
			ms.createIndexFn = func(context.Context, *db.IndexDefinition) error { return tt.err }
			if err := repo.Create(context.Background()); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDrop(t *testing.T) {
	repo, ms := newTestRepo(t)
	var dd bool
	ms.dropIndexFn = func(_ context.Context, _ string, deleteDocs bool) error {
		dd = deleteDocs
		return nil
	}
	if err := repo.Drop(context.Background(), true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dd {
		t.Error("deleteDocs not forwarded")
	}

	ms.dropIndexFn = func(context.Context, string, bool) error { return db.ErrIndexNotFound }
	if err := repo.Drop(context.Background(), false); !errors.Is(err, domain.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestExists_BackendError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexExistsFn = func(context.Context, string) (bool, error) { return false, errors.New("down") }
	if _, err := repo.Exists(context.Background()); !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestInfo(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexInfoFn = func(_ context.Context, name string) (*db.IndexInfo, error) {
		return &db.IndexInfo{Name: name, NumDocs: 42, PercentIndexed: 1, IndexFailures: 1}, nil
	}
	stats, err := repo.Info(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.NumDocs != 42 || stats.Failures != 1 || !stats.Ready() {
		t.Errorf("stats = %+v", stats)
	}

	ms.indexInfoFn = func(context.Context, string) (*db.IndexInfo, error) { return nil, db.ErrIndexNotFound }
	if _, err := repo.Info(context.Background()); !errors.Is(err, domain.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

package index

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bizdex/internal/domain"
)

// --- Mocks ---

// memRepo behaves like a single backend index.
type memRepo struct {
	exists    bool
	creates   int
	drops     int
	dropErr   error
	createErr error
	existsErr error
	stats     domain.IndexStats
}

func (m *memRepo) Name() string { return "estabelecimentos_v001" }

func (m *memRepo) Create(context.Context) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.exists {
		return domain.ErrIndexAlreadyExists
	}
	m.exists = true
	m.creates++
	return nil
}

func (m *memRepo) Exists(context.Context) (bool, error) { return m.exists, m.existsErr }

func (m *memRepo) Drop(context.Context, bool) error {
	if m.dropErr != nil {
		return m.dropErr
	}
	m.exists = false
	m.drops++
	return nil
}

func (m *memRepo) Info(context.Context) (domain.IndexStats, error) { return m.stats, nil }

func newTestService(repo *memRepo) *Service {
	return New(repo, zap.NewNop())
}

func TestParsePolicy(t *testing.T) {
	for _, s := range []string{"fail", "skip", "recreate"} {
		if _, err := ParsePolicy(s); err != nil {
			t.Errorf("ParsePolicy(%q): %v", s, err)
		}
	}
	if _, err := ParsePolicy("drop"); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestProvision_Creates(t *testing.T) {
	repo := &memRepo{}
	out, err := newTestService(repo).Provision(context.Background(), PolicyFail)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Created || out.AlreadyExisted || out.Index != "estabelecimentos_v001" {
		t.Errorf("outcome = %+v", out)
	}
}

func TestProvision_SkipIsIdempotent(t *testing.T) {
	repo := &memRepo{}
	svc := newTestService(repo)
	ctx := context.Background()

	first, err := svc.Provision(ctx, PolicySkip)
	if err != nil || !first.Created {
		t.Fatalf("first: %+v, %v", first, err)
	}
	second, err := svc.Provision(ctx, PolicySkip)
	if err != nil {
		t.Fatalf("second provision must not fail: %v", err)
	}
	if second.Created || !second.AlreadyExisted {
		t.Errorf("second outcome = %+v", second)
	}
	if repo.creates != 1 || repo.drops != 0 {
		t.Errorf("creates = %d, drops = %d", repo.creates, repo.drops)
	}
}

func TestProvision_FailOnExisting(t *testing.T) {
	repo := &memRepo{exists: true}
	out, err := newTestService(repo).Provision(context.Background(), PolicyFail)
	if !errors.Is(err, domain.ErrIndexAlreadyExists) {
		t.Fatalf("expected ErrIndexAlreadyExists, got %v", err)
	}
	if !out.AlreadyExisted {
		t.Errorf("outcome = %+v", out)
	}
}

func TestProvision_Recreate(t *testing.T) {
	repo := &memRepo{exists: true}
	out, err := newTestService(repo).Provision(context.Background(), PolicyRecreate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Created || !out.Recreated {
		t.Errorf("outcome = %+v", out)
	}
	if repo.drops != 1 || repo.creates != 1 {
		t.Errorf("drops = %d, creates = %d", repo.drops, repo.creates)
	}
}

func TestProvision_RecreateMissingIndex(t *testing.T) {
	repo := &memRepo{}
	out, err := newTestService(repo).Provision(context.Background(), PolicyRecreate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Recreated || repo.drops != 0 {
		t.Errorf("nothing to drop: %+v, drops = %d", out, repo.drops)
	}
}

func TestProvision_RecreateDropFailureIsFatal(t *testing.T) {
	repo := &memRepo{exists: true, dropErr: domain.ErrBackendUnavailable}
	_, err := newTestService(repo).Provision(context.Background(), PolicyRecreate)
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
	if repo.creates != 0 {
		t.Error("create must not run after a failed drop")
	}
}

func TestProvision_BackendError(t *testing.T) {
	repo := &memRepo{createErr: domain.ErrBackendUnavailable}
	if _, err := newTestService(repo).Provision(context.Background(), PolicySkip); !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestDescribe(t *testing.T) {
	repo := &memRepo{stats: domain.IndexStats{Name: "estabelecimentos_v001", NumDocs: 10, PercentIndexed: 1}}
	stats, err := newTestService(repo).Describe(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.NumDocs != 10 || !stats.Ready() {
		t.Errorf("stats = %+v", stats)
	}
}

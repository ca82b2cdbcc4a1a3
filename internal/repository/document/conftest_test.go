package document

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/bizdex/internal/db"
	"github.com/kailas-cloud/bizdex/internal/domain/analysis"
	"github.com/kailas-cloud/bizdex/internal/domain/business"
	"github.com/kailas-cloud/bizdex/internal/domain/geo"
)

const (
	testIndex  = "estabelecimentos_v001"
	testPrefix = "biz:estabelecimentos_v001:"
)

// mockStore implements the consumer interface for tests.
// Without overrides it keeps written documents in memory.
type mockStore struct {
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) []error
	jsonGetFn      func(ctx context.Context, key string, paths ...string) ([]byte, error)
	indexInfoFn    func(ctx context.Context, name string) (*db.IndexInfo, error)

	data map[string][]byte
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) []error {
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	for _, it := range items {
		m.data[it.Key] = it.Data
	}
	return make([]error, len(items))
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	raw, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return append(append([]byte("["), raw...), ']'), nil
}

func (m *mockStore) IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error) {
	if m.indexInfoFn != nil {
		return m.indexInfoFn(ctx, name)
	}
	return &db.IndexInfo{Name: name, PercentIndexed: 1}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{data: make(map[string][]byte)}
	return New(ms, testIndex, testPrefix, analysis.New()), ms
}

func testDocument(t *testing.T) business.Document {
	t.Helper()
	loc, err := geo.NewPoint(-23.5505, -46.6333)
	if err != nil {
		t.Fatalf("point: %v", err)
	}
	return business.Document{
		ID:                  "12345678000190",
		TaxID:               "12.345.678/0001-90",
		LegalName:           "Marmoraria Pedra Bonita LTDA",
		TradeName:           "Pedra Bonita",
		ActivityCode:        "2391503",
		ActivitySection:     "C",
		ActivityDescription: "Aparelhamento de placas e execução de trabalhos em mármore, granito",
		Description:         "Extração e beneficiamento de granito",
		Status:              business.StatusActive,
		Size:                business.SizeEPP,
		LegalNature:         "Sociedade Empresária Limitada",
		Capital:             150000,
		FoundedAt:           time.Date(2010, 3, 15, 0, 0, 0, 0, time.UTC),
		Address: business.Address{
			Street:     "Rua das Pedras",
			Number:     "100",
			District:   "Centro",
			City:       "São Paulo",
			State:      "SP",
			PostalCode: "01001-000",
		},
		Location:  &loc,
		Embedding: []float32{0.1, 0.2, 0.3},
		IndexedAt: time.Unix(1_760_000_000, 0).UTC(),
	}
}

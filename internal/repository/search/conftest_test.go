package search

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/bizdex/internal/db"
	"github.com/kailas-cloud/bizdex/internal/domain/geo"
)

const (
	testIndex  = "estabelecimentos_v001"
	testPrefix = "biz:estabelecimentos_v001:"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn  func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	searchBM25Fn func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchBM25Fn != nil {
		return m.searchBM25Fn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, testIndex, testPrefix, 100), ms
}

func mustPoint(t *testing.T, lat, lon float64) geo.Point {
	t.Helper()
	p, err := geo.NewPoint(lat, lon)
	if err != nil {
		t.Fatalf("point: %v", err)
	}
	return p
}

// entry renders a search entry whose "doc" field holds the stored registry object.
func entry(t *testing.T, id string, score float64, loc *geo.Point) db.SearchEntry {
	t.Helper()
	doc := map[string]any{
		"id":                 id,
		"razao_social":       "Granitos " + id,
		"situacao_cadastral": "ACTIVE",
		"capital_social":     0,
		"endereco":           map[string]any{"cidade": "São Paulo", "uf": "SP"},
	}
	if loc != nil {
		doc["localizacao"] = map[string]any{"lat": loc.Lat(), "lon": loc.Lon()}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return db.SearchEntry{Key: testPrefix + id, Score: score, Fields: map[string]string{"doc": string(raw)}}
}

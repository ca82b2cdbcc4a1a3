package search

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bizdex/internal/domain"
	"github.com/kailas-cloud/bizdex/internal/domain/analysis"
	"github.com/kailas-cloud/bizdex/internal/domain/business"
	"github.com/kailas-cloud/bizdex/internal/domain/geo"
	"github.com/kailas-cloud/bizdex/internal/domain/search/filter"
	"github.com/kailas-cloud/bizdex/internal/domain/search/mode"
	"github.com/kailas-cloud/bizdex/internal/domain/search/query"
	"github.com/kailas-cloud/bizdex/internal/domain/search/request"
	"github.com/kailas-cloud/bizdex/internal/domain/search/result"
)

// --- Fakes ---

type fakeRetriever struct {
	mu       sync.Mutex
	lists    map[query.Source]result.Candidates
	errs     map[query.Source]error
	calls    []query.Source
	lastPlan *query.Plan
}

func (f *fakeRetriever) Retrieve(_ context.Context, src query.Source, p *query.Plan) (result.Candidates, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, src)
	f.lastPlan = p
	if err := f.errs[src]; err != nil {
		return result.Candidates{}, err
	}
	return f.lists[src], nil
}

func (f *fakeRetriever) called(src query.Source) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == src {
			return true
		}
	}
	return false
}

type fakeEmbedder struct {
	vec    []float32
	err    error
	off    bool
	called bool
}

func (f *fakeEmbedder) Available() bool { return !f.off }

func (f *fakeEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	f.called = true
	return f.vec, f.err
}

// blockingEmbedder waits for its context to end.
type blockingEmbedder struct{ called bool }

func (b *blockingEmbedder) Available() bool { return true }

func (b *blockingEmbedder) EmbedQuery(ctx context.Context, _ string) ([]float32, error) {
	b.called = true
	<-ctx.Done()
	return nil, ctx.Err()
}

type fakeDocs struct {
	docs map[string]business.Document
	err  error
}

func (f *fakeDocs) Get(_ context.Context, id string) (business.Document, error) {
	if f.err != nil {
		return business.Document{}, f.err
	}
	d, ok := f.docs[id]
	if !ok {
		return business.Document{}, domain.ErrDocumentNotFound
	}
	return d, nil
}

// --- Helpers ---

var saoPaulo = struct{ lat, lon float64 }{-23.5505, -46.6333}

func newTestService(t *testing.T, r Retriever, e QueryEmbedder) *Service {
	t.Helper()
	return New(r, e, &fakeDocs{}, analysis.New(), Config{Overfetch: 2}, zap.NewNop())
}

func newRequest(t *testing.T, text string, m mode.Mode, g *request.GeoQuery, size int) *request.Request {
	t.Helper()
	f, err := filter.NewExpression(nil, nil)
	if err != nil {
		t.Fatalf("filters: %v", err)
	}
	r, err := request.New(text, m, g, size, f)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return &r
}

func point(t *testing.T, lat, lon float64) *geo.Point {
	t.Helper()
	p, err := geo.NewPoint(lat, lon)
	if err != nil {
		t.Fatalf("point: %v", err)
	}
	return &p
}

func hit(id string, score float64, loc *geo.Point) result.Hit {
	return result.Hit{
		ID:    id,
		Score: score,
		Document: business.Document{
			ID:        id,
			LegalName: "Empresa " + id,
			Location:  loc,
			Embedding: []float32{0.1, 0.2},
		},
	}
}

func candidates(total int, hits ...result.Hit) result.Candidates {
	return result.Candidates{Hits: hits, Total: total}
}

func ids(items []result.Ranked) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].ID()
	}
	return out
}

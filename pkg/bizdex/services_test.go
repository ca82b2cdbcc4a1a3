package bizdex

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/bizdex/internal/domain"
	"github.com/kailas-cloud/bizdex/internal/domain/business"
	"github.com/kailas-cloud/bizdex/internal/domain/search/mode"
	"github.com/kailas-cloud/bizdex/internal/domain/search/request"
	"github.com/kailas-cloud/bizdex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/bizdex/internal/usecase/health"
	indexuc "github.com/kailas-cloud/bizdex/internal/usecase/index"
	"github.com/kailas-cloud/bizdex/internal/usecase/indexer"
)

// --- Provision / Info ---

func TestClient_Provision(t *testing.T) {
	var gotPolicy indexuc.Policy
	c := &Client{indexSvc: &mockIndexUC{
		provisionFn: func(_ context.Context, p indexuc.Policy) (indexuc.Outcome, error) {
			gotPolicy = p
			return indexuc.Outcome{Index: "estabelecimentos_v001", AlreadyExisted: true}, nil
		},
	}}

	res, err := c.Provision(context.Background(), PolicySkip)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPolicy != indexuc.PolicySkip {
		t.Errorf("policy = %q, want skip", gotPolicy)
	}
	if !res.AlreadyExisted || res.Created || res.Index != "estabelecimentos_v001" {
		t.Errorf("result = %+v", res)
	}
}

func TestClient_Provision_Errors(t *testing.T) {
	c := &Client{indexSvc: &mockIndexUC{
		provisionFn: func(context.Context, indexuc.Policy) (indexuc.Outcome, error) {
			return indexuc.Outcome{Index: "x", AlreadyExisted: true}, fmt.Errorf("provision: %w", domain.ErrIndexAlreadyExists)
		},
	}}

	if _, err := c.Provision(context.Background(), Policy("overwrite")); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("unknown policy: expected ErrInvalidRequest, got %v", err)
	}
	res, err := c.Provision(context.Background(), PolicyFail)
	if !errors.Is(err, ErrIndexAlreadyExists) {
		t.Errorf("expected ErrIndexAlreadyExists, got %v", err)
	}
	if !res.AlreadyExisted {
		t.Error("outcome must be reported alongside the error")
	}
}

func TestClient_Info(t *testing.T) {
	c := &Client{indexSvc: &mockIndexUC{
		describeFn: func(context.Context) (domain.IndexStats, error) {
			return domain.IndexStats{Name: "idx", NumDocs: 42, PercentIndexed: 1}, nil
		},
	}}

	info, err := c.Info(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Documents != 42 || !info.Ready {
		t.Errorf("info = %+v", info)
	}
}

// --- Index ---

func lat(v float64) *float64 { return &v }

func sampleRecords() []Record {
	return []Record{
		{CNPJ: "11.222.333/0001-81", RazaoSocial: "Marmoraria Pedra Bonita LTDA",
			Localizacao: &business.RecordPoint{Lat: lat(-23.55), Lon: lat(-46.63)}},
		{RazaoSocial: "Sem identificação"},
		{ExternalID: "areia-1", RazaoSocial: "Areial Tietê"},
	}
}

func TestClient_Index(t *testing.T) {
	var got []business.Document
	c := &Client{indexerSvc: &mockIndexerUC{
		runFn: func(_ context.Context, docs []business.Document) (indexer.Report, error) {
			got = docs
			return indexer.Report{RunID: "run-1", Succeeded: len(docs), Batches: 1}, nil
		},
	}}

	rep, err := c.Index(context.Background(), sampleRecords())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "11222333000181" || got[1].ID != "areia-1" {
		t.Fatalf("indexed docs = %+v", got)
	}
	if rep.Succeeded != 2 || rep.RunID != "run-1" {
		t.Errorf("report = %+v", rep)
	}
	if len(rep.Rejected) != 1 || rep.Rejected[0].Position != 1 {
		t.Errorf("rejected = %+v", rep.Rejected)
	}
}

func TestClient_Index_NothingIndexed(t *testing.T) {
	c := &Client{indexerSvc: &mockIndexerUC{
		runFn: func(_ context.Context, docs []business.Document) (indexer.Report, error) {
			return indexer.Report{Failed: len(docs), FailedBatches: 1,
				FirstErr: fmt.Errorf("embed: %w", domain.ErrEmbeddingUnavailable)}, nil
		},
	}}

	rep, err := c.Index(context.Background(), sampleRecords())
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Fatalf("expected ErrEmbeddingUnavailable, got %v", err)
	}
	if rep.Failed != 2 {
		t.Errorf("failed = %d, want 2", rep.Failed)
	}
}

func TestClient_Index_AllRejected(t *testing.T) {
	c := &Client{indexerSvc: &mockIndexerUC{
		runFn: func(context.Context, []business.Document) (indexer.Report, error) {
			t.Fatal("indexer must not run without valid documents")
			return indexer.Report{}, nil
		},
	}}

	rep, err := c.Index(context.Background(), []Record{{RazaoSocial: "sem id"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.Rejected) != 1 {
		t.Errorf("rejected = %+v", rep.Rejected)
	}
}

// --- Search / Get ---

func TestClient_Search(t *testing.T) {
	var got *request.Request
	d := 4.2
	c := &Client{searchSvc: &mockSearchUC{
		searchFn: func(_ context.Context, req *request.Request) (result.Page, error) {
			got = req
			return result.Page{
				Total: 1, Plan: "hybrid+geo",
				Items: []result.Ranked{result.Project(business.Document{ID: "a", Embedding: []float32{1}}, 0.03, &d)},
			}, nil
		},
	}}

	res, err := c.Search(context.Background(), Query{
		Text:     "areia cascalho construção",
		Semantic: true,
		Near:     &Near{Lat: -23.5505, Lon: -46.6333, RadiusKm: 50},
		Size:     3,
		Filters:  Filters{Status: "ativa", State: "sp"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Mode() != mode.Hybrid || got.Size() != 3 || !got.HasLocation() {
		t.Errorf("request = mode %q size %d geo %v", got.Mode(), got.Size(), got.HasLocation())
	}
	if n := len(got.Filters().Must()); n != 2 {
		t.Errorf("filters = %d, want 2", n)
	}
	if len(res.Hits) != 1 || res.Plan != "hybrid+geo" {
		t.Fatalf("results = %+v", res)
	}
	h := res.Hits[0]
	if h.DistanceKm == nil || *h.DistanceKm != 4.2 {
		t.Errorf("distance = %v", h.DistanceKm)
	}
	if h.Document.Embedding != nil {
		t.Error("embedding must be stripped")
	}
}

func TestClient_Search_InvalidQuery(t *testing.T) {
	c := &Client{searchSvc: &mockSearchUC{
		searchFn: func(context.Context, *request.Request) (result.Page, error) {
			t.Fatal("service must not be called")
			return result.Page{}, nil
		},
	}}

	tests := []struct {
		name   string
		q      Query
		target error
	}{
		{"empty", Query{}, ErrEmptyQuery},
		{"bad radius", Query{Near: &Near{Lat: -23, Lon: -46, RadiusKm: -1}}, ErrInvalidLocation},
		{"bad size filter", Query{Text: "pedra", Filters: Filters{CompanySize: "GIGANTE"}}, ErrInvalidDocument},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := c.Search(context.Background(), tc.q); !errors.Is(err, tc.target) {
				t.Errorf("expected %v, got %v", tc.target, err)
			}
		})
	}
}

func TestClient_Get(t *testing.T) {
	c := &Client{searchSvc: &mockSearchUC{
		getFn: func(_ context.Context, id string) (business.Document, error) {
			if id == "missing" {
				return business.Document{}, domain.ErrDocumentNotFound
			}
			return business.Document{ID: id, LegalName: "Areial Tietê"}, nil
		},
	}}

	doc, err := c.Get(context.Background(), "areia-1")
	if err != nil || doc.LegalName != "Areial Tietê" {
		t.Fatalf("doc = %+v, err = %v", doc, err)
	}
	if _, err := c.Get(context.Background(), "missing"); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

// --- Health ---

func TestClient_Health(t *testing.T) {
	c := &Client{healthSvc: &mockHealthUC{report: healthuc.Report{
		Status:    healthuc.Degraded,
		Checks:    map[string]healthuc.CheckResult{"database": healthuc.CheckOK, "embedding": healthuc.CheckError},
		Documents: 7,
	}}}

	h := c.Health(context.Background())
	if h.Status != "degraded" || h.Checks["embedding"] != "error" || h.Documents != 7 {
		t.Errorf("health = %+v", h)
	}
}

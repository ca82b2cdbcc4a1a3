package bizdex

import (
	"context"

	"github.com/kailas-cloud/bizdex/internal/domain"
	"github.com/kailas-cloud/bizdex/internal/domain/business"
	"github.com/kailas-cloud/bizdex/internal/domain/search/request"
	"github.com/kailas-cloud/bizdex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/bizdex/internal/usecase/health"
	indexuc "github.com/kailas-cloud/bizdex/internal/usecase/index"
	"github.com/kailas-cloud/bizdex/internal/usecase/indexer"
)

// --- indexUseCase mock ---

type mockIndexUC struct {
	provisionFn func(ctx context.Context, policy indexuc.Policy) (indexuc.Outcome, error)
	describeFn  func(ctx context.Context) (domain.IndexStats, error)
}

func (m *mockIndexUC) Provision(ctx context.Context, policy indexuc.Policy) (indexuc.Outcome, error) {
	return m.provisionFn(ctx, policy)
}

func (m *mockIndexUC) Describe(ctx context.Context) (domain.IndexStats, error) {
	return m.describeFn(ctx)
}

// --- indexerUseCase mock ---

type mockIndexerUC struct {
	runFn func(ctx context.Context, docs []business.Document) (indexer.Report, error)
}

func (m *mockIndexerUC) Run(ctx context.Context, docs []business.Document) (indexer.Report, error) {
	return m.runFn(ctx, docs)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, req *request.Request) (result.Page, error)
	getFn    func(ctx context.Context, id string) (business.Document, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	return m.searchFn(ctx, req)
}

func (m *mockSearchUC) Get(ctx context.Context, id string) (business.Document, error) {
	return m.getFn(ctx, id)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- BatchEmbedder mock ---

type mockEmbedder struct {
	fn func(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

func (m *mockEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	return m.fn(ctx, texts)
}

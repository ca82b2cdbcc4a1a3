package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/bizdex/internal/domain"
	"github.com/kailas-cloud/bizdex/internal/domain/analysis"
	"github.com/kailas-cloud/bizdex/internal/domain/business"
	"github.com/kailas-cloud/bizdex/internal/domain/search/query"
	"github.com/kailas-cloud/bizdex/internal/domain/search/request"
	"github.com/kailas-cloud/bizdex/internal/domain/search/result"
	"github.com/kailas-cloud/bizdex/internal/metrics"
)

// Degradation reasons reported on the degraded metric.
const (
	reasonUnconfigured   = "unconfigured"
	reasonEmbeddingError = "embedding_error"
)

// Config tunes query compilation.
type Config struct {
	// Overfetch multiplies the page size into the per-source candidate count.
	Overfetch int
	// Timeout bounds a whole search, embedding included. Zero means no bound.
	Timeout time.Duration
}

// embedShare is the part of Timeout the query embedding may use before the
// semantic clause is dropped.
const embedShare = 2

// Service compiles search requests into plans, runs every source of the plan
// concurrently and fuses the candidate lists.
type Service struct {
	retriever Retriever
	embed     QueryEmbedder
	docs      DocumentReader
	analyzer  *analysis.Analyzer
	overfetch    int
	timeout      time.Duration
	embedTimeout time.Duration
	logger       *zap.Logger
}

// New creates a search service. embed may be nil: semantic requests then run lexically.
func New(
	retriever Retriever,
	embed QueryEmbedder,
	docs DocumentReader,
	analyzer *analysis.Analyzer,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if cfg.Overfetch < query.MinOverfetch {
		cfg.Overfetch = query.MinOverfetch
	}
	return &Service{
		retriever: retriever,
		embed:     embed,
		docs:      docs,
		analyzer:  analyzer,
		overfetch:    cfg.Overfetch,
		timeout:      cfg.Timeout,
		embedTimeout: cfg.Timeout / embedShare,
		logger:       logger,
	}
}

// Search runs a validated request and returns at most req.Size() ranked results.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	start := time.Now()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	plan, degraded, err := s.compile(ctx, req)
	if err != nil {
		return result.Page{}, err
	}
	kind := string(plan.Kind())

	page, err := s.execute(ctx, &plan)
	metrics.SearchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(kind, "error").Inc()
		return result.Page{}, err
	}
	metrics.SearchRequestsTotal.WithLabelValues(kind, "ok").Inc()

	page.Plan = kind
	page.Degraded = degraded
	return page, nil
}

// Get fetches one document by identity with the embedding stripped.
func (s *Service) Get(ctx context.Context, id string) (business.Document, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return business.Document{}, fmt.Errorf("%w: empty document id", domain.ErrInvalidRequest)
	}
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return business.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return doc.WithoutEmbedding(), nil
}

// compile selects the plan. A failing, slow or missing embedding provider drops
// the semantic clause; when that leaves text without a relevance clause, lexical
// matching is re-enabled. Only cancellation of ctx itself fails the request.
func (s *Service) compile(ctx context.Context, req *request.Request) (query.Plan, bool, error) {
	b := query.NewBuilder(req.Size()).
		Overfetch(s.overfetch).
		Filter(req.Filters())

	text := req.Text()
	terms := query.TermsFrom(s.analyzer.Tokens(text))
	m := req.Mode()

	if len(terms) == 0 && !req.HasLocation() {
		return query.Plan{}, false, fmt.Errorf("compile query: %w", domain.ErrEmptyQuery)
	}

	if m.WantsLexical() {
		b.Match(terms)
	}

	degraded := false
	if m.WantsSemantic() && text != "" {
		vec, err := s.queryVector(ctx, text)
		switch {
		case err == nil:
			b.Nearest(vec)
		case ctx.Err() != nil:
			return query.Plan{}, false, fmt.Errorf("embed query: %w", ctx.Err())
		default:
			degraded = true
			if !m.WantsLexical() {
				b.Match(terms)
			}
		}
	}

	if req.HasLocation() {
		b.Within(req.Center(), req.GeoQuery().RadiusKm)
	}

	plan, err := b.Build()
	if err != nil {
		return query.Plan{}, false, fmt.Errorf("compile query: %w", err)
	}
	return plan, degraded, nil
}

func (s *Service) queryVector(ctx context.Context, text string) ([]float32, error) {
	if s.embed == nil || !s.embed.Available() {
		metrics.SearchDegradedTotal.WithLabelValues(reasonUnconfigured).Inc()
		s.logger.Warn("Semantic search requested without an embedding provider, running lexically")
		return nil, domain.ErrEmbeddingUnavailable
	}

	embedCtx := ctx
	if s.embedTimeout > 0 {
		var cancel context.CancelFunc
		embedCtx, cancel = context.WithTimeout(ctx, s.embedTimeout)
		defer cancel()
	}

	vec, err := s.embed.EmbedQuery(embedCtx, text)
	if err != nil {
		if ctx.Err() == nil {
			metrics.SearchDegradedTotal.WithLabelValues(reasonEmbeddingError).Inc()
			s.logger.Warn("Query embedding failed, dropping semantic clause", zap.Error(err))
		}
		return nil, err
	}
	return vec, nil
}

// execute retrieves every plan source concurrently and fuses the lists.
// Any source failure fails the search and cancels the others.
func (s *Service) execute(ctx context.Context, p *query.Plan) (result.Page, error) {
	sources := p.Sources()
	lists := make([]result.Candidates, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			c, err := s.retriever.Retrieve(gctx, src, p)
			if err != nil {
				return fmt.Errorf("%s retrieval: %w", src, err)
			}
			lists[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result.Page{}, err //nolint:wrapcheck // wrapped per source above
	}

	total := 0
	for _, l := range lists {
		total = max(total, l.Total)
	}

	ranked := fuseRRF(p, sources, lists)
	items := make([]result.Ranked, len(ranked))
	for i, f := range ranked {
		items[i] = result.Project(f.hit.Document, f.score, f.distance)
	}
	return result.Page{Items: items, Total: total}, nil
}

package bizdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/bizdex/internal/db/redis"
	"github.com/kailas-cloud/bizdex/internal/domain"
	"github.com/kailas-cloud/bizdex/internal/domain/analysis"
	"github.com/kailas-cloud/bizdex/internal/domain/business"
	"github.com/kailas-cloud/bizdex/internal/domain/search/request"
	"github.com/kailas-cloud/bizdex/internal/domain/search/result"
	"github.com/kailas-cloud/bizdex/internal/metrics"
	documentrepo "github.com/kailas-cloud/bizdex/internal/repository/document"
	"github.com/kailas-cloud/bizdex/internal/repository/embcache"
	indexrepo "github.com/kailas-cloud/bizdex/internal/repository/index"
	searchrepo "github.com/kailas-cloud/bizdex/internal/repository/search"
	openaiEmb "github.com/kailas-cloud/bizdex/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/bizdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/bizdex/internal/usecase/health"
	indexuc "github.com/kailas-cloud/bizdex/internal/usecase/index"
	"github.com/kailas-cloud/bizdex/internal/usecase/indexer"
	searchuc "github.com/kailas-cloud/bizdex/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	embeddingCacheTTL       = 30 * 24 * time.Hour
)

// Internal interfaces, replaced by fakes in tests.
type indexUseCase interface {
	Provision(ctx context.Context, policy indexuc.Policy) (indexuc.Outcome, error)
	Describe(ctx context.Context) (domain.IndexStats, error)
}

type indexerUseCase interface {
	Run(ctx context.Context, docs []business.Document) (indexer.Report, error)
}

type searchUseCase interface {
	Search(ctx context.Context, req *request.Request) (result.Page, error)
	Get(ctx context.Context, id string) (business.Document, error)
}

// Client is the bizdex SDK entry point.
type Client struct {
	store      *dbRedis.Store
	indexSvc   indexUseCase
	indexerSvc indexerUseCase
	searchSvc  searchUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a Client and connects to Redis.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("bizdex: database address required (use WithRedis)")
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("bizdex: create redis store: %w", err)
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("bizdex: database not ready: %w", err)
	}

	c, err := wireClient(store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(store *dbRedis.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	if cfg.keyPrefix == "" {
		cfg.keyPrefix = "bizdex:" + cfg.indexName + ":"
	}

	analyzer := analysis.New()
	def, err := documentrepo.Schema(documentrepo.SchemaConfig{
		IndexName:       cfg.indexName,
		KeyPrefix:       cfg.keyPrefix,
		Dimensions:      cfg.dimensions,
		HNSWM:           cfg.hnswM,
		HNSWEFConstruct: cfg.hnswEFConstruct,
		HNSWEFRuntime:   cfg.hnswEFRuntime,
	}, analyzer)
	if err != nil {
		return nil, fmt.Errorf("bizdex: index schema: %w", err)
	}

	gateway := newGateway(cfg, store)

	idxRepo := indexrepo.New(store, def)
	docRepo := documentrepo.New(store, cfg.indexName, cfg.keyPrefix, analyzer)
	searchRepo := searchrepo.New(store, cfg.indexName, cfg.keyPrefix, cfg.hnswEFRuntime)

	return &Client{
		store:    store,
		indexSvc: indexuc.New(idxRepo, cfg.logger),
		indexerSvc: indexer.New(gateway, docRepo, indexer.Config{
			BatchSize: cfg.batchSize,
			Workers:   cfg.workers,
		}, cfg.logger),
		searchSvc: searchuc.New(searchRepo, gateway, docRepo, analyzer, searchuc.Config{
			Timeout: cfg.searchTimeout,
		}, cfg.logger),
		healthSvc: healthuc.New(store, idxRepo, gateway),
		obs:       obs,
	}, nil
}

// newGateway returns nil when no embedder is configured.
func newGateway(cfg *clientConfig, store *dbRedis.Store) *embeddinguc.Gateway {
	var inner domain.BatchEmbedder
	model := ""
	switch {
	case cfg.embedder != nil:
		inner = &embedderAdapter{inner: cfg.embedder}
	case cfg.openai != nil:
		o := cfg.openai
		model = o.Model
		if model == "" {
			model = "text-embedding-3-small"
		}
		provider := openaiEmb.ProviderOpenAI
		if o.Azure {
			provider = openaiEmb.ProviderAzure
		}
		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     o.APIKey,
			BaseURL:    o.BaseURL,
			Model:      model,
			Dimensions: cfg.dimensions,
			Provider:   provider,
			Deployment: o.Deployment,
			APIVersion: o.APIVersion,
			Logger:     cfg.logger,
		})
		inner = embcache.New(base, store, model, embeddingCacheTTL, metrics.EmbeddingCacheTotal, cfg.logger)
	default:
		return nil
	}
	return embeddinguc.NewGateway(inner, embeddinguc.Config{
		Model:      model,
		Dimensions: cfg.dimensions,
		MaxRetries: embeddinguc.DefaultMaxRetries,
	}, cfg.logger)
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bizdex/internal/config"
	dbRedis "github.com/kailas-cloud/bizdex/internal/db/redis"
	"github.com/kailas-cloud/bizdex/internal/domain"
	"github.com/kailas-cloud/bizdex/internal/domain/analysis"
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

// app is the composition root shared by every command.
type app struct {
	store   *dbRedis.Store
	docs    *documentrepo.Repo
	index   *indexuc.Service
	gateway *embeddinguc.Gateway
	search  *searchuc.Service
	health  *healthuc.Service
	indexer *indexer.Service
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()
	metrics.RegisterIndexerMetrics()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:        cfg.Database.Addrs,
		Username:     cfg.Database.Username,
		Password:     cfg.Database.Password,
		DB:           cfg.Database.DB,
		WriteTimeout: time.Duration(cfg.Database.WriteTimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Debug("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

	analyzer := analysis.New()
	def, err := documentrepo.Schema(documentrepo.SchemaConfig{
		IndexName:       cfg.Index.Name,
		KeyPrefix:       cfg.Index.KeyPrefix,
		Dimensions:      cfg.Embedding.Dimensions,
		HNSWM:           cfg.Index.HNSWM,
		HNSWEFConstruct: cfg.Index.HNSWEFConstruct,
		HNSWEFRuntime:   cfg.Index.HNSWEFRuntime,
	}, analyzer)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build index schema: %w", err)
	}

	gateway := buildGateway(cfg, store, logger)

	idxRepo := indexrepo.New(store, def)
	docRepo := documentrepo.New(store, cfg.Index.Name, cfg.Index.KeyPrefix, analyzer)
	searchRepo := searchrepo.New(store, cfg.Index.Name, cfg.Index.KeyPrefix, cfg.Index.HNSWEFRuntime)

	return &app{
		store:   store,
		docs:    docRepo,
		index:   indexuc.New(idxRepo, logger),
		gateway: gateway,
		search: searchuc.New(searchRepo, gateway, docRepo, analyzer, searchuc.Config{
			Overfetch: cfg.Search.Overfetch,
			Timeout:   time.Duration(cfg.Search.TimeoutSec) * time.Second,
		}, logger),
		health: healthuc.New(store, idxRepo, gateway),
		indexer: indexer.New(gateway, docRepo, indexer.Config{
			BatchSize:      cfg.Indexer.BatchSize,
			Workers:        cfg.Indexer.Workers,
			RefreshTimeout: time.Duration(cfg.Indexer.RefreshTimeoutSec) * time.Second,
		}, logger),
	}, nil
}

func (a *app) Close() {
	a.store.Close()
}

// buildGateway assembles the embedding chain: provider -> cache -> gateway.
// Without a configured provider the gateway is nil and reports itself unavailable.
func buildGateway(cfg *config.Config, store *dbRedis.Store, logger *zap.Logger) *embeddinguc.Gateway {
	if !cfg.EmbeddingEnabled() {
		logger.Info("No embedding provider configured, semantic search disabled")
		return nil
	}

	e := cfg.Embedding
	provider := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     e.APIKey,
		BaseURL:    e.BaseURL,
		Model:      e.Model,
		Dimensions: e.Dimensions,
		User:       e.User,
		Provider:   e.Provider,
		Deployment: e.Deployment,
		APIVersion: e.APIVersion,
		Logger:     logger,
	})

	var inner domain.BatchEmbedder = provider
	if e.Cache.Enabled {
		inner = embcache.New(provider, store, e.Model,
			time.Duration(e.Cache.TTLHours)*time.Hour, metrics.EmbeddingCacheTotal, logger)
	}

	logger.Info("Embedding gateway created",
		zap.String("provider", e.Provider),
		zap.String("model", e.Model),
		zap.Int("dimensions", e.Dimensions),
		zap.Bool("cache", e.Cache.Enabled),
	)
	return embeddinguc.NewGateway(inner, embeddinguc.Config{
		Model:      e.Model,
		Dimensions: e.Dimensions,
		BatchSize:  e.BatchSize,
		Timeout:    e.EmbeddingTimeout(),
		MaxRetries: e.MaxRetries,
		Backoff:    e.Backoff(),
	}, logger)
}

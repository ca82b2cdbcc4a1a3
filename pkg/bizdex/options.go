package bizdex

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	username string
	password string

	embedder BatchEmbedder
	openai   *OpenAIConfig

	indexName       string
	keyPrefix       string
	dimensions      int
	hnswM           int
	hnswEFConstruct int
	hnswEFRuntime   int

	batchSize     int
	workers       int
	searchTimeout time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

func defaultConfig() *clientConfig {
	return &clientConfig{
		indexName:       DefaultIndexName,
		dimensions:      DefaultDimensions,
		hnswM:           16,
		hnswEFConstruct: 200,
		hnswEFRuntime:   100,
		searchTimeout:   10 * time.Second,
	}
}

// OpenAIConfig selects an OpenAI-compatible or Azure OpenAI embeddings endpoint.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	// Model defaults to text-embedding-3-small.
	Model string
	// Azure marks BaseURL as an Azure OpenAI resource; Deployment names the
	// deployment serving Model.
	Azure      bool
	Deployment string
	APIVersion string
}

// WithRedis configures the client to connect to a single Redis node.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedisCluster configures seed addresses and ACL credentials.
func WithRedisCluster(addrs []string, username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = addrs
		c.username = username
		c.password = password
	})
}

// WithEmbedder sets a custom embedding provider.
func WithEmbedder(e BatchEmbedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
		c.openai = nil
	})
}

// WithOpenAI embeds through an OpenAI-compatible endpoint.
// Vectors are cached in Redis per model and text.
func WithOpenAI(cfg OpenAIConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai = &cfg
		c.embedder = nil
	})
}

// WithIndex sets the index name. The key prefix defaults to "bizdex:<name>:".
func WithIndex(name, keyPrefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexName = name
		c.keyPrefix = keyPrefix
	})
}

// WithVectorDimensions sets the embedding width. Defaults to 1536.
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithHNSW configures HNSW index parameters.
// Defaults: M=16, EFConstruct=200, EFRuntime=100.
func WithHNSW(m, efConstruct, efRuntime int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
		c.hnswEFRuntime = efRuntime
	})
}

// WithIndexing tunes bulk indexing: records per batch and concurrent batches.
func WithIndexing(batchSize, workers int) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchSize = batchSize
		c.workers = workers
	})
}

// WithSearchTimeout bounds a single search. Zero disables the bound.
func WithSearchTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchTimeout = d
	})
}

// WithLogger enables structured logging. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Embedding providers.
const (
	ProviderNone   = ""
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"
)

// Config holds the bizdex configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Indexer   IndexerConfig   `yaml:"indexer"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds search backend connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	WriteTimeoutMs   int      `yaml:"write_timeout_ms"`
}

// EmbeddingConfig selects and tunes the embedding provider.
// An empty provider disables semantic search.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // openai, azure, or empty
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
	User       string `yaml:"user"`
	// Azure only.
	Deployment string `yaml:"deployment"`
	APIVersion string `yaml:"api_version"`

	BatchSize  int         `yaml:"batch_size"`
	TimeoutSec int         `yaml:"timeout_sec"`
	MaxRetries int         `yaml:"max_retries"`
	BackoffMs  int         `yaml:"backoff_ms"`
	Cache      CacheConfig `yaml:"cache"`
}

// CacheConfig holds the embedding cache settings.
type CacheConfig struct {
	Enabled  bool `yaml:"enabled"`
	TTLHours int  `yaml:"ttl_hours"`
}

// IndexConfig holds index naming and HNSW settings.
type IndexConfig struct {
	Name            string `yaml:"name"`
	KeyPrefix       string `yaml:"key_prefix"`
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
	HNSWEFRuntime   int    `yaml:"hnsw_ef_runtime"`
	// OnExisting is the provisioning policy: fail, skip, recreate.
	OnExisting string `yaml:"on_existing"`
}

// IndexerConfig tunes bulk indexing.
type IndexerConfig struct {
	BatchSize         int `yaml:"batch_size"`
	Workers           int `yaml:"workers"`
	RefreshTimeoutSec int `yaml:"refresh_timeout_sec"`
}

// SearchConfig tunes query execution.
type SearchConfig struct {
	Overfetch  int `yaml:"overfetch"`
	TimeoutSec int `yaml:"timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse expands ${VAR} references, decodes, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	e := &c.Embedding
	e.Provider = strings.ToLower(strings.TrimSpace(e.Provider))
	if e.Model == "" {
		e.Model = "text-embedding-3-small"
	}
	if e.Dimensions <= 0 {
		e.Dimensions = 1536
	}
	if e.APIVersion == "" && e.Provider == ProviderAzure {
		e.APIVersion = "2024-02-01"
	}
	if e.BatchSize <= 0 {
		e.BatchSize = 20
	}
	if e.TimeoutSec <= 0 {
		e.TimeoutSec = 30
	}
	if e.MaxRetries < 0 {
		e.MaxRetries = 0
	}
	if e.BackoffMs <= 0 {
		e.BackoffMs = 500
	}
	if e.Cache.TTLHours <= 0 {
		e.Cache.TTLHours = 24 * 30
	}

	if c.Index.Name == "" {
		c.Index.Name = "estabelecimentos_v001"
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "bizdex:" + c.Index.Name + ":"
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Index.HNSWEFRuntime <= 0 {
		c.Index.HNSWEFRuntime = 100
	}
	if c.Index.OnExisting == "" {
		c.Index.OnExisting = "fail"
	}

	if c.Indexer.BatchSize <= 0 {
		c.Indexer.BatchSize = 20
	}
	if c.Indexer.Workers <= 0 {
		c.Indexer.Workers = 1
	}
	if c.Indexer.RefreshTimeoutSec <= 0 {
		c.Indexer.RefreshTimeoutSec = 30
	}

	if c.Search.Overfetch <= 0 {
		c.Search.Overfetch = 2
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}

	e := c.Embedding
	switch e.Provider {
	case ProviderNone:
	case ProviderOpenAI:
		if e.APIKey == "" {
			return fmt.Errorf("embedding.api_key is required for provider %q", e.Provider)
		}
	case ProviderAzure:
		if e.APIKey == "" || e.BaseURL == "" || e.Deployment == "" {
			return fmt.Errorf("embedding.api_key, base_url and deployment are required for provider %q", e.Provider)
		}
	default:
		return fmt.Errorf("embedding.provider must be \"openai\", \"azure\" or empty, got %q", e.Provider)
	}

	switch c.Index.OnExisting {
	case "fail", "skip", "recreate":
	default:
		return fmt.Errorf("index.on_existing must be \"fail\", \"skip\" or \"recreate\", got %q", c.Index.OnExisting)
	}
	if c.Search.Overfetch < 2 {
		return fmt.Errorf("search.overfetch must be at least 2, got %d", c.Search.Overfetch)
	}
	return nil
}

// EmbeddingEnabled reports whether an embedding provider is configured.
func (c *Config) EmbeddingEnabled() bool { return c.Embedding.Provider != ProviderNone }

// EmbeddingTimeout returns the per-call embedding timeout.
func (e EmbeddingConfig) EmbeddingTimeout() time.Duration {
	return time.Duration(e.TimeoutSec) * time.Second
}

// Backoff returns the initial retry delay.
func (e EmbeddingConfig) Backoff() time.Duration {
	return time.Duration(e.BackoffMs) * time.Millisecond
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 0},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_EmbeddingProvider(t *testing.T) {
	tests := []struct {
		name    string
		emb     EmbeddingConfig
		wantErr string
	}{
		{"disabled", EmbeddingConfig{}, ""},
		{"openai", EmbeddingConfig{Provider: ProviderOpenAI, APIKey: "sk-test"}, ""},
		{"openai without key", EmbeddingConfig{Provider: ProviderOpenAI}, "embedding.api_key is required"},
		{"azure", EmbeddingConfig{
			Provider: ProviderAzure, APIKey: "k", BaseURL: "https://x.openai.azure.com", Deployment: "emb",
		}, ""},
		{"azure without deployment", EmbeddingConfig{
			Provider: ProviderAzure, APIKey: "k", BaseURL: "https://x.openai.azure.com",
		}, "deployment are required"},
		{"unknown", EmbeddingConfig{Provider: "nebius"}, `embedding.provider must be "openai", "azure" or empty, got "nebius"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Embedding = tt.emb
			cfg.ApplyDefaults()

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_OnExisting(t *testing.T) {
	for _, policy := range []string{"fail", "skip", "recreate"} {
		cfg := validConfig()
		cfg.Index.OnExisting = policy
		if err := cfg.Validate(); err != nil {
			t.Errorf("policy %q: unexpected error: %v", policy, err)
		}
	}

	cfg := validConfig()
	cfg.Index.OnExisting = "overwrite"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Embedding.BatchSize != 20 {
		t.Errorf("expected embedding BatchSize=20, got %d", cfg.Embedding.BatchSize)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" || cfg.Embedding.Dimensions != 1536 {
		t.Errorf("unexpected model defaults: %q/%d", cfg.Embedding.Model, cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.EmbeddingTimeout() != 30*time.Second {
		t.Errorf("expected 30s embedding timeout, got %v", cfg.Embedding.EmbeddingTimeout())
	}
	if cfg.Embedding.Backoff() != 500*time.Millisecond {
		t.Errorf("expected 500ms backoff, got %v", cfg.Embedding.Backoff())
	}
	if cfg.Index.Name != "estabelecimentos_v001" {
		t.Errorf("expected index name estabelecimentos_v001, got %q", cfg.Index.Name)
	}
	if cfg.Index.KeyPrefix != "bizdex:estabelecimentos_v001:" {
		t.Errorf("unexpected KeyPrefix %q", cfg.Index.KeyPrefix)
	}
	if cfg.Index.HNSWM != 16 || cfg.Index.HNSWEFConstruct != 200 || cfg.Index.HNSWEFRuntime != 100 {
		t.Errorf("unexpected HNSW defaults: %+v", cfg.Index)
	}
	if cfg.Index.OnExisting != "fail" {
		t.Errorf("expected OnExisting=fail, got %q", cfg.Index.OnExisting)
	}
	if cfg.Indexer.BatchSize != 20 || cfg.Indexer.Workers != 1 || cfg.Indexer.RefreshTimeoutSec != 30 {
		t.Errorf("unexpected indexer defaults: %+v", cfg.Indexer)
	}
	if cfg.Search.Overfetch != 2 {
		t.Errorf("expected Overfetch=2, got %d", cfg.Search.Overfetch)
	}
	if cfg.EmbeddingEnabled() {
		t.Error("embedding must be disabled without a provider")
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 9090, ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Index:   IndexConfig{Name: "custom", KeyPrefix: "c:", HNSWM: 32},
		Indexer: IndexerConfig{BatchSize: 10, Workers: 4},
		Search:  SearchConfig{Overfetch: 5},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9090 || cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("http overridden: %+v", cfg.HTTP)
	}
	if cfg.Index.KeyPrefix != "c:" || cfg.Index.HNSWM != 32 {
		t.Errorf("index overridden: %+v", cfg.Index)
	}
	if cfg.Indexer.BatchSize != 10 || cfg.Indexer.Workers != 4 {
		t.Errorf("indexer overridden: %+v", cfg.Indexer)
	}
	if cfg.Search.Overfetch != 5 {
		t.Errorf("search overridden: %+v", cfg.Search)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("BIZDEX_TEST_ADDR", "redis:6380")
	t.Setenv("BIZDEX_TEST_KEY", "sk-live")

	cfg, err := Parse([]byte(`
http:
  port: ${BIZDEX_TEST_PORT:-8181}
database:
  addrs: ["${BIZDEX_TEST_ADDR}"]
embedding:
  provider: OpenAI
  api_key: ${BIZDEX_TEST_KEY}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8181 {
		t.Errorf("expected default port 8181, got %d", cfg.HTTP.Port)
	}
	if len(cfg.Database.Addrs) != 1 || cfg.Database.Addrs[0] != "redis:6380" {
		t.Errorf("addrs = %v", cfg.Database.Addrs)
	}
	if cfg.Embedding.Provider != ProviderOpenAI || cfg.Embedding.APIKey != "sk-live" {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
	if !cfg.EmbeddingEnabled() {
		t.Error("embedding must be enabled")
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Error("expected YAML error")
	}
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil {
		t.Error("expected validation error for missing addrs")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte("database:\n  addrs: [\"localhost:6379\"]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected default port, got %d", cfg.HTTP.Port)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_RepositoryConfigs(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com")
	for _, env := range []string{"local", "prod"} {
		t.Run(env, func(t *testing.T) {
			if _, err := Load(env); err != nil {
				t.Fatalf("config/%s.yaml: %v", env, err)
			}
		})
	}
}

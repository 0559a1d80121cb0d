package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{
		Catalog:  CatalogConfig{BaseURL: "https://catalog.example.com"},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	disabled := false
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"catalog base", func(c *Config) { c.Catalog.BaseURL = "" }, "catalog.base_url"},
		{"rate limit", func(c *Config) { c.Catalog.RateLimit = -1 }, "catalog.rate_limit_rps"},
		{"provider", func(c *Config) { c.Embedding.Provider = "onnx" }, "embedding.provider"},
		{"addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"similarity", func(c *Config) { c.Vector.SimilarityThreshold = 1.5 }, "vector.similarity_threshold"},
		{"addrs optional when vector disabled", func(c *Config) {
			c.Database.Addrs = nil
			c.Vector.Enabled = &disabled
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 || cfg.HTTP.ReadTimeoutSec != 10 || cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("http = %+v", cfg.HTTP)
	}
	if cfg.Embedding.Provider != "openai" || cfg.Embedding.Dimensions != 768 || cfg.Embedding.BatchSize != 100 {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
	if cfg.Catalog.UserID != "searchUser" || cfg.Catalog.Timeout() != 30*time.Second {
		t.Errorf("catalog = %+v", cfg.Catalog)
	}
	if !cfg.Vector.IsEnabled() || cfg.Vector.SimilarityThreshold != 0.3 || cfg.Vector.KeyPrefix != "ondc:product:" {
		t.Errorf("vector = %+v", cfg.Vector)
	}
	r := cfg.Rerank
	if r.Weights.Vector != 0.40 || *r.DefaultThreshold != 0.4 || *r.DiversityBonus != 0.1 || *r.EmergencyPenalty != 0.8 {
		t.Errorf("rerank = %+v", r)
	}
	if *r.FallbackLimit != 5 || *r.EmergencyLimit != 3 || *r.FallbackMinSimilarity != 0.5 {
		t.Errorf("rerank fallback = %+v", r)
	}
	if cfg.Search.PathTimeout() != 10*time.Second || cfg.Search.OverFetch != 3 || cfg.Search.AdvancedLimit != 20 {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.MCP.Name != "ondc-search" {
		t.Errorf("mcp = %+v", cfg.MCP)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 9000, ReadTimeoutSec: 30},
		Embedding: EmbeddingConfig{Provider: "hash", Dimensions: 16},
		Vector:    VectorConfig{KeyPrefix: "custom:", HNSWM: 32},
		Rerank:    RerankConfig{Weights: RerankWeights{Relevance: 0.5, Vector: 0.5}, DefaultThreshold: ptr(0.2)},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9000 || cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("http = %+v", cfg.HTTP)
	}
	if cfg.Embedding.Provider != "hash" || cfg.Embedding.Dimensions != 16 {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
	if cfg.Vector.KeyPrefix != "custom:" || cfg.Vector.HNSWM != 32 {
		t.Errorf("vector = %+v", cfg.Vector)
	}
	if cfg.Rerank.Weights.Relevance != 0.5 || cfg.Rerank.Weights.ExactMatch != 0 || *cfg.Rerank.DefaultThreshold != 0.2 {
		t.Errorf("rerank = %+v", cfg.Rerank)
	}
}

func TestParse_RerankExplicitZeros(t *testing.T) {
	cfg, err := Parse([]byte(`
catalog:
  base_url: https://catalog.example.com
database:
  addrs: ["localhost:6379"]
rerank:
  default_threshold: 0
  diversity_bonus: 0
  emergency_limit: 0
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := cfg.Rerank
	if *r.DefaultThreshold != 0 || *r.DiversityBonus != 0 || *r.EmergencyLimit != 0 {
		t.Errorf("explicit zeros overridden: threshold=%v bonus=%v emergency=%v",
			*r.DefaultThreshold, *r.DiversityBonus, *r.EmergencyLimit)
	}
	if *r.FallbackLimit != 5 || *r.EmergencyPenalty != 0.8 {
		t.Errorf("unset tunables not defaulted: fallback=%v penalty=%v", *r.FallbackLimit, *r.EmergencyPenalty)
	}
}

func ptr[T any](v T) *T { return &v }

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("CATALOG_API_KEY", "secret")
	t.Setenv("VALKEY_ADDR", "")

	cfg, err := Parse([]byte(`
catalog:
  base_url: ${CATALOG_BASE_URL:-https://catalog.example.com}
  api_key: ${CATALOG_API_KEY}
database:
  addrs: ["${VALKEY_ADDR:-localhost:6379}"]
vector:
  enabled: true
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Catalog.BaseURL != "https://catalog.example.com" {
		t.Errorf("base_url = %q", cfg.Catalog.BaseURL)
	}
	if cfg.Catalog.APIKey != "secret" {
		t.Errorf("api_key = %q", cfg.Catalog.APIKey)
	}
	if len(cfg.Database.Addrs) != 1 || cfg.Database.Addrs[0] != "localhost:6379" {
		t.Errorf("addrs = %v", cfg.Database.Addrs)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("catalog: [")); err == nil {
		t.Error("expected YAML error")
	}
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil {
		t.Error("expected validation error for missing catalog.base_url")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}

	t.Setenv("ENV", "dev")
	if got := GetEnv(); got != "dev" {
		t.Errorf("GetEnv() = %q, want dev", got)
	}

	t.Setenv("APP_ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}

func TestLoad_LocalFile(t *testing.T) {
	t.Setenv("CATALOG_BASE_URL", "")
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Catalog.BaseURL == "" || cfg.Embedding.Dimensions != 768 {
		t.Errorf("config = %+v", cfg)
	}
}

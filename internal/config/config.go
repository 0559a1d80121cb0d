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

// Config holds the ondcsearch configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Vector    VectorConfig    `yaml:"vector"`
	Rerank    RerankConfig    `yaml:"rerank"`
	Search    SearchConfig    `yaml:"search"`
	Auth      AuthConfig      `yaml:"auth"`
	MCP       MCPConfig       `yaml:"mcp"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. An empty key list disables auth.
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

// DatabaseConfig holds Valkey/Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider         string `yaml:"provider"` // openai | hash
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	BatchSize        int    `yaml:"batch_size"`
	CacheTTLSec      int    `yaml:"cache_ttl_sec"`
	CachePrefix      string `yaml:"cache_prefix"`
	QueryInstruction string `yaml:"query_instruction"`
}

// CacheTTL returns the embedding cache TTL. Zero keeps entries forever.
func (e EmbeddingConfig) CacheTTL() time.Duration {
	return time.Duration(e.CacheTTLSec) * time.Second
}

// CatalogConfig holds keyword catalog API settings.
type CatalogConfig struct {
	BaseURL    string  `yaml:"base_url"`
	APIKey     string  `yaml:"api_key"`
	UserID     string  `yaml:"user_id"`
	TimeoutSec int     `yaml:"timeout_sec"`
	RateLimit  float64 `yaml:"rate_limit_rps"` // 0 = unlimited
	Burst      int     `yaml:"burst"`
}

// Timeout returns the catalog request timeout.
func (c CatalogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// VectorConfig holds vector index settings.
type VectorConfig struct {
	Enabled             *bool   `yaml:"enabled"`
	IndexName           string  `yaml:"index_name"`
	KeyPrefix           string  `yaml:"key_prefix"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	HNSWM               int     `yaml:"hnsw_m"`
	HNSWEFConstruct     int     `yaml:"hnsw_ef_construction"`
}

// IsEnabled reports whether the vector path is configured. Defaults to true.
func (v VectorConfig) IsEnabled() bool {
	return v.Enabled == nil || *v.Enabled
}

// RerankConfig holds score fusion settings. Unset (nil) tunables fall back to
// defaults; an explicit 0 is kept.
type RerankConfig struct {
	Weights               RerankWeights `yaml:"weights"`
	DefaultThreshold      *float64      `yaml:"default_threshold"`
	DiversityBonus        *float64      `yaml:"diversity_bonus"`
	FallbackMinSimilarity *float64      `yaml:"fallback_min_similarity"`
	FallbackLimit         *int          `yaml:"fallback_limit"`
	EmergencyLimit        *int          `yaml:"emergency_limit"`
	EmergencyPenalty      *float64      `yaml:"emergency_penalty"`
}

// RerankWeights are the signal weights. Either all are set or none.
type RerankWeights struct {
	Relevance    float64 `yaml:"relevance"`
	Vector       float64 `yaml:"vector"`
	ExactMatch   float64 `yaml:"exact_match"`
	Availability float64 `yaml:"availability"`
	Price        float64 `yaml:"price"`
	Popularity   float64 `yaml:"popularity"`
}

// IsZero reports whether no weight is configured.
func (w RerankWeights) IsZero() bool {
	return w == RerankWeights{}
}

// SearchConfig holds orchestrator settings.
type SearchConfig struct {
	PathTimeoutMS int `yaml:"path_timeout_ms"`
	OverFetch     int `yaml:"over_fetch"`
	AdvancedLimit int `yaml:"advanced_limit"`
}

// PathTimeout returns the per-path timeout.
func (s SearchConfig) PathTimeout() time.Duration {
	return time.Duration(s.PathTimeoutMS) * time.Millisecond
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	Name string `yaml:"name"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config bytes, expanding ${VAR} references, then applies
// defaults and validates.
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

// GetEnv returns the current environment from APP_ENV (or ENV), defaulting to "local".
func GetEnv() string {
	for _, key := range []string{"APP_ENV", "ENV"} {
		if env := os.Getenv(key); env != "" {
			return env
		}
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
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

	c.applyEmbeddingDefaults()
	c.applyCatalogDefaults()

	if c.Vector.IndexName == "" {
		c.Vector.IndexName = "ondc_products"
	}
	if c.Vector.KeyPrefix == "" {
		c.Vector.KeyPrefix = "ondc:product:"
	}
	if c.Vector.SimilarityThreshold <= 0 {
		c.Vector.SimilarityThreshold = 0.3
	}
	if c.Vector.HNSWM <= 0 {
		c.Vector.HNSWM = 16
	}
	if c.Vector.HNSWEFConstruct <= 0 {
		c.Vector.HNSWEFConstruct = 200
	}

	c.applyRerankDefaults()

	if c.Search.PathTimeoutMS <= 0 {
		c.Search.PathTimeoutMS = 10000
	}
	if c.Search.OverFetch <= 0 {
		c.Search.OverFetch = 3
	}
	if c.Search.AdvancedLimit <= 0 {
		c.Search.AdvancedLimit = 20
	}
	if c.MCP.Name == "" {
		c.MCP.Name = "ondc-search"
	}
}

func (c *Config) applyEmbeddingDefaults() {
	e := &c.Embedding
	if e.Provider == "" {
		e.Provider = "openai"
	}
	if e.BaseURL == "" {
		e.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	}
	if e.Model == "" {
		e.Model = "text-embedding-004"
	}
	if e.Dimensions <= 0 {
		e.Dimensions = 768
	}
	if e.BatchSize <= 0 {
		e.BatchSize = 100
	}
	if e.CachePrefix == "" {
		e.CachePrefix = "ondc:emb:"
	}
}

func (c *Config) applyCatalogDefaults() {
	if c.Catalog.UserID == "" {
		c.Catalog.UserID = "searchUser"
	}
	if c.Catalog.TimeoutSec <= 0 {
		c.Catalog.TimeoutSec = 30
	}
	if c.Catalog.RateLimit > 0 && c.Catalog.Burst <= 0 {
		c.Catalog.Burst = 1
	}
}

func (c *Config) applyRerankDefaults() {
	r := &c.Rerank
	if r.Weights.IsZero() {
		r.Weights = RerankWeights{
			Relevance:    0.35,
			Vector:       0.40,
			ExactMatch:   0.15,
			Availability: 0.04,
			Price:        0.03,
			Popularity:   0.03,
		}
	}
	setDefault(&r.DefaultThreshold, 0.4)
	setDefault(&r.DiversityBonus, 0.1)
	setDefault(&r.FallbackMinSimilarity, 0.5)
	setDefault(&r.FallbackLimit, 5)
	setDefault(&r.EmergencyLimit, 3)
	setDefault(&r.EmergencyPenalty, 0.8)
}

func setDefault[T any](p **T, v T) {
	if *p == nil {
		*p = &v
	}
}

// Validate checks the configuration for correctness. Rerank tunables are
// validated by the reranker itself.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url is required")
	}
	if c.Catalog.RateLimit < 0 {
		return fmt.Errorf("catalog.rate_limit_rps must be >= 0, got %g", c.Catalog.RateLimit)
	}
	switch c.Embedding.Provider {
	case "openai", "hash":
	default:
		return fmt.Errorf("embedding.provider must be \"openai\" or \"hash\", got %q", c.Embedding.Provider)
	}
	if c.Vector.IsEnabled() && len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required when the vector path is enabled")
	}
	if c.Vector.SimilarityThreshold > 1 {
		return fmt.Errorf("vector.similarity_threshold must be in [0, 1], got %g", c.Vector.SimilarityThreshold)
	}
	return nil
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

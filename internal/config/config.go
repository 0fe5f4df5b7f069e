// Package config loads the search service configuration. Configuration is
// layered in order of increasing precedence: hardcoded defaults, the user
// config file, a project config file, then BOOKSEARCH_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Paths      PathsConfig      `yaml:"paths" json:"paths"`
	Search     SearchConfig     `yaml:"search" json:"search"`
	Oracle     OracleConfig     `yaml:"oracle" json:"oracle"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Limits     LimitsConfig     `yaml:"limits" json:"limits"`
	LogLevel   string           `yaml:"log_level" json:"log_level"`
}

// PathsConfig points at the corpus and vector snapshot files.
type PathsConfig struct {
	// Corpus is the JSON corpus tree snapshot.
	Corpus string `yaml:"corpus" json:"corpus"`
	// Vectors is the embedding snapshot. Empty disables the semantic path
	// and the service runs keyword-only.
	Vectors string `yaml:"vectors" json:"vectors"`
	// Stats is the directory for usage counter persistence.
	Stats string `yaml:"stats" json:"stats"`
}

// SearchConfig tunes retrieval and the escalation gate.
type SearchConfig struct {
	// MaxChapters is how many top chapters the chapter pass keeps.
	MaxChapters int `yaml:"max_chapters" json:"max_chapters"`
	// MaxChunks is how many chunks a search returns.
	MaxChunks int `yaml:"max_chunks" json:"max_chunks"`
	// PerChapterCap limits chunks taken from a single chapter.
	PerChapterCap int `yaml:"per_chapter_cap" json:"per_chapter_cap"`
	// ScoreThreshold is the minimum top-result score to accept a direct
	// search without expansion.
	ScoreThreshold float64 `yaml:"score_threshold" json:"score_threshold"`
	// OverlapThreshold is the minimum fraction of question words that must
	// appear in the returned chunk texts.
	OverlapThreshold float64 `yaml:"overlap_threshold" json:"overlap_threshold"`
	// MaxRounds caps expansion rounds per question.
	MaxRounds int `yaml:"max_rounds" json:"max_rounds"`
}

// OracleConfig configures the query-understanding and answer LLM.
type OracleConfig struct {
	BaseURL     string        `yaml:"base_url" json:"base_url"`
	APIKeyEnv   string        `yaml:"api_key_env" json:"api_key_env"`
	Model       string        `yaml:"model" json:"model"`
	Temperature float32       `yaml:"temperature" json:"temperature"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	BaseURL    string `yaml:"base_url" json:"base_url"`
	APIKeyEnv  string `yaml:"api_key_env" json:"api_key_env"`
	Model      string `yaml:"model" json:"model"`
	Dimensions int    `yaml:"dimensions" json:"dimensions"`
	CacheSize  int    `yaml:"cache_size" json:"cache_size"`
}

// LimitsConfig configures usage counters.
type LimitsConfig struct {
	// DailyRequests is the per-day request cap across all users.
	DailyRequests int `yaml:"daily_requests" json:"daily_requests"`
	// EmbeddingTokens is the free-tier embedding token allowance.
	EmbeddingTokens int64 `yaml:"embedding_tokens" json:"embedding_tokens"`
	// EmbeddingHardStop stops embedding calls before the free tier runs out.
	EmbeddingHardStop int64 `yaml:"embedding_hard_stop" json:"embedding_hard_stop"`
	// WarnThreshold is the fraction of a limit that triggers a warning.
	WarnThreshold float64 `yaml:"warn_threshold" json:"warn_threshold"`
}

// NewConfig returns a Config with defaults applied.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			Corpus:  "data/corpus.json",
			Vectors: "data/vectors.json",
			Stats:   defaultStatsDir(),
		},
		Search: SearchConfig{
			MaxChapters:      3,
			MaxChunks:        5,
			PerChapterCap:    2,
			ScoreThreshold:   0.5,
			OverlapThreshold: 0.5,
			MaxRounds:        3,
		},
		Oracle: OracleConfig{
			BaseURL:     "https://openrouter.ai/api/v1",
			APIKeyEnv:   "OPENROUTER_API_KEY",
			Model:       "openai/gpt-4o-mini",
			Temperature: 0.3,
			MaxTokens:   1000,
			Timeout:     30 * time.Second,
		},
		Embeddings: EmbeddingsConfig{
			BaseURL:    "https://api.voyageai.com/v1",
			APIKeyEnv:  "VOYAGE_API_KEY",
			Model:      "voyage-multilingual-2",
			Dimensions: 1024,
			CacheSize:  1000,
		},
		Limits: LimitsConfig{
			DailyRequests:     500,
			EmbeddingTokens:   50_000_000,
			EmbeddingHardStop: 45_000_000,
			WarnThreshold:     0.8,
		},
		LogLevel: "info",
	}
}

func defaultStatsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".booksearch")
	}
	return filepath.Join(home, ".booksearch")
}

// UserConfigPath returns the user configuration file path following the
// XDG base directory convention.
func UserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "booksearch", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "booksearch", "config.yaml")
	}
	return filepath.Join(home, ".config", "booksearch", "config.yaml")
}

// Load builds the effective configuration for the project at dir.
// Precedence, lowest to highest: defaults, user config, project config
// (.booksearch.yaml or .booksearch.yml in dir), BOOKSEARCH_* env vars.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := UserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, fmt.Errorf("user config: %w", err)
		}
	}

	if err := cfg.loadFromDir(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromDir(dir string) error {
	for _, name := range []string{".booksearch.yaml", ".booksearch.yml"} {
		path := filepath.Join(dir, name)
		if fileExists(path) {
			return c.loadYAML(path)
		}
	}
	// No project config is fine, defaults apply.
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith overlays non-zero values from other onto c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Paths.Corpus != "" {
		c.Paths.Corpus = other.Paths.Corpus
	}
	if other.Paths.Vectors != "" {
		c.Paths.Vectors = other.Paths.Vectors
	}
	if other.Paths.Stats != "" {
		c.Paths.Stats = other.Paths.Stats
	}

	if other.Search.MaxChapters != 0 {
		c.Search.MaxChapters = other.Search.MaxChapters
	}
	if other.Search.MaxChunks != 0 {
		c.Search.MaxChunks = other.Search.MaxChunks
	}
	if other.Search.PerChapterCap != 0 {
		c.Search.PerChapterCap = other.Search.PerChapterCap
	}
	if other.Search.ScoreThreshold != 0 {
		c.Search.ScoreThreshold = other.Search.ScoreThreshold
	}
	if other.Search.OverlapThreshold != 0 {
		c.Search.OverlapThreshold = other.Search.OverlapThreshold
	}
	if other.Search.MaxRounds != 0 {
		c.Search.MaxRounds = other.Search.MaxRounds
	}

	if other.Oracle.BaseURL != "" {
		c.Oracle.BaseURL = other.Oracle.BaseURL
	}
	if other.Oracle.APIKeyEnv != "" {
		c.Oracle.APIKeyEnv = other.Oracle.APIKeyEnv
	}
	if other.Oracle.Model != "" {
		c.Oracle.Model = other.Oracle.Model
	}
	if other.Oracle.Temperature != 0 {
		c.Oracle.Temperature = other.Oracle.Temperature
	}
	if other.Oracle.MaxTokens != 0 {
		c.Oracle.MaxTokens = other.Oracle.MaxTokens
	}
	if other.Oracle.Timeout != 0 {
		c.Oracle.Timeout = other.Oracle.Timeout
	}

	if other.Embeddings.BaseURL != "" {
		c.Embeddings.BaseURL = other.Embeddings.BaseURL
	}
	if other.Embeddings.APIKeyEnv != "" {
		c.Embeddings.APIKeyEnv = other.Embeddings.APIKeyEnv
	}
	if other.Embeddings.Model != "" {
		c.Embeddings.Model = other.Embeddings.Model
	}
	if other.Embeddings.Dimensions != 0 {
		c.Embeddings.Dimensions = other.Embeddings.Dimensions
	}
	if other.Embeddings.CacheSize != 0 {
		c.Embeddings.CacheSize = other.Embeddings.CacheSize
	}

	if other.Limits.DailyRequests != 0 {
		c.Limits.DailyRequests = other.Limits.DailyRequests
	}
	if other.Limits.EmbeddingTokens != 0 {
		c.Limits.EmbeddingTokens = other.Limits.EmbeddingTokens
	}
	if other.Limits.EmbeddingHardStop != 0 {
		c.Limits.EmbeddingHardStop = other.Limits.EmbeddingHardStop
	}
	if other.Limits.WarnThreshold != 0 {
		c.Limits.WarnThreshold = other.Limits.WarnThreshold
	}

	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}

// applyEnvOverrides applies BOOKSEARCH_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BOOKSEARCH_CORPUS"); v != "" {
		c.Paths.Corpus = v
	}
	if v := os.Getenv("BOOKSEARCH_VECTORS"); v != "" {
		c.Paths.Vectors = v
	}
	if v := os.Getenv("BOOKSEARCH_STATS_DIR"); v != "" {
		c.Paths.Stats = v
	}
	if v := os.Getenv("BOOKSEARCH_SCORE_THRESHOLD"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil && t >= 0 && t <= 1 {
			c.Search.ScoreThreshold = t
		}
	}
	if v := os.Getenv("BOOKSEARCH_OVERLAP_THRESHOLD"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil && t >= 0 && t <= 1 {
			c.Search.OverlapThreshold = t
		}
	}
	if v := os.Getenv("BOOKSEARCH_MAX_ROUNDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.MaxRounds = n
		}
	}
	if v := os.Getenv("BOOKSEARCH_ORACLE_MODEL"); v != "" {
		c.Oracle.Model = v
	}
	if v := os.Getenv("BOOKSEARCH_ORACLE_BASE_URL"); v != "" {
		c.Oracle.BaseURL = v
	}
	if v := os.Getenv("BOOKSEARCH_EMBEDDINGS_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("BOOKSEARCH_DAILY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Limits.DailyRequests = n
		}
	}
	if v := os.Getenv("BOOKSEARCH_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Validate checks the final configuration for contradictions.
func (c *Config) Validate() error {
	if c.Paths.Corpus == "" {
		return fmt.Errorf("paths.corpus must not be empty")
	}
	if c.Search.MaxChapters <= 0 {
		return fmt.Errorf("search.max_chapters must be positive, got %d", c.Search.MaxChapters)
	}
	if c.Search.MaxChunks <= 0 {
		return fmt.Errorf("search.max_chunks must be positive, got %d", c.Search.MaxChunks)
	}
	if c.Search.PerChapterCap <= 0 {
		return fmt.Errorf("search.per_chapter_cap must be positive, got %d", c.Search.PerChapterCap)
	}
	if c.Search.ScoreThreshold < 0 || c.Search.ScoreThreshold > 1 {
		return fmt.Errorf("search.score_threshold must be between 0 and 1, got %f", c.Search.ScoreThreshold)
	}
	if c.Search.OverlapThreshold < 0 || c.Search.OverlapThreshold > 1 {
		return fmt.Errorf("search.overlap_threshold must be between 0 and 1, got %f", c.Search.OverlapThreshold)
	}
	if c.Search.MaxRounds <= 0 {
		return fmt.Errorf("search.max_rounds must be positive, got %d", c.Search.MaxRounds)
	}
	if c.Limits.EmbeddingHardStop > c.Limits.EmbeddingTokens {
		return fmt.Errorf("limits.embedding_hard_stop (%d) exceeds limits.embedding_tokens (%d)",
			c.Limits.EmbeddingHardStop, c.Limits.EmbeddingTokens)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.LogLevel)
	}
	return nil
}

// OracleAPIKey resolves the oracle API key from the configured env var.
func (c *Config) OracleAPIKey() string {
	return os.Getenv(c.Oracle.APIKeyEnv)
}

// EmbeddingsAPIKey resolves the embeddings API key from the configured env var.
func (c *Config) EmbeddingsAPIKey() string {
	return os.Getenv(c.Embeddings.APIKeyEnv)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

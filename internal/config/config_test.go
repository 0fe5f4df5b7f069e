package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the user config lookup at an empty directory so tests
// never pick up the developer's real ~/.config/booksearch/config.yaml.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "data/corpus.json", cfg.Paths.Corpus)
	assert.Equal(t, "data/vectors.json", cfg.Paths.Vectors)

	assert.Equal(t, 3, cfg.Search.MaxChapters)
	assert.Equal(t, 5, cfg.Search.MaxChunks)
	assert.Equal(t, 2, cfg.Search.PerChapterCap)
	assert.InDelta(t, 0.5, cfg.Search.ScoreThreshold, 0.001)
	assert.InDelta(t, 0.5, cfg.Search.OverlapThreshold, 0.001)
	assert.Equal(t, 3, cfg.Search.MaxRounds)

	assert.Equal(t, "openai/gpt-4o-mini", cfg.Oracle.Model)
	assert.Equal(t, "OPENROUTER_API_KEY", cfg.Oracle.APIKeyEnv)
	assert.Equal(t, 30*time.Second, cfg.Oracle.Timeout)

	assert.Equal(t, "voyage-multilingual-2", cfg.Embeddings.Model)
	assert.Equal(t, 1024, cfg.Embeddings.Dimensions)

	assert.Equal(t, 500, cfg.Limits.DailyRequests)
	assert.Equal(t, int64(50_000_000), cfg.Limits.EmbeddingTokens)
	assert.Equal(t, int64(45_000_000), cfg.Limits.EmbeddingHardStop)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoProjectConfigUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "data/corpus.json", cfg.Paths.Corpus)
	assert.Equal(t, 500, cfg.Limits.DailyRequests)
}

func TestLoad_ProjectConfigOverlaysDefaults(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	yaml := `
paths:
  corpus: books/tree.json
search:
  max_chunks: 8
oracle:
  model: anthropic/claude-sonnet
limits:
  daily_requests: 100
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".booksearch.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "books/tree.json", cfg.Paths.Corpus)
	assert.Equal(t, 8, cfg.Search.MaxChunks)
	assert.Equal(t, "anthropic/claude-sonnet", cfg.Oracle.Model)
	assert.Equal(t, 100, cfg.Limits.DailyRequests)

	// Untouched keys keep their defaults.
	assert.Equal(t, 3, cfg.Search.MaxChapters)
	assert.Equal(t, "voyage-multilingual-2", cfg.Embeddings.Model)
}

func TestLoad_YmlExtensionAccepted(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, ".booksearch.yml"),
		[]byte("log_level: debug\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_UserConfigLowestFilePrecedence(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	userDir := filepath.Join(xdg, "booksearch")
	require.NoError(t, os.MkdirAll(userDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(userDir, "config.yaml"),
		[]byte("log_level: warn\nsearch:\n  max_rounds: 5\n"), 0o644))

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, ".booksearch.yaml"),
		[]byte("log_level: error\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel, "project config wins over user config")
	assert.Equal(t, 5, cfg.Search.MaxRounds, "user config still applies where project is silent")
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, ".booksearch.yaml"),
		[]byte("oracle:\n  model: from-file\n"), 0o644))

	t.Setenv("BOOKSEARCH_ORACLE_MODEL", "from-env")
	t.Setenv("BOOKSEARCH_CORPUS", "/srv/corpus.json")
	t.Setenv("BOOKSEARCH_SCORE_THRESHOLD", "0.7")
	t.Setenv("BOOKSEARCH_DAILY_LIMIT", "42")
	t.Setenv("BOOKSEARCH_LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Oracle.Model)
	assert.Equal(t, "/srv/corpus.json", cfg.Paths.Corpus)
	assert.InDelta(t, 0.7, cfg.Search.ScoreThreshold, 0.001)
	assert.Equal(t, 42, cfg.Limits.DailyRequests)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidEnvValueIgnored(t *testing.T) {
	isolate(t)
	t.Setenv("BOOKSEARCH_SCORE_THRESHOLD", "1.5")
	t.Setenv("BOOKSEARCH_DAILY_LIMIT", "-3")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.InDelta(t, 0.5, cfg.Search.ScoreThreshold, 0.001)
	assert.Equal(t, 500, cfg.Limits.DailyRequests)
}

func TestLoad_MalformedYAML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, ".booksearch.yaml"),
		[]byte("search: [not a map"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty corpus path", func(c *Config) { c.Paths.Corpus = "" }},
		{"zero max chapters", func(c *Config) { c.Search.MaxChapters = 0 }},
		{"negative max chunks", func(c *Config) { c.Search.MaxChunks = -1 }},
		{"zero per-chapter cap", func(c *Config) { c.Search.PerChapterCap = 0 }},
		{"score threshold above one", func(c *Config) { c.Search.ScoreThreshold = 1.2 }},
		{"negative overlap threshold", func(c *Config) { c.Search.OverlapThreshold = -0.1 }},
		{"zero max rounds", func(c *Config) { c.Search.MaxRounds = 0 }},
		{"hard stop above free tier", func(c *Config) {
			c.Limits.EmbeddingHardStop = 60_000_000
		}},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAPIKeyResolution(t *testing.T) {
	cfg := NewConfig()
	cfg.Oracle.APIKeyEnv = "TEST_ORACLE_KEY"
	cfg.Embeddings.APIKeyEnv = "TEST_EMBED_KEY"
	t.Setenv("TEST_ORACLE_KEY", "sk-oracle")
	t.Setenv("TEST_EMBED_KEY", "sk-embed")

	assert.Equal(t, "sk-oracle", cfg.OracleAPIKey())
	assert.Equal(t, "sk-embed", cfg.EmbeddingsAPIKey())
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cfg := NewConfig()
	cfg.Oracle.Model = "round/trip"
	require.NoError(t, cfg.WriteYAML(filepath.Join(dir, ".booksearch.yaml")))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "round/trip", loaded.Oracle.Model)
}

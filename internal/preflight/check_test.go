package preflight

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nataliafedorovabi/OBS-book-search/internal/config"
)

const corpusJSON = `{
  "version": "1",
  "created_at": "2026-01-10T00:00:00Z",
  "books": [
    {
      "title": "Основы менеджмента",
      "chapters": [
        {
          "id": "ch-1",
          "number": 1,
          "title": "Делегирование",
          "summary": "Передача полномочий.",
          "key_concepts": ["делегирование"],
          "sections": [
            {
              "id": "s-1",
              "title": "Принципы",
              "summary": "",
              "chunks": [
                {"id": "c-1", "text": "Делегирование передаёт полномочия.", "keywords": ["полномочия"]}
              ]
            }
          ]
        }
      ]
    }
  ]
}`

const vectorsJSON = `{
  "model": "voyage-multilingual-2",
  "dimensions": 3,
  "vectors": {"ch-1": [0.1, 0.2, 0.3]}
}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.NewConfig()
	cfg.Paths.Corpus = filepath.Join(dir, "corpus.json")
	cfg.Paths.Vectors = filepath.Join(dir, "vectors.json")
	cfg.Paths.Stats = filepath.Join(dir, "stats")
	cfg.Embeddings.Dimensions = 3
	cfg.Oracle.APIKeyEnv = "PREFLIGHT_TEST_ORACLE_KEY"
	cfg.Embeddings.APIKeyEnv = "PREFLIGHT_TEST_EMBED_KEY"

	require.NoError(t, os.WriteFile(cfg.Paths.Corpus, []byte(corpusJSON), 0o644))
	require.NoError(t, os.WriteFile(cfg.Paths.Vectors, []byte(vectorsJSON), 0o644))
	return cfg
}

func TestCheckCorpus_Pass(t *testing.T) {
	c := New(testConfig(t))
	r := c.CheckCorpus()
	assert.Equal(t, StatusPass, r.Status)
	assert.True(t, r.Required)
	assert.Contains(t, r.Message, "1 books, 1 chapters, 1 chunks")
}

func TestCheckCorpus_MissingFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.Corpus = filepath.Join(t.TempDir(), "absent.json")

	r := New(cfg).CheckCorpus()
	assert.Equal(t, StatusFail, r.Status)
	assert.True(t, r.IsCritical())
}

func TestCheckVectors_Pass(t *testing.T) {
	r := New(testConfig(t)).CheckVectors()
	assert.Equal(t, StatusPass, r.Status)
	assert.Contains(t, r.Message, "1 vectors, 3 dimensions")
}

func TestCheckVectors_NotConfiguredWarns(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.Vectors = ""

	r := New(cfg).CheckVectors()
	assert.Equal(t, StatusWarn, r.Status)
	assert.False(t, r.IsCritical(), "keyword-only mode is a degradation, not a failure")
}

func TestCheckVectors_DimensionMismatchWarns(t *testing.T) {
	cfg := testConfig(t)
	cfg.Embeddings.Dimensions = 1024

	r := New(cfg).CheckVectors()
	assert.Equal(t, StatusWarn, r.Status)
	assert.Contains(t, r.Message, "dimension 3 does not match configured 1024")
}

func TestCheckStatsDir(t *testing.T) {
	cfg := testConfig(t)
	r := New(cfg).CheckStatsDir()
	assert.Equal(t, StatusPass, r.Status)
	assert.DirExists(t, cfg.Paths.Stats)
}

func TestCheckKeys(t *testing.T) {
	cfg := testConfig(t)
	c := New(cfg)

	assert.Equal(t, StatusWarn, c.CheckOracleKey().Status)
	assert.Equal(t, StatusWarn, c.CheckEmbeddingsKey().Status)

	t.Setenv("PREFLIGHT_TEST_ORACLE_KEY", "sk-1")
	t.Setenv("PREFLIGHT_TEST_EMBED_KEY", "sk-2")
	assert.Equal(t, StatusPass, c.CheckOracleKey().Status)
	assert.Equal(t, StatusPass, c.CheckEmbeddingsKey().Status)
}

func TestCheckDiskSpace(t *testing.T) {
	r := New(testConfig(t)).CheckDiskSpace(t.TempDir())
	assert.Equal(t, StatusPass, r.Status)
	assert.Contains(t, r.Message, "free")
}

func TestRunAll_AndSummary(t *testing.T) {
	cfg := testConfig(t)
	t.Setenv("PREFLIGHT_TEST_ORACLE_KEY", "sk-1")
	t.Setenv("PREFLIGHT_TEST_EMBED_KEY", "sk-2")

	results := New(cfg).RunAll()
	require.Len(t, results, 6)
	assert.False(t, HasCriticalFailures(results))
	assert.Equal(t, "ready", SummaryStatus(results))
}

func TestSummaryStatus_Failed(t *testing.T) {
	results := []CheckResult{
		{Name: "corpus", Status: StatusFail, Required: true},
		{Name: "vectors", Status: StatusPass},
	}
	assert.Equal(t, "failed", SummaryStatus(results))
	assert.True(t, HasCriticalFailures(results))
}

func TestSummaryStatus_Warnings(t *testing.T) {
	results := []CheckResult{
		{Name: "corpus", Status: StatusPass, Required: true},
		{Name: "oracle_key", Status: StatusWarn},
	}
	assert.Equal(t, "ready_with_warnings", SummaryStatus(results))
}

func TestPrintResults(t *testing.T) {
	cfg := testConfig(t)
	var buf bytes.Buffer
	c := New(cfg, WithOutput(&buf), WithVerbose(true))

	c.PrintResults([]CheckResult{
		{Name: "corpus", Status: StatusPass, Message: "ok", Details: "/tmp/corpus.json", Required: true},
		{Name: "oracle_key", Status: StatusWarn, Message: "key missing"},
	})

	out := buf.String()
	assert.Contains(t, out, "[PASS] corpus: ok")
	assert.Contains(t, out, "/tmp/corpus.json")
	assert.Contains(t, out, "[WARN] oracle_key: key missing")
	assert.Contains(t, out, "Status: READY_WITH_WARNINGS")
	assert.Contains(t, out, "1 warning(s):")
}

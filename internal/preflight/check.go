// Package preflight diagnoses the environment before the service answers
// questions: corpus and vector snapshots, stats directory, API keys, disk
// space. Failures of required checks mean search cannot run; warnings mean
// it runs degraded (keyword-only, oracle fallback).
package preflight

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nataliafedorovabi/OBS-book-search/internal/config"
	"github.com/nataliafedorovabi/OBS-book-search/internal/corpus"
	"github.com/nataliafedorovabi/OBS-book-search/internal/vector"
)

// CheckStatus is the outcome of a single check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders the status as its string form.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// CheckResult holds the outcome of one check.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
}

// IsCritical reports a required check that failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// Checker runs environment diagnostics against a loaded configuration.
type Checker struct {
	cfg     *config.Config
	verbose bool
	output  io.Writer
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerbose enables per-check detail lines in PrintResults.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) { c.verbose = verbose }
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) { c.output = w }
}

// New creates a Checker for cfg.
func New(cfg *config.Config, opts ...Option) *Checker {
	c := &Checker{cfg: cfg, output: os.Stdout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs every check and returns the results in display order.
func (c *Checker) RunAll() []CheckResult {
	return []CheckResult{
		c.CheckCorpus(),
		c.CheckVectors(),
		c.CheckStatsDir(),
		c.CheckDiskSpace(c.cfg.Paths.Stats),
		c.CheckOracleKey(),
		c.CheckEmbeddingsKey(),
	}
}

// CheckCorpus verifies the corpus snapshot loads and is not empty. The
// corpus is the one thing the service cannot run without.
func (c *Checker) CheckCorpus() CheckResult {
	result := CheckResult{Name: "corpus", Required: true}

	ix, err := corpus.Load(c.cfg.Paths.Corpus)
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot load %s", c.cfg.Paths.Corpus)
		result.Details = err.Error()
		return result
	}

	st := ix.Stats()
	if st.Chunks == 0 {
		result.Status = StatusFail
		result.Message = "corpus snapshot contains no chunks"
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%d books, %d chapters, %d chunks", st.Books, st.Chapters, st.Chunks)
	result.Details = c.cfg.Paths.Corpus
	return result
}

// CheckVectors verifies the embedding snapshot when one is configured.
// A missing or broken snapshot degrades search to keyword-only mode, so
// this is a warning, never a failure.
func (c *Checker) CheckVectors() CheckResult {
	result := CheckResult{Name: "vectors", Required: false}

	if c.cfg.Paths.Vectors == "" {
		result.Status = StatusWarn
		result.Message = "no embedding snapshot configured, search runs keyword-only"
		return result
	}

	snap, err := vector.LoadSnapshot(c.cfg.Paths.Vectors)
	if err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("cannot load %s, search runs keyword-only", c.cfg.Paths.Vectors)
		result.Details = err.Error()
		return result
	}

	if snap.Dimensions != c.cfg.Embeddings.Dimensions {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("snapshot dimension %d does not match configured %d",
			snap.Dimensions, c.cfg.Embeddings.Dimensions)
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%d vectors, %d dimensions (%s)",
		len(snap.Vectors), snap.Dimensions, snap.Model)
	result.Details = c.cfg.Paths.Vectors
	return result
}

// CheckStatsDir verifies the usage counters directory is writable.
func (c *Checker) CheckStatsDir() CheckResult {
	result := CheckResult{Name: "stats_dir", Required: true}

	dir := c.cfg.Paths.Stats
	if err := os.MkdirAll(dir, 0o755); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot create %s", dir)
		result.Details = err.Error()
		return result
	}

	probe := filepath.Join(dir, ".write-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s is not writable", dir)
		result.Details = err.Error()
		return result
	}
	_ = os.Remove(probe)

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%s is writable", dir)
	return result
}

// CheckOracleKey reports whether the query-understanding oracle is usable.
// Without a key, every question falls back to literal search terms.
func (c *Checker) CheckOracleKey() CheckResult {
	result := CheckResult{Name: "oracle_key", Required: false}

	if c.cfg.OracleAPIKey() == "" {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s is not set, query expansion disabled", c.cfg.Oracle.APIKeyEnv)
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%s is set (%s)", c.cfg.Oracle.APIKeyEnv, c.cfg.Oracle.Model)
	return result
}

// CheckEmbeddingsKey reports whether question embedding is usable.
func (c *Checker) CheckEmbeddingsKey() CheckResult {
	result := CheckResult{Name: "embeddings_key", Required: false}

	if c.cfg.EmbeddingsAPIKey() == "" {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s is not set, search runs keyword-only", c.cfg.Embeddings.APIKeyEnv)
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%s is set (%s)", c.cfg.Embeddings.APIKeyEnv, c.cfg.Embeddings.Model)
	return result
}

// HasCriticalFailures reports whether any required check failed.
func HasCriticalFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}

// SummaryStatus reduces the results to ready, ready_with_warnings or failed.
func SummaryStatus(results []CheckResult) string {
	hasWarnings := false
	for _, r := range results {
		if r.IsCritical() {
			return "failed"
		}
		if r.Status == StatusWarn || r.Status == StatusFail {
			hasWarnings = true
		}
	}
	if hasWarnings {
		return "ready_with_warnings"
	}
	return "ready"
}

// PrintResults prints the results to the configured output.
func (c *Checker) PrintResults(results []CheckResult) {
	_, _ = fmt.Fprintln(c.output, "Booksearch Environment Check")
	_, _ = fmt.Fprintln(c.output, "============================")
	_, _ = fmt.Fprintln(c.output)

	for _, r := range results {
		_, _ = fmt.Fprintf(c.output, "[%s] %s: %s\n", r.Status, r.Name, r.Message)
		if c.verbose && r.Details != "" {
			_, _ = fmt.Fprintf(c.output, "      %s\n", r.Details)
		}
	}

	_, _ = fmt.Fprintln(c.output)
	_, _ = fmt.Fprintf(c.output, "Status: %s\n", strings.ToUpper(SummaryStatus(results)))

	var warnings, failures []string
	for _, r := range results {
		switch {
		case r.IsCritical():
			failures = append(failures, r.Name+": "+r.Message)
		case r.Status == StatusWarn:
			warnings = append(warnings, r.Name+": "+r.Message)
		}
	}

	if len(failures) > 0 {
		_, _ = fmt.Fprintln(c.output)
		_, _ = fmt.Fprintf(c.output, "%d error(s):\n", len(failures))
		for _, f := range failures {
			_, _ = fmt.Fprintf(c.output, "  - %s\n", f)
		}
	}
	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(c.output)
		_, _ = fmt.Fprintf(c.output, "%d warning(s):\n", len(warnings))
		for _, w := range warnings {
			_, _ = fmt.Fprintf(c.output, "  - %s\n", w)
		}
	}
}

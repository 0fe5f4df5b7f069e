package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nataliafedorovabi/OBS-book-search/internal/config"
	"github.com/nataliafedorovabi/OBS-book-search/internal/preflight"
)

func newDoctorCmd() *cobra.Command {
	var (
		verbose    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment and diagnose startup problems",
		Long: `Run environment diagnostics before serving questions.

Checks:
  - Corpus snapshot loads and contains chunks
  - Embedding snapshot loads and matches the configured dimensions
  - Stats directory is writable
  - Disk space for logs and usage counters
  - Oracle and embeddings API keys are set

Missing vectors or API keys are warnings: search degrades to
keyword-only mode and query expansion is skipped. A missing corpus
is fatal.`,
		Example: `  # Run diagnostics
  booksearch doctor

  # Verbose output with file paths and error details
  booksearch doctor --verbose

  # JSON output for scripting
  booksearch doctor --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, verbose, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed diagnostic info")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runDoctor(cmd *cobra.Command, verbose, jsonOutput bool) error {
	cfg, err := config.Load(flagProjectDir)
	if err != nil {
		return err
	}

	checker := preflight.New(cfg,
		preflight.WithVerbose(verbose),
		preflight.WithOutput(cmd.OutOrStdout()))
	results := checker.RunAll()

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			Status string                  `json:"status"`
			Checks []preflight.CheckResult `json:"checks"`
		}{preflight.SummaryStatus(results), results}); err != nil {
			return err
		}
	} else {
		checker.PrintResults(results)
	}

	if preflight.HasCriticalFailures(results) {
		return fmt.Errorf("environment check failed")
	}
	return nil
}

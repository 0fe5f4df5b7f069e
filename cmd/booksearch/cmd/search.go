package cmd

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nataliafedorovabi/OBS-book-search/internal/ui"
)

// searchOptions holds CLI flags for the raw search command.
type searchOptions struct {
	limit       int
	perChapter  int
	format      string
	literalOnly bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a single retrieval pass without the escalation protocol",
		Long: `Search runs one retrieval pass and prints the ranked fragments. It
skips the quality gate and expansion rounds, which makes it the tool
for inspecting what the scorer actually ranks where.

Examples:
  booksearch search "делегирование полномочий"
  booksearch search "мотивация" --limit 10 --format json
  booksearch search "KPI" --literal`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			return runRawSearch(cmd, question, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of fragments (0 = configured default)")
	cmd.Flags().IntVar(&opts.perChapter, "per-chapter", 0, "Fragments per chapter cap (0 = configured default)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.literalOnly, "literal", false, "Skip query understanding, use question words as-is")

	return cmd
}

func runRawSearch(cmd *cobra.Command, question string, opts searchOptions) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	slog.Info("search_started", slog.String("query", question))

	searchOpts := a.searchOptions()
	if opts.limit > 0 {
		searchOpts.MaxChunks = opts.limit
	}
	if opts.perChapter > 0 {
		searchOpts.PerChapterCap = opts.perChapter
	}
	searchOpts.SkipUnderstand = opts.literalOnly

	results, err := a.retriever.Search(cmd.Context(), question, searchOpts)
	if err != nil {
		return err
	}

	slog.Info("search_complete", slog.Int("results", len(results)))

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	ui.NewRenderer(cmd.OutOrStdout()).Results(results)
	return nil
}

package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nataliafedorovabi/OBS-book-search/internal/ui"
)

func newAskCmd() *cobra.Command {
	var userID string
	var noAnswer bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question against the book corpus",
		Long: `Ask runs the full retrieval protocol for one question: direct search,
quality gate, and an LLM-expanded round when the direct results come
back weak. With an oracle key configured it also generates a grounded
answer from the retrieved fragments.

Examples:
  booksearch ask "Что такое делегирование полномочий?"
  booksearch ask --no-answer "мотивация персонала"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			return runAsk(cmd, question, userID, noAnswer)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "cli", "User id for session and usage accounting")
	cmd.Flags().BoolVar(&noAnswer, "no-answer", false, "Only list retrieved fragments, skip answer generation")

	return cmd
}

func runAsk(cmd *cobra.Command, question, userID string, noAnswer bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if !a.limiter.Allow() {
		return fmt.Errorf("дневной лимит запросов исчерпан, попробуйте завтра")
	}
	a.limiter.Record(userID)

	slog.Info("ask_started", slog.String("user", userID), slog.String("question", question))

	out, err := a.controller.Ask(cmd.Context(), userID, question)
	if err != nil {
		return err
	}

	r := ui.NewRenderer(cmd.OutOrStdout())
	r.Outcome(out)

	if !noAnswer && a.generator != nil {
		text, err := a.generator.Generate(cmd.Context(), question, out.Results)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
	}

	slog.Info("ask_complete",
		slog.String("user", userID),
		slog.Int("results", len(out.Results)),
		slog.Bool("expanded", out.Expanded))
	return nil
}

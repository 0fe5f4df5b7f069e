package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nataliafedorovabi/OBS-book-search/internal/escalate"
	"github.com/nataliafedorovabi/OBS-book-search/internal/ui"
)

// moreCommands are the inputs that continue the previous question
// instead of starting a new one.
var moreCommands = map[string]bool{
	"ещё":   true,
	"еще":   true,
	"more":  true,
	"далее": true,
}

func newChatCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive question loop",
		Long: `Chat reads questions from stdin in a loop. Typing "ещё" (or "more")
runs another expansion round for the previous question, skipping
fragments already shown. An empty line or EOF exits.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, userID)
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "cli", "User id for session and usage accounting")

	return cmd
}

func runChat(cmd *cobra.Command, userID string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	r := ui.NewRenderer(out)
	scanner := bufio.NewScanner(cmd.InOrStdin())

	fmt.Fprintln(out, "Задайте вопрос по материалам курса. Пустая строка — выход.")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			break
		}

		if !a.limiter.Allow() {
			fmt.Fprintln(out, "дневной лимит запросов исчерпан, попробуйте завтра")
			break
		}
		a.limiter.Record(userID)

		var outcome escalate.Outcome
		var searchErr error
		if moreCommands[strings.ToLower(line)] {
			outcome, searchErr = a.controller.More(cmd.Context(), userID)
		} else {
			outcome, searchErr = a.controller.Ask(cmd.Context(), userID, line)
		}
		if searchErr != nil {
			r.Error(searchErr)
			continue
		}

		r.Outcome(outcome)

		if a.generator != nil && !outcome.Exhausted {
			question := line
			if moreCommands[strings.ToLower(line)] {
				question = a.controller.Question(userID)
			}
			if question != "" {
				text, err := a.generator.Generate(cmd.Context(), question, outcome.Results)
				if err != nil {
					r.Error(err)
					continue
				}
				fmt.Fprintln(out, text)
			}
		}
	}
	return scanner.Err()
}

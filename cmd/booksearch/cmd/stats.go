package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nataliafedorovabi/OBS-book-search/internal/ui"
)

func newStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show corpus and usage statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output stats as JSON")

	return cmd
}

func runStats(cmd *cobra.Command, jsonOutput bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	corpusStats := a.index.Stats()
	usageInfo := a.limiter.UsageInfo()

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Corpus any `json:"corpus"`
			Usage  any `json:"usage"`
		}{corpusStats, usageInfo})
	}

	r := ui.NewRenderer(cmd.OutOrStdout())
	r.Stats(corpusStats)
	fmt.Fprintf(cmd.OutOrStdout(), "\nЗапросы сегодня: %d из %d\n",
		usageInfo.RequestsToday, usageInfo.Limit)
	return nil
}

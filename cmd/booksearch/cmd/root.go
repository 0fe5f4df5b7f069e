// Package cmd provides the CLI commands for booksearch.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nataliafedorovabi/OBS-book-search/pkg/version"
)

var (
	flagProjectDir string
	flagLogLevel   string
)

// NewRootCmd creates the root command for the booksearch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "booksearch",
		Short: "Retrieval engine over the course book corpus",
		Long: `booksearch answers questions from a hierarchical corpus of course
books. It combines positional keyword scoring over the chapter tree with
semantic vector search, expands queries through an LLM when a direct
search comes back weak, and keeps per-user search sessions so "search
more" continues where the last answer stopped.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("booksearch version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&flagProjectDir, "dir", "C", ".", "Project directory holding .booksearch.yaml")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Override log level (debug, info, warn, error)")

	cmd.AddCommand(newAskCmd())
	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		return err
	}
	return nil
}

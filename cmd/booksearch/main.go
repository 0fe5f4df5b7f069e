// Package main provides the entry point for the booksearch CLI.
package main

import (
	"os"

	"github.com/nataliafedorovabi/OBS-book-search/cmd/booksearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

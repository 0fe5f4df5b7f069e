// Package configs holds the embedded configuration templates for
// booksearch. Embedding the templates keeps them available in every
// distribution, source builds and binary releases alike.
//
// The templates are used by:
//   - `booksearch config init` to create the user config at
//     ~/.config/booksearch/config.yaml
//   - `booksearch config init --project` to create .booksearch.yaml in the
//     project directory
//
// Configuration precedence (see internal/config.Load):
//  1. Hardcoded defaults
//  2. User config (~/.config/booksearch/config.yaml)
//  3. Project config (.booksearch.yaml)
//  4. Environment variables (BOOKSEARCH_*)
package configs

import _ "embed"

// UserConfigTemplate is the machine-level configuration template: API
// providers, usage limits, log level. Settings that apply to every corpus
// on this machine.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is the per-corpus configuration template: snapshot
// paths and search tuning. Meant to be version-controlled next to the
// corpus data.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string

// Package search implements retrieval over the context tree. Two
// interchangeable backends share one contract: TreeSearcher ranks chunks
// by positional keyword scoring over the whole corpus, HybridSearcher
// narrows by embedding similarity first and refines with the same keyword
// scoring. Scores are comparable only within a single search call.
package search

import (
	"context"

	"github.com/nataliafedorovabi/OBS-book-search/internal/corpus"
)

// Result is a single retrieved chunk with its denormalized citation
// context. Transient: lifetime is one search call.
type Result struct {
	ChunkID        string
	Text           string
	Score          float64
	BookTitle      string
	ChapterTitle   string
	ChapterSummary string
	SectionTitle   string
	Keywords       []string

	// DoublyConfirmed marks a chunk found independently by both the
	// semantic and the keyword path of the hybrid searcher.
	DoublyConfirmed bool

	// Degraded marks results produced in a fallback mode (embedding
	// oracle down). The caller may surface a "temporarily degraded"
	// notice; the results themselves are valid.
	Degraded bool
}

// Options configures a single search invocation.
type Options struct {
	// MaxChapters bounds the semantically-narrowed chapter set in the
	// hybrid backend (default 3).
	MaxChapters int

	// MaxChunks bounds the result count (default 5).
	MaxChunks int

	// PerChapterCap bounds chunks drawn from any one chapter (default
	// 2). The cap takes precedence over raw score order: a chapter's
	// third-best chunk is never selected even if it outscores another
	// chapter's best.
	PerChapterCap int

	// ExtraTerms are additional search terms injected by the caller
	// (the escalation controller's expansion round).
	ExtraTerms []string

	// PreferredChapters are chapter ids, numbers, or titles that
	// receive the relevance bonus, injected alongside ExtraTerms.
	PreferredChapters []string

	// SkipUnderstand bypasses the query-understanding oracle. Used when
	// the caller has already consulted it (expansion round) and in
	// determinism tests.
	SkipUnderstand bool

	// Exclude lists chunk ids that must not be returned (already
	// surfaced in earlier escalation rounds).
	Exclude map[string]struct{}
}

// Defaults for Options zero values.
const (
	DefaultMaxChapters   = 3
	DefaultMaxChunks     = 5
	DefaultPerChapterCap = 2

	// chapterBonus multiplies chunk scores in chapters the
	// query-understanding oracle flagged as relevant.
	chapterBonus = 2.0
)

// withDefaults fills zero-valued options.
func (o Options) withDefaults() Options {
	if o.MaxChapters <= 0 {
		o.MaxChapters = DefaultMaxChapters
	}
	if o.MaxChunks <= 0 {
		o.MaxChunks = DefaultMaxChunks
	}
	if o.PerChapterCap <= 0 {
		o.PerChapterCap = DefaultPerChapterCap
	}
	return o
}

// Retriever is the strategy interface over the search backends.
type Retriever interface {
	// Search returns chunks relevant to question, highest score first.
	// An empty result is a legitimate outcome, not an error.
	Search(ctx context.Context, question string, opts Options) ([]Result, error)
}

// resultFromChunk copies citation fields from the index record.
func resultFromChunk(c *corpus.ChunkInfo, score float64) Result {
	return Result{
		ChunkID:        c.ID,
		Text:           c.Text,
		Score:          score,
		BookTitle:      c.BookTitle,
		ChapterTitle:   c.ChapterTitle,
		ChapterSummary: c.ChapterSummary,
		SectionTitle:   c.SectionTitle,
		Keywords:       c.Keywords,
	}
}

package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/nataliafedorovabi/OBS-book-search/internal/corpus"
	"github.com/nataliafedorovabi/OBS-book-search/internal/lexical"
	"github.com/nataliafedorovabi/OBS-book-search/internal/oracle"
	"github.com/nataliafedorovabi/OBS-book-search/internal/query"
)

// TreeSearcher ranks chunks by positional keyword scoring, narrowing the
// scan to the most relevant chapters first. It is the cheap, precise
// backend: strong when the user's terminology matches the corpus
// terminology, silent on paraphrase.
type TreeSearcher struct {
	index      *corpus.Index
	adapter    *oracle.Adapter
	normalizer query.Normalizer
	logger     *slog.Logger
}

// TreeOption configures a TreeSearcher.
type TreeOption func(*TreeSearcher)

// WithTreeLogger sets the logger.
func WithTreeLogger(l *slog.Logger) TreeOption {
	return func(s *TreeSearcher) { s.logger = l }
}

// WithNormalizer replaces the default Russian suffix normalizer.
func WithNormalizer(n query.Normalizer) TreeOption {
	return func(s *TreeSearcher) { s.normalizer = n }
}

// NewTreeSearcher creates the keyword backend. adapter may be nil; search
// then relies on literal question tokens only.
func NewTreeSearcher(index *corpus.Index, adapter *oracle.Adapter, opts ...TreeOption) *TreeSearcher {
	s := &TreeSearcher{
		index:      index,
		adapter:    adapter,
		normalizer: query.RussianNormalizer{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Retriever = (*TreeSearcher)(nil)

// Search implements Retriever.
func (s *TreeSearcher) Search(ctx context.Context, question string, opts Options) ([]Result, error) {
	opts = opts.withDefaults()

	terms := opts.ExtraTerms
	chapterRefs := opts.PreferredChapters
	if !opts.SkipUnderstand && s.adapter != nil {
		u := s.adapter.Understand(ctx, question, s.index.ChapterDigest())
		if !u.Fallback {
			terms = append(terms, u.Terms...)
			chapterRefs = append(chapterRefs, u.Chapters...)
		}
	}

	keywords := buildKeywords(question, terms, s.normalizer)
	if len(keywords) == 0 {
		s.logger.Debug("no keywords extracted", "question", question)
		return nil, nil
	}

	flagged := resolveChapters(s.index, chapterRefs)
	candidates := s.index.Chunks()
	if len(flagged) == 0 {
		candidates = chapterPass(s.index, keywords, opts.MaxChapters)
	}
	scored := scoreChunks(candidates, keywords, flagged)

	s.logger.Debug("tree search scored",
		"keywords", len(keywords),
		"candidates", len(scored),
		"flagged_chapters", len(flagged))

	return selectTop(scored, opts), nil
}

// scoredChunk pairs an index record with its score for ranking.
type scoredChunk struct {
	chunk    *corpus.ChunkInfo
	score    float64
	doubly   bool
	degraded bool
}

// chapterPass narrows the chunk scan when the oracle names no chapters:
// chapters are ranked by keyword relevance of their title, summary and
// key concepts, and only chunks of the top max chapters are scored. When
// no chapter ranks, the scan falls back to the whole corpus.
func chapterPass(index *corpus.Index, keywords []lexical.Keyword, max int) []*corpus.ChunkInfo {
	ranked := lexical.ScoreChapters(index.Chapters(), keywords)
	if len(ranked) == 0 {
		return index.Chunks()
	}
	if len(ranked) > max {
		ranked = ranked[:max]
	}
	var chunks []*corpus.ChunkInfo
	for _, cs := range ranked {
		chunks = append(chunks, index.ChapterChunks(cs.Chapter.ID)...)
	}
	return chunks
}

// scoreChunks scores the candidate chunks. Chunks in flagged chapters
// get the relevance bonus. Only positive scores survive.
func scoreChunks(chunks []*corpus.ChunkInfo, keywords []lexical.Keyword, flagged map[string]struct{}) []scoredChunk {
	var scored []scoredChunk
	for _, chunk := range chunks {
		score := lexical.ScoreChunk(chunk, keywords)
		if score <= 0 {
			continue
		}
		if _, ok := flagged[chunk.ChapterID]; ok {
			score *= chapterBonus
		}
		scored = append(scored, scoredChunk{chunk: chunk, score: score})
	}
	return scored
}

// selectTop ranks candidates by score descending (stable: ties keep
// document order) and selects up to MaxChunks results with at most
// PerChapterCap chunks per chapter. The cap wins over raw score order.
func selectTop(scored []scoredChunk, opts Options) []Result {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	perChapter := make(map[string]int)
	results := make([]Result, 0, opts.MaxChunks)
	for _, sc := range scored {
		if len(results) >= opts.MaxChunks {
			break
		}
		if _, excluded := opts.Exclude[sc.chunk.ID]; excluded {
			continue
		}
		if perChapter[sc.chunk.ChapterID] >= opts.PerChapterCap {
			continue
		}
		perChapter[sc.chunk.ChapterID]++
		r := resultFromChunk(sc.chunk, sc.score)
		r.DoublyConfirmed = sc.doubly
		r.Degraded = sc.degraded
		results = append(results, r)
	}
	return results
}

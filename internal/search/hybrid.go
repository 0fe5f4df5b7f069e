package search

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/nataliafedorovabi/OBS-book-search/internal/corpus"
	"github.com/nataliafedorovabi/OBS-book-search/internal/embed"
	"github.com/nataliafedorovabi/OBS-book-search/internal/lexical"
	"github.com/nataliafedorovabi/OBS-book-search/internal/oracle"
	"github.com/nataliafedorovabi/OBS-book-search/internal/query"
	"github.com/nataliafedorovabi/OBS-book-search/internal/vector"
)

// Merge policy for chunks found by both search paths. The fixed bonus and
// cap materially change ranking; changing them changes behavior.
const (
	mergeBonus     = 0.2
	maxMergedScore = 1.0

	// placeholderScore is assigned to fallback chunks returned when
	// semantic narrowing succeeded but lexical refinement inside the
	// selected chapters found nothing.
	placeholderScore = 0.05
)

// HybridSearcher combines embedding nearest-neighbor search with keyword
// scoring. The embedding snapshot may be keyed by chapter id (semantic
// narrowing to chapters, lexical ranking inside) or by chunk id (direct
// semantic hits). A chunk found by both paths is boosted and tagged as
// doubly confirmed.
type HybridSearcher struct {
	index      *corpus.Index
	vectors    *vector.Index
	embedder   embed.Embedder
	adapter    *oracle.Adapter
	normalizer query.Normalizer
	logger     *slog.Logger
}

// HybridOption configures a HybridSearcher.
type HybridOption func(*HybridSearcher)

// WithHybridLogger sets the logger.
func WithHybridLogger(l *slog.Logger) HybridOption {
	return func(s *HybridSearcher) { s.logger = l }
}

// WithHybridNormalizer replaces the default Russian suffix normalizer.
func WithHybridNormalizer(n query.Normalizer) HybridOption {
	return func(s *HybridSearcher) { s.normalizer = n }
}

// NewHybridSearcher creates the hybrid backend.
func NewHybridSearcher(
	index *corpus.Index,
	vectors *vector.Index,
	embedder embed.Embedder,
	adapter *oracle.Adapter,
	opts ...HybridOption,
) *HybridSearcher {
	s := &HybridSearcher{
		index:      index,
		vectors:    vectors,
		embedder:   embedder,
		adapter:    adapter,
		normalizer: query.RussianNormalizer{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Retriever = (*HybridSearcher)(nil)

// semanticHit is a chunk surfaced by the embedding path.
type semanticHit struct {
	score    float64
	fallback bool
}

// Search implements Retriever.
func (s *HybridSearcher) Search(ctx context.Context, question string, opts Options) ([]Result, error) {
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
	flagged := resolveChapters(s.index, chapterRefs)

	var (
		semantic    map[string]semanticHit
		semanticErr error
		keyword     []scoredChunk
	)

	// The two candidate-generation paths are independent; run them
	// concurrently. The semantic path reports its error through
	// semanticErr instead of the group so a dead embedding oracle
	// degrades to keyword-only search instead of failing the call.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		semantic, semanticErr = s.semanticCandidates(gctx, question, keywords, opts)
		return nil
	})
	g.Go(func() error {
		keyword = scoreChunks(s.index.Chunks(), keywords, flagged)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	degraded := false
	if semanticErr != nil {
		s.logger.Warn("embedding path unavailable, degrading to keyword-only search",
			"error", semanticErr)
		semantic = nil
		degraded = true
	}

	merged := s.merge(semantic, keyword)
	if degraded {
		for i := range merged {
			merged[i].degraded = true
		}
	}
	return selectTop(merged, opts), nil
}

// semanticCandidates embeds the question and collects chunk candidates
// from the nearest-neighbor index.
func (s *HybridSearcher) semanticCandidates(
	ctx context.Context, question string, keywords []lexical.Keyword, opts Options,
) (map[string]semanticHit, error) {
	if s.vectors == nil || s.vectors.Len() == 0 {
		return nil, nil
	}

	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}

	k := opts.MaxChapters
	if opts.MaxChunks > k {
		k = opts.MaxChunks
	}
	neighbors, err := s.vectors.Search(queryVec, k)
	if err != nil {
		return nil, err
	}

	hits := make(map[string]semanticHit)
	type rankedChapter struct {
		info *corpus.ChapterInfo
		sim  float64
	}
	var chapters []rankedChapter

	for _, n := range neighbors {
		if _, ok := s.index.Chunk(n.ID); ok {
			hits[n.ID] = semanticHit{score: n.Score}
			continue
		}
		if ch, ok := s.index.Chapter(n.ID); ok && len(chapters) < opts.MaxChapters {
			chapters = append(chapters, rankedChapter{info: ch, sim: n.Score})
		}
	}

	// Chapter-level vectors: keyword search narrows a semantically
	// relevant neighborhood rather than the whole corpus.
	refined := false
	for _, rc := range chapters {
		for _, chunk := range s.index.ChapterChunks(rc.info.ID) {
			if lexical.ScoreChunk(chunk, keywords) <= 0 {
				continue
			}
			refined = true
			if prev, ok := hits[chunk.ID]; !ok || rc.sim > prev.score {
				hits[chunk.ID] = semanticHit{score: rc.sim}
			}
		}
	}

	// Lexical refinement found nothing inside the selected chapters:
	// return their leading chunks with a placeholder score so the
	// caller still gets grounding text.
	if len(chapters) > 0 && !refined {
		for _, rc := range chapters {
			chunks := s.index.ChapterChunks(rc.info.ID)
			if len(chunks) == 0 {
				continue
			}
			if _, ok := hits[chunks[0].ID]; !ok {
				hits[chunks[0].ID] = semanticHit{score: placeholderScore, fallback: true}
			}
		}
	}

	return hits, nil
}

// merge unions the semantic and keyword candidate sets. Keyword scores
// are normalized to [0, 1] by the maximum so they are comparable with
// cosine similarities; a chunk found by both paths takes the higher score
// plus the fixed bonus, capped, and is tagged doubly confirmed.
func (s *HybridSearcher) merge(semantic map[string]semanticHit, keyword []scoredChunk) []scoredChunk {
	var maxKeyword float64
	for _, sc := range keyword {
		if sc.score > maxKeyword {
			maxKeyword = sc.score
		}
	}

	keywordNorm := make(map[string]float64, len(keyword))
	for _, sc := range keyword {
		if maxKeyword > 0 {
			keywordNorm[sc.chunk.ID] = sc.score / maxKeyword
		}
	}

	// Walk chunks in document order so ties rank deterministically.
	var merged []scoredChunk
	for _, chunk := range s.index.Chunks() {
		kwScore, inKeyword := keywordNorm[chunk.ID]
		semHit, inSemantic := semantic[chunk.ID]

		switch {
		case inKeyword && inSemantic:
			score := semHit.score
			if kwScore > score {
				score = kwScore
			}
			score += mergeBonus
			if score > maxMergedScore {
				score = maxMergedScore
			}
			merged = append(merged, scoredChunk{chunk: chunk, score: score, doubly: true})
		case inSemantic:
			merged = append(merged, scoredChunk{chunk: chunk, score: semHit.score})
		case inKeyword:
			merged = append(merged, scoredChunk{chunk: chunk, score: kwScore})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].score > merged[j].score
	})
	return merged
}

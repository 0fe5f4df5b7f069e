package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nataliafedorovabi/OBS-book-search/internal/errors"
	"github.com/nataliafedorovabi/OBS-book-search/internal/query"
	"github.com/nataliafedorovabi/OBS-book-search/internal/vector"
)

// stubEmbedder returns a fixed query vector or error.
type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vec, nil
}

func (s *stubEmbedder) Dimensions() int { return len(s.vec) }

func (s *stubEmbedder) ModelName() string { return "stub" }

func chapterVectors(t *testing.T) *vector.Index {
	t.Helper()
	ix, err := vector.Build(&vector.Snapshot{
		Dimensions: 3,
		Vectors: map[string][]float32{
			"ch-1": {1, 0, 0},
			"ch-2": {0, 1, 0},
			"ch-3": {0, 0, 1},
		},
	})
	require.NoError(t, err)
	return ix
}

func chunkVectors(t *testing.T) *vector.Index {
	t.Helper()
	ix, err := vector.Build(&vector.Snapshot{
		Dimensions: 3,
		Vectors: map[string][]float32{
			"m1": {0, 1, 0},
			"d1": {1, 0, 0},
		},
	})
	require.NoError(t, err)
	return ix
}

func TestHybridSearch_ChapterNarrowingWithLexicalRefinement(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{0, 1, 0}}
	s := NewHybridSearcher(fixtureIndex(t), chapterVectors(t), emb, nil,
		WithHybridNormalizer(query.NoopNormalizer{}))

	// Query vector sits on ch-2; "маслоу" lexically selects m1 inside it.
	results, err := s.Search(context.Background(), "пирамида маслоу", Options{SkipUnderstand: true})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "m1", results[0].ChunkID)
	assert.True(t, results[0].DoublyConfirmed)
	assert.False(t, results[0].Degraded)
}

func TestHybridSearch_DoublyConfirmedMergeBonus(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{0, 1, 0}}
	s := NewHybridSearcher(fixtureIndex(t), chunkVectors(t), emb, nil,
		WithHybridNormalizer(query.NoopNormalizer{}))

	results, err := s.Search(context.Background(), "мотивация", Options{SkipUnderstand: true})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	// m1: keyword-normalized 1.0 and semantic ~1.0, so max + 0.2 caps at 1.0.
	assert.Equal(t, "m1", results[0].ChunkID)
	assert.True(t, results[0].DoublyConfirmed)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)

	// m2 is keyword-only: same lexical score, no bonus, never above m1.
	m2 := scoreOf(t, results, "m2")
	assert.InDelta(t, 1.0, m2, 1e-6)
	for _, r := range results {
		if r.ChunkID == "m2" {
			assert.False(t, r.DoublyConfirmed)
		}
	}
}

func TestHybridSearch_MergeBonusBelowCap(t *testing.T) {
	// d2 sits at cosine 0.7 from the query vector. Its keyword score is 9
	// against a maximum of 13.5 (d1), normalizing to 2/3, so the merged
	// score is max(0.7, 2/3) + 0.2 = 0.9, short of the cap.
	vecs, err := vector.Build(&vector.Snapshot{
		Dimensions: 3,
		Vectors: map[string][]float32{
			"d2": {0.7, 0.71414284, 0},
		},
	})
	require.NoError(t, err)

	emb := &stubEmbedder{vec: []float32{1, 0, 0}}
	s := NewHybridSearcher(fixtureIndex(t), vecs, emb, nil,
		WithHybridNormalizer(query.NoopNormalizer{}))

	results, err := s.Search(context.Background(), "делегирование", Options{SkipUnderstand: true})
	require.NoError(t, err)

	d2 := scoreOf(t, results, "d2")
	assert.InDelta(t, 0.9, d2, 1e-3)
	for _, r := range results {
		switch r.ChunkID {
		case "d2":
			assert.True(t, r.DoublyConfirmed)
		default:
			assert.False(t, r.DoublyConfirmed)
		}
	}

	// The keyword maximum stays ahead of the doubly-confirmed chunk.
	assert.Equal(t, "d1", results[0].ChunkID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestHybridSearch_DegradesToKeywordOnEmbedFailure(t *testing.T) {
	emb := &stubEmbedder{err: errors.New(errors.ErrCodeOracleUnavailable, "embedding api down", nil)}
	s := NewHybridSearcher(fixtureIndex(t), chapterVectors(t), emb, nil,
		WithHybridNormalizer(query.NoopNormalizer{}))

	results, err := s.Search(context.Background(), "делегирование", Options{SkipUnderstand: true})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, r := range results {
		assert.True(t, r.Degraded)
		assert.False(t, r.DoublyConfirmed)
	}
	assert.Equal(t, "d1", results[0].ChunkID)
}

func TestHybridSearch_PlaceholderFallbackInsideSelectedChapters(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{0, 0, 1}}
	s := NewHybridSearcher(fixtureIndex(t), chapterVectors(t), emb, nil,
		WithHybridNormalizer(query.NoopNormalizer{}))

	// No lexical hit anywhere: semantic narrowing still grounds the
	// answer with the leading chunks of the nearest chapters.
	results, err := s.Search(context.Background(), "бюджет проекта", Options{SkipUnderstand: true})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, r := range results {
		assert.InDelta(t, 0.05, r.Score, 1e-9)
	}
	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.ChunkID)
	}
	assert.Contains(t, ids, "k1")
}

func TestHybridSearch_NoVectorsActsAsKeywordSearch(t *testing.T) {
	s := NewHybridSearcher(fixtureIndex(t), nil, &stubEmbedder{vec: []float32{1, 0, 0}}, nil,
		WithHybridNormalizer(query.NoopNormalizer{}))

	results, err := s.Search(context.Background(), "делегирование", Options{SkipUnderstand: true})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "d1", results[0].ChunkID)
	for _, r := range results {
		assert.False(t, r.Degraded)
	}
}

func TestHybridSearch_Deterministic(t *testing.T) {
	emb := &stubEmbedder{vec: []float32{0, 1, 0}}
	s := NewHybridSearcher(fixtureIndex(t), chapterVectors(t), emb, nil)

	first, err := s.Search(context.Background(), "мотивация персонала", Options{SkipUnderstand: true})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := s.Search(context.Background(), "мотивация персонала", Options{SkipUnderstand: true})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

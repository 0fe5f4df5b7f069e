package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nataliafedorovabi/OBS-book-search/internal/corpus"
)

func kw(term string, priority bool, variants ...string) Keyword {
	return NewKeyword(term, variants, priority)
}

func TestNewKeyword_DefaultsToLoweredTerm(t *testing.T) {
	k := NewKeyword("Мотивация", nil, true)
	assert.Equal(t, []string{"мотивация"}, k.Variants)
	assert.True(t, k.Priority)
}

func TestScoreChunk_PositionalWeights(t *testing.T) {
	tests := []struct {
		name  string
		chunk corpus.ChunkInfo
		kws   []Keyword
		want  float64
	}{
		{
			name:  "section title hit",
			chunk: corpus.ChunkInfo{SectionTitle: "Принципы делегирования"},
			kws:   []Keyword{kw("делегирование", true)},
			want:  15,
		},
		{
			name:  "chapter title hit",
			chunk: corpus.ChunkInfo{ChapterTitle: "Делегирование полномочий"},
			kws:   []Keyword{kw("делегирование", true)},
			want:  9,
		},
		{
			name:  "text occurrences are counted",
			chunk: corpus.ChunkInfo{Text: "делегирование это делегирование"},
			kws:   []Keyword{kw("делегирование", true)},
			want:  6,
		},
		{
			name:  "keyword tag hit",
			chunk: corpus.ChunkInfo{Keywords: []string{"делегирование", "власть"}},
			kws:   []Keyword{kw("делегирование", true)},
			want:  1.5,
		},
		{
			name: "all positions accumulate",
			chunk: corpus.ChunkInfo{
				SectionTitle: "делегирование",
				ChapterTitle: "делегирование",
				Text:         "делегирование",
				Keywords:     []string{"делегирование"},
			},
			kws:  []Keyword{kw("делегирование", true)},
			want: 15 + 9 + 3 + 1.5,
		},
		{
			name:  "secondary keywords weigh a third",
			chunk: corpus.ChunkInfo{SectionTitle: "делегирование"},
			kws:   []Keyword{kw("делегирование", false)},
			want:  5,
		},
		{
			name:  "empty keyword set scores zero",
			chunk: corpus.ChunkInfo{SectionTitle: "делегирование", Text: "делегирование"},
			kws:   nil,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScoreChunk(&tt.chunk, tt.kws), 1e-9)
		})
	}
}

func TestScoreChunk_CaseInsensitive(t *testing.T) {
	chunk := &corpus.ChunkInfo{SectionTitle: "ДЕЛЕГИРОВАНИЕ"}
	assert.InDelta(t, 15.0, ScoreChunk(chunk, []Keyword{kw("Делегирование", true)}), 1e-9)
}

func TestScoreChunk_StemVariantNotDoubleCounted(t *testing.T) {
	// The stem "делегировани" matches everywhere the surface form does;
	// occurrences must take the max over variants, not the sum.
	chunk := &corpus.ChunkInfo{Text: "делегирование полномочий"}
	k := kw("делегирование", true, "делегирование", "делегировани")
	assert.InDelta(t, 3.0, ScoreChunk(chunk, []Keyword{k}), 1e-9)
}

func TestScoreChapters_WeightsAndOrdering(t *testing.T) {
	chapters := []*corpus.ChapterInfo{
		{ID: "a", Title: "Контроль", Summary: "про контроль исполнения", KeyConcepts: []string{"контроль"}},
		{ID: "b", Title: "Мотивация", Summary: "стимулы"},
		{ID: "c", Title: "Планирование", Summary: "без совпадений"},
	}

	scored := ScoreChapters(chapters, []Keyword{kw("контроль", true), kw("мотивация", true)})
	require.Len(t, scored, 2)

	// Chapter a: title 3 + summary 2 + concept 2 = 7. Chapter b: title 3.
	assert.Equal(t, "a", scored[0].Chapter.ID)
	assert.InDelta(t, 7.0, scored[0].Score, 1e-9)
	assert.Equal(t, "b", scored[1].Chapter.ID)
	assert.InDelta(t, 3.0, scored[1].Score, 1e-9)
}

func TestScoreChapters_TiesKeepDocumentOrder(t *testing.T) {
	chapters := []*corpus.ChapterInfo{
		{ID: "first", Title: "мотивация"},
		{ID: "second", Title: "мотивация"},
	}

	scored := ScoreChapters(chapters, []Keyword{kw("мотивация", true)})
	require.Len(t, scored, 2)
	assert.Equal(t, "first", scored[0].Chapter.ID)
	assert.Equal(t, "second", scored[1].Chapter.ID)
}

func TestScoreChapters_EmptyKeywordsYieldNothing(t *testing.T) {
	chapters := []*corpus.ChapterInfo{{ID: "a", Title: "Мотивация"}}
	assert.Empty(t, ScoreChapters(chapters, nil))
}

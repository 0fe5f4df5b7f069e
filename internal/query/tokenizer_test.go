package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     []string
	}{
		{
			name:     "stop words and short tokens dropped",
			question: "Что такое делегирование полномочий?",
			want:     []string{"делегирование", "полномочий"},
		},
		{
			name:     "lowercase and punctuation split",
			question: "Мотивация, KPI и контроль!",
			want:     []string{"мотивация", "kpi", "контроль"},
		},
		{
			name:     "duplicates keep first occurrence",
			question: "контроль есть контроль",
			want:     []string{"контроль"},
		},
		{
			name:     "mixed language stop words",
			question: "what is лидерство",
			want:     []string{"лидерство"},
		},
		{
			name:     "empty question",
			question: "",
			want:     nil,
		},
		{
			name:     "only stop words",
			question: "что это как",
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.question))
		})
	}
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, isStopWord("что"))
	assert.True(t, isStopWord("ЧТО"))
	assert.False(t, isStopWord("делегирование"))
}

func TestRussianNormalizer_Variants(t *testing.T) {
	tests := []struct {
		term string
		want []string
	}{
		{"мотивация", []string{"мотивация", "мотивац"}},
		{"полномочий", []string{"полномочий", "полномоч"}},
		{"KPI", []string{"kpi"}},
		// Stripping would leave fewer than three characters.
		{"ром", []string{"ром"}},
	}

	n := RussianNormalizer{}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Variants(tt.term))
		})
	}
}

func TestRussianNormalizer_LongestSuffixFirst(t *testing.T) {
	// "иями" must win over the bare "и" ending.
	got := RussianNormalizer{}.Variants("компетенциями")
	assert.Equal(t, []string{"компетенциями", "компетенц"}, got)
}

func TestNoopNormalizer(t *testing.T) {
	assert.Equal(t, []string{"делегирование"}, NoopNormalizer{}.Variants("Делегирование"))
}

func TestCorrectTypos(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   []string
	}{
		{
			name:   "correction follows the misspelling",
			tokens: []string{"делигирование", "полномочий"},
			want:   []string{"делигирование", "делегирование", "полномочий"},
		},
		{
			name:   "correction already present is not duplicated",
			tokens: []string{"делигирование", "делегирование"},
			want:   []string{"делигирование", "делегирование"},
		},
		{
			name:   "clean tokens pass through",
			tokens: []string{"мотивация"},
			want:   []string{"мотивация"},
		},
		{
			name:   "empty input",
			tokens: nil,
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CorrectTypos(tt.tokens))
		})
	}
}

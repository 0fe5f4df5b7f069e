// Package query turns a raw user question into search keywords: stop-word
// filtered tokenization, typo correction for known domain misspellings,
// and a pluggable lemma-like normalization step.
package query

import (
	"strings"
	"unicode"
)

// minTokenLen drops particles and short function words that survive the
// stop-word filter.
const minTokenLen = 3

// stopWords are question words and function words that carry no search
// signal. Russian first (the corpus language), plus the English ones that
// show up in mixed-language questions.
var stopWords = map[string]struct{}{
	"что": {}, "как": {}, "где": {}, "когда": {}, "почему": {},
	"какой": {}, "какая": {}, "какие": {}, "каким": {}, "каких": {},
	"это": {}, "такое": {}, "такой": {}, "для": {}, "при": {},
	"или": {}, "если": {}, "чем": {}, "между": {}, "можно": {},
	"нужно": {}, "есть": {}, "был": {}, "была": {}, "было": {},
	"они": {}, "оно": {}, "она": {}, "его": {}, "нее": {},
	"the": {}, "and": {}, "what": {}, "how": {}, "why": {},
	"are": {}, "was": {}, "for": {}, "is": {}, "of": {},
}

// Tokenize splits a question into lowercase candidate keywords, dropping
// stop words and tokens shorter than three characters. Order follows the
// question; duplicates are removed keeping the first occurrence.
func Tokenize(question string) []string {
	words := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(words))
	var tokens []string
	for _, w := range words {
		if len([]rune(w)) < minTokenLen {
			continue
		}
		if isStopWord(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		tokens = append(tokens, w)
	}
	return tokens
}

// isStopWord reports whether w is filtered during tokenization.
func isStopWord(w string) bool {
	_, ok := stopWords[strings.ToLower(w)]
	return ok
}

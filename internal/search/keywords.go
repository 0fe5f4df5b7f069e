package search

import (
	"strings"

	"github.com/nataliafedorovabi/OBS-book-search/internal/corpus"
	"github.com/nataliafedorovabi/OBS-book-search/internal/lexical"
	"github.com/nataliafedorovabi/OBS-book-search/internal/query"
)

// buildKeywords merges literal question tokens with oracle-proposed terms
// into one keyword set. Literal tokens come first and are marked priority;
// tokenizing independently of the oracle guards against the oracle
// dropping terms the user actually typed.
func buildKeywords(question string, oracleTerms []string, norm query.Normalizer) []lexical.Keyword {
	literal := query.CorrectTypos(query.Tokenize(question))

	seen := make(map[string]struct{}, len(literal)+len(oracleTerms))
	keywords := make([]lexical.Keyword, 0, len(literal)+len(oracleTerms))

	for _, tok := range literal {
		key := strings.ToLower(tok)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keywords = append(keywords, lexical.NewKeyword(tok, norm.Variants(tok), true))
	}

	for _, term := range oracleTerms {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		key := strings.ToLower(term)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keywords = append(keywords, lexical.NewKeyword(term, norm.Variants(term), false))
	}

	return keywords
}

// resolveChapters maps oracle-returned chapter references (ids, numbers,
// or title fragments) onto chapter ids. Unresolvable references are
// dropped silently: the oracle is allowed to hallucinate, the bonus just
// does not apply.
func resolveChapters(index *corpus.Index, refs []string) map[string]struct{} {
	if len(refs) == 0 {
		return nil
	}

	resolved := make(map[string]struct{})
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if _, ok := index.Chapter(ref); ok {
			resolved[ref] = struct{}{}
			continue
		}
		lowered := strings.ToLower(ref)
		for _, ch := range index.Chapters() {
			if numberMatches(ch.Number, ref) || strings.Contains(strings.ToLower(ch.Title), lowered) {
				resolved[ch.ID] = struct{}{}
			}
		}
	}
	return resolved
}

// numberMatches reports whether ref is exactly the chapter number.
func numberMatches(number int, ref string) bool {
	if number <= 0 {
		return false
	}
	digits := 0
	n := 0
	for _, r := range ref {
		if r < '0' || r > '9' {
			return false
		}
		n = n*10 + int(r-'0')
		digits++
	}
	return digits > 0 && n == number
}

package query

import "strings"

// Normalizer expands a keyword into a small set of matchable variants.
// This is deliberately not a full stemmer: the goal is to catch
// inflectional endings cheaply, and implementations for other corpus
// languages can be swapped in without touching the searchers.
type Normalizer interface {
	// Variants returns lowercase matchable forms for term, always
	// including the lowercased term itself.
	Variants(term string) []string
}

// russianSuffixes are common inflectional endings, longest first so a
// single pass strips the most specific match. The list targets noun case
// declension and adjective agreement, not verb morphology.
var russianSuffixes = []string{
	"иями", "ями", "ами", "иях",
	"ого", "его", "ому", "ему", "ыми", "ими",
	"ях", "ах", "ам", "ям", "ов", "ев", "ой", "ей",
	"ом", "ем", "ий", "ый", "ая", "яя", "ое", "ее",
	"ие", "ые", "ых", "их", "ию", "ия", "ии",
	"а", "я", "о", "е", "у", "ю", "ы", "и", "ь",
}

// RussianNormalizer strips Russian inflectional suffixes.
type RussianNormalizer struct{}

// Variants returns the lowercased term and, when a suffix can be removed
// without leaving fewer than three characters, the stripped stem.
func (RussianNormalizer) Variants(term string) []string {
	lower := strings.ToLower(term)
	variants := []string{lower}

	runes := []rune(lower)
	for _, suffix := range russianSuffixes {
		sr := []rune(suffix)
		if len(runes)-len(sr) < minTokenLen {
			continue
		}
		if strings.HasSuffix(lower, suffix) {
			stem := string(runes[:len(runes)-len(sr)])
			if stem != lower {
				variants = append(variants, stem)
			}
			break
		}
	}
	return variants
}

// NoopNormalizer performs no expansion. Useful for corpora in languages
// without a suffix list, and in tests that need exact matching.
type NoopNormalizer struct{}

// Variants returns only the lowercased term.
func (NoopNormalizer) Variants(term string) []string {
	return []string{strings.ToLower(term)}
}

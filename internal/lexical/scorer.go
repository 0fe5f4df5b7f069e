// Package lexical computes keyword relevance scores over the context tree.
// Scores are positional (title > summary > body) and comparable only
// within a single search invocation.
package lexical

import (
	"sort"
	"strings"

	"github.com/nataliafedorovabi/OBS-book-search/internal/corpus"
)

// Keyword is a single search keyword with its lemma-like variant set.
// Variants are lowercase and always include the surface form itself.
type Keyword struct {
	// Term is the original surface form of the keyword.
	Term string

	// Variants are lowercase matchable forms (surface form plus
	// suffix-stripped stems). A keyword matches a target when any
	// variant is a substring of it.
	Variants []string

	// Priority marks keywords extracted verbatim from the user's
	// question. They weigh 3x against oracle-suggested terms: words
	// the user actually typed are more trustworthy than inferred
	// expansions.
	Priority bool
}

// NewKeyword builds a keyword with the given surface form and variants.
// When variants is empty, the lowercased term is the only variant.
func NewKeyword(term string, variants []string, priority bool) Keyword {
	if len(variants) == 0 {
		variants = []string{strings.ToLower(term)}
	}
	return Keyword{Term: term, Variants: variants, Priority: priority}
}

// Position weights for priority keywords at chunk level.
// Secondary keywords use the same weights divided by secondaryDivisor.
const (
	weightSectionTitle = 15.0
	weightChapterTitle = 9.0
	weightTextHit      = 3.0
	weightKeywordTag   = 1.5

	secondaryDivisor = 3.0
)

// Chapter-level position weights.
const (
	chapterWeightTitle   = 3.0
	chapterWeightSummary = 2.0
	chapterWeightConcept = 2.0
)

// ChapterScore pairs a chapter with its relevance score.
type ChapterScore struct {
	Chapter *corpus.ChapterInfo
	Score   float64
}

// matches reports whether any variant of the keyword occurs in the
// lowercased target.
func (k Keyword) matches(loweredTarget string) bool {
	for _, v := range k.Variants {
		if v != "" && strings.Contains(loweredTarget, v) {
			return true
		}
	}
	return false
}

// occurrences returns the highest occurrence count of any variant in the
// lowercased target. Taking the maximum rather than the sum keeps a stem
// and its inflected surface form from being counted twice for the same
// position in the text.
func (k Keyword) occurrences(loweredTarget string) int {
	best := 0
	for _, v := range k.Variants {
		if v == "" {
			continue
		}
		if n := strings.Count(loweredTarget, v); n > best {
			best = n
		}
	}
	return best
}

// ScoreChapters ranks chapters by keyword relevance against title,
// summary, and key concepts. Chapters with score 0 are excluded; ties
// keep document order (stable sort). An empty keyword set yields no
// ranked chapters.
func ScoreChapters(chapters []*corpus.ChapterInfo, keywords []Keyword) []ChapterScore {
	var out []ChapterScore
	for _, ch := range chapters {
		title := strings.ToLower(ch.Title)
		summary := strings.ToLower(ch.Summary)

		var score float64
		for _, kw := range keywords {
			if kw.matches(title) {
				score += chapterWeightTitle
			}
			if kw.matches(summary) {
				score += chapterWeightSummary
			}
			for _, concept := range ch.KeyConcepts {
				if kw.matches(strings.ToLower(concept)) {
					score += chapterWeightConcept
					break
				}
			}
		}
		if score > 0 {
			out = append(out, ChapterScore{Chapter: ch, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// ScoreChunk scores one chunk against the keyword set using the two-tier
// positional scheme. Occurrence counting in body text is linear: depth of
// coverage is rewarded without further scaling by text length.
// An empty keyword set yields 0 for every chunk.
func ScoreChunk(chunk *corpus.ChunkInfo, keywords []Keyword) float64 {
	text := strings.ToLower(chunk.Text)
	sectionTitle := strings.ToLower(chunk.SectionTitle)
	chapterTitle := strings.ToLower(chunk.ChapterTitle)

	var score float64
	for _, kw := range keywords {
		tier := 1.0
		if !kw.Priority {
			tier = 1.0 / secondaryDivisor
		}

		if kw.matches(sectionTitle) {
			score += weightSectionTitle * tier
		}
		if kw.matches(chapterTitle) {
			score += weightChapterTitle * tier
		}
		if n := kw.occurrences(text); n > 0 {
			score += weightTextHit * float64(n) * tier
		}
		for _, tag := range chunk.Keywords {
			if kw.matches(strings.ToLower(tag)) {
				score += weightKeywordTag * tier
				break
			}
		}
	}
	return score
}

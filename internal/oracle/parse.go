package oracle

import (
	"encoding/json"
	"strings"

	"github.com/nataliafedorovabi/OBS-book-search/internal/errors"
)

// reply is the structured shape requested from the oracle. Fields are
// validated here and nowhere else: nothing deeper in the pipeline ever
// sees an untrusted oracle field.
type reply struct {
	SearchTerms []string `json:"search_terms"`
	Chapters    []string `json:"chapters"`
}

// parseReply extracts the JSON object from a raw model reply. Models
// routinely wrap JSON in code fences or prose, so the parser takes the
// outermost brace-delimited span rather than requiring a clean document.
func parseReply(raw string) (*reply, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, errors.New(errors.ErrCodeOracleMalformed,
			"no JSON object in oracle reply", nil)
	}

	var r reply
	if err := json.Unmarshal([]byte(raw[start:end+1]), &r); err != nil {
		return nil, errors.New(errors.ErrCodeOracleMalformed,
			"oracle reply is not valid JSON", err)
	}

	r.SearchTerms = cleanTerms(r.SearchTerms)
	r.Chapters = cleanTerms(r.Chapters)
	return &r, nil
}

// cleanTerms trims whitespace and drops empty or duplicate entries,
// preserving order.
func cleanTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := terms[:0]
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

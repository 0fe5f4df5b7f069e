package query

import "strings"

// typoCorrections maps misspellings of domain terms observed in real user
// questions to their dictionary forms. The corrected form is added as an
// extra candidate; the original token is always kept, because the
// correction itself may be wrong.
var typoCorrections = map[string]string{
	"делигирование": "делегирование",
	"делигировать":  "делегировать",
	"мотивацыя":     "мотивация",
	"огранизация":   "организация",
	"огранизации":   "организации",
	"колектив":      "коллектив",
	"колектива":     "коллектива",
	"лидерсво":      "лидерство",
	"руковотство":   "руководство",
	"менеджмента":   "менеджмент",
	"кампетенция":   "компетенция",
	"кампетенции":   "компетенции",
}

// CorrectTypos appends known corrections for misspelled tokens. Input
// order is preserved; corrections follow the token they correct and are
// deduplicated against tokens already present.
func CorrectTypos(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		seen[strings.ToLower(t)] = struct{}{}
	}

	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, t)
		if fixed, ok := typoCorrections[strings.ToLower(t)]; ok {
			if _, dup := seen[fixed]; !dup {
				out = append(out, fixed)
				seen[fixed] = struct{}{}
			}
		}
	}
	return out
}

// Package answer is the boundary to the answer-generation oracle: it
// assembles the grounding context block from search results, applies the
// low-relevance gate, and returns generated text. The chat front-end
// formatting stays outside this package.
package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/nataliafedorovabi/OBS-book-search/internal/oracle"
	"github.com/nataliafedorovabi/OBS-book-search/internal/search"
)

// Canned replies for the cases where generation must not run. The bot
// answers only from the course books and says so honestly.
const (
	NoContextReply = "К сожалению, я не нашёл ответа на этот вопрос в материалах курса. " +
		"Попробуйте переформулировать вопрос или спросить о другой теме."

	LowRelevanceReply = "Я нашёл лишь отдалённо связанные фрагменты и не могу дать " +
		"уверенный ответ по материалам курса. Попробуйте задать вопрос конкретнее."
)

// lowRelevanceThreshold rejects generation when every supporting chunk
// scores below it. Generating from weak evidence produces confident
// nonsense, which is worse than admitting ignorance.
const lowRelevanceThreshold = 0.4

const answerPrompt = `Ты — ассистент курса "Управление организацией и персоналом".
Отвечай только на основе приведённых фрагментов из книг курса. Если ответа
в фрагментах нет, честно скажи об этом. Не выдумывай факты.

КОНТЕКСТ ИЗ КНИГ КУРСА:
%s

ВОПРОС СТУДЕНТА: %s

ОТВЕТ:`

// Generator produces answers grounded in retrieved chunks.
type Generator struct {
	client oracle.CompletionClient
}

// NewGenerator creates an answer generator over the completion oracle.
func NewGenerator(client oracle.CompletionClient) *Generator {
	return &Generator{client: client}
}

// BuildContext renders results into the numbered-fragment context block.
func BuildContext(results []search.Result) string {
	parts := make([]string, 0, len(results))
	for i, r := range results {
		header := fmt.Sprintf("[Фрагмент %d | %s, %s]", i+1, r.BookTitle, r.ChapterTitle)
		parts = append(parts, header+"\n"+r.Text)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// Generate produces an answer for question from results. Empty or
// uniformly low-scoring results short-circuit to a canned reply without
// calling the oracle.
func (g *Generator) Generate(ctx context.Context, question string, results []search.Result) (string, error) {
	if len(results) == 0 {
		return NoContextReply, nil
	}

	allLow := true
	for _, r := range results {
		if r.Score >= lowRelevanceThreshold {
			allLow = false
			break
		}
	}
	if allLow {
		return LowRelevanceReply, nil
	}

	prompt := fmt.Sprintf(answerPrompt, BuildContext(results), question)
	reply, err := g.client.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// Package oracle adapts external language-model services behind narrow
// request/response interfaces. Every oracle call carries a timeout and a
// bounded retry count, and degrades to a documented fallback instead of
// propagating the failure: understanding never fails the overall request.
package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nataliafedorovabi/OBS-book-search/internal/errors"
)

// CompletionClient is the narrow interface over the text-generation oracle.
type CompletionClient interface {
	// Complete sends a prompt and returns the raw model reply.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Understanding is the outcome of a query-understanding call. When the
// oracle is unavailable or returns nothing usable, Fallback is true and
// Terms carries the original question as the only search term.
type Understanding struct {
	// Terms are search keywords in oracle-proposed order.
	Terms []string

	// Chapters are ids or titles of chapters the oracle judged relevant.
	Chapters []string

	// Fallback marks a degraded result produced without the oracle.
	Fallback bool
}

// Adapter turns a raw question into search terms and candidate chapters
// through the completion oracle, with a local fallback.
type Adapter struct {
	client  CompletionClient
	retry   errors.RetryConfig
	timeout time.Duration
	logger  *slog.Logger
}

// AdapterOption configures the adapter.
type AdapterOption func(*Adapter)

// WithRetry overrides the default retry configuration.
func WithRetry(cfg errors.RetryConfig) AdapterOption {
	return func(a *Adapter) { a.retry = cfg }
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) AdapterOption {
	return func(a *Adapter) { a.timeout = d }
}

// WithLogger sets the logger used for degraded-mode reporting.
func WithLogger(l *slog.Logger) AdapterOption {
	return func(a *Adapter) { a.logger = l }
}

// NewAdapter creates a query-understanding adapter. client may be nil, in
// which case every call takes the fallback path; this keeps the searchers
// usable without any oracle configured.
func NewAdapter(client CompletionClient, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		client:  client,
		retry:   errors.DefaultRetryConfig(),
		timeout: 30 * time.Second,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

const understandPrompt = `Ты помогаешь искать ответы в учебниках курса "Управление организацией и персоналом".

Список глав курса:
%s

Вопрос студента: %s

Определи, о чём вопрос, и верни строго JSON без пояснений:
{"search_terms": ["ключевые слова для поиска"], "chapters": ["номера или названия релевантных глав"]}`

const expandPrompt = `Ты помогаешь искать ответы в учебниках курса "Управление организацией и персоналом".
Прямой поиск по вопросу ничего не нашёл. Подбери более широкие и ассоциативные термины:
синонимы, смежные понятия, термины из учебников, которыми авторы могли описать эту тему.

Список глав курса:
%s

Вопрос студента: %s

Верни строго JSON без пояснений:
{"search_terms": ["расширенные поисковые термины"], "chapters": ["номера или названия подходящих глав"]}`

// Understand transforms a question into search terms and candidate
// chapters. chapterDigest is the compact chapter listing used as topic
// grounding inside the prompt.
func (a *Adapter) Understand(ctx context.Context, question, chapterDigest string) Understanding {
	return a.ask(ctx, fmt.Sprintf(understandPrompt, chapterDigest, question), question)
}

// Expand is the escalation mode: it requests broader, associative terms
// rather than literal ones. Used when the direct search round was judged
// insufficient.
func (a *Adapter) Expand(ctx context.Context, question, chapterDigest string) Understanding {
	return a.ask(ctx, fmt.Sprintf(expandPrompt, chapterDigest, question), question)
}

func (a *Adapter) ask(ctx context.Context, prompt, question string) Understanding {
	fallback := Understanding{Terms: []string{question}, Fallback: true}
	if a.client == nil {
		return fallback
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := errors.RetryWithResult(callCtx, a.retry, func() (string, error) {
		return a.client.Complete(callCtx, prompt)
	})
	if err != nil {
		a.logger.Warn("query understanding oracle unavailable, using literal question",
			"error", err)
		return fallback
	}

	reply, err := parseReply(raw)
	if err != nil {
		// Same fallback as an unavailable oracle; the raw reply is
		// logged for diagnosis.
		a.logger.Warn("malformed oracle reply, using literal question",
			"error", err, "reply", raw)
		return fallback
	}
	if len(reply.SearchTerms) == 0 {
		a.logger.Warn("oracle returned no search terms, using literal question")
		return fallback
	}

	return Understanding{Terms: reply.SearchTerms, Chapters: reply.Chapters}
}

// Package escalate implements the two-round retrieval protocol: a cheap
// direct search first, then an LLM-expanded round when a quality gate
// judges the direct results insufficient. Literal keyword search silently
// fails on paraphrase and synonym mismatch; the score and keyword-overlap
// gate exists to detect exactly that case and bound the cost of the
// oracle-backed expansion to it.
package escalate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nataliafedorovabi/OBS-book-search/internal/corpus"
	"github.com/nataliafedorovabi/OBS-book-search/internal/oracle"
	"github.com/nataliafedorovabi/OBS-book-search/internal/query"
	"github.com/nataliafedorovabi/OBS-book-search/internal/search"
	"github.com/nataliafedorovabi/OBS-book-search/internal/session"
)

// Config holds the quality-gate constants. Both thresholds are empirical;
// they are configuration, not laws.
type Config struct {
	// ScoreThreshold is the minimum top-result score for accepting the
	// direct round.
	ScoreThreshold float64

	// OverlapThreshold is the minimum share of significant question
	// words that must appear across the returned chunk texts.
	OverlapThreshold float64

	// MaxRounds caps expansion rounds per question. After it the
	// controller reports exhaustion instead of calling the oracle again.
	MaxRounds int

	// Base carries the retrieval caps applied to every round. Zero
	// fields fall back to the retrieval defaults.
	Base search.Options
}

// DefaultConfig returns the observed production constants.
func DefaultConfig() Config {
	return Config{
		ScoreThreshold:   0.5,
		OverlapThreshold: 0.5,
		MaxRounds:        3,
	}
}

// Outcome is what the controller hands to the answer-generation caller.
type Outcome struct {
	// Results are the accepted chunks, highest score first.
	Results []search.Result

	// Expanded reports that at least one oracle-expanded round ran.
	Expanded bool

	// Round is the number of expansion rounds completed for the
	// session's current question.
	Round int

	// Exhausted reports that the round cap was reached and no further
	// expansion will run for this question.
	Exhausted bool
}

// Controller drives the Direct → Accept / Expand state machine per
// incoming question, keeping per-user state in the session store.
type Controller struct {
	retriever search.Retriever
	adapter   *oracle.Adapter
	index     *corpus.Index
	sessions  *session.Store
	cfg       Config
	logger    *slog.Logger
}

// New creates a controller. adapter may be nil, which disables the
// expansion round (the direct results are returned as-is).
func New(
	retriever search.Retriever,
	adapter *oracle.Adapter,
	index *corpus.Index,
	sessions *session.Store,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		retriever: retriever,
		adapter:   adapter,
		index:     index,
		sessions:  sessions,
		cfg:       cfg,
		logger:    logger,
	}
}

// Ask runs the protocol for a fresh question from userID.
func (c *Controller) Ask(ctx context.Context, userID, question string) (Outcome, error) {
	sess := c.sessions.Get(userID)
	sess.Reset(question)

	direct, err := c.retriever.Search(ctx, question, c.cfg.Base)
	if err != nil {
		return Outcome{}, err
	}

	if c.accept(question, direct) {
		sess.MarkSeen(chunkIDs(direct))
		return Outcome{Results: direct}, nil
	}

	c.logger.Info("direct round rejected, escalating",
		"user", userID,
		"results", len(direct))

	expanded, err := c.expandRound(ctx, sess, question, direct)
	if err != nil {
		return Outcome{}, err
	}
	return expanded, nil
}

// More runs a user-initiated extra expansion round for the session's
// current question, excluding everything already surfaced.
func (c *Controller) More(ctx context.Context, userID string) (Outcome, error) {
	sess := c.sessions.Get(userID)
	if sess.Question == "" {
		return Outcome{}, nil
	}
	if sess.Round >= c.cfg.MaxRounds {
		return Outcome{Round: sess.Round, Exhausted: true}, nil
	}
	return c.expandRound(ctx, sess, sess.Question, nil)
}

// Question returns the session's current question for userID, or the
// empty string when the user has not asked anything yet.
func (c *Controller) Question(userID string) string {
	return c.sessions.Get(userID).Question
}

// expandRound invokes the oracle's expansion mode and re-runs retrieval
// weighted toward the suggested chapters, merging with and deduplicating
// against prior results. Expanded results are accepted regardless of
// score: this is already the best-effort path.
func (c *Controller) expandRound(
	ctx context.Context, sess *session.Session, question string, prior []search.Result,
) (Outcome, error) {
	if c.adapter == nil {
		sess.MarkSeen(chunkIDs(prior))
		return Outcome{Results: prior}, nil
	}

	u := c.adapter.Expand(ctx, question, c.index.ChapterDigest())

	exclude := make(map[string]struct{}, len(sess.Seen)+len(prior))
	for id := range sess.Seen {
		exclude[id] = struct{}{}
	}
	for _, r := range prior {
		exclude[r.ChunkID] = struct{}{}
	}

	opts := c.cfg.Base
	opts.SkipUnderstand = true
	opts.ExtraTerms = u.Terms
	opts.PreferredChapters = u.Chapters
	opts.Exclude = exclude
	found, err := c.retriever.Search(ctx, question, opts)
	if err != nil {
		return Outcome{}, err
	}

	merged := mergeResults(prior, found)
	sess.Round++
	sess.MarkSeen(chunkIDs(merged))

	return Outcome{
		Results:  merged,
		Expanded: true,
		Round:    sess.Round,
	}, nil
}

// accept is the Direct → Accept gate: non-empty results, a top score at
// or above the threshold, and enough of the question's significant words
// present somewhere in the returned texts.
func (c *Controller) accept(question string, results []search.Result) bool {
	if len(results) == 0 {
		return false
	}
	if results[0].Score < c.cfg.ScoreThreshold {
		return false
	}
	return c.keywordOverlap(question, results) >= c.cfg.OverlapThreshold
}

// keywordOverlap returns the share of significant question words that
// appear in at least one returned chunk's text. A question with no
// significant words trivially passes.
func (c *Controller) keywordOverlap(question string, results []search.Result) float64 {
	words := query.Tokenize(question)
	if len(words) == 0 {
		return 1.0
	}

	var texts []string
	for _, r := range results {
		texts = append(texts, strings.ToLower(r.Text))
	}

	covered := 0
	for _, w := range words {
		for _, text := range texts {
			if strings.Contains(text, w) {
				covered++
				break
			}
		}
	}
	return float64(covered) / float64(len(words))
}

// mergeResults concatenates prior and newly found results, deduplicating
// by chunk id and keeping the higher-scored copy. Prior ordering wins on
// equal scores.
func mergeResults(prior, found []search.Result) []search.Result {
	byID := make(map[string]int, len(prior))
	merged := make([]search.Result, 0, len(prior)+len(found))

	for _, r := range prior {
		byID[r.ChunkID] = len(merged)
		merged = append(merged, r)
	}
	for _, r := range found {
		if i, dup := byID[r.ChunkID]; dup {
			if r.Score > merged[i].Score {
				merged[i] = r
			}
			continue
		}
		byID[r.ChunkID] = len(merged)
		merged = append(merged, r)
	}
	return merged
}

func chunkIDs(results []search.Result) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ChunkID
	}
	return ids
}

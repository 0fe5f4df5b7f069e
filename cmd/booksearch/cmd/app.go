package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/nataliafedorovabi/OBS-book-search/internal/answer"
	"github.com/nataliafedorovabi/OBS-book-search/internal/config"
	"github.com/nataliafedorovabi/OBS-book-search/internal/corpus"
	"github.com/nataliafedorovabi/OBS-book-search/internal/embed"
	"github.com/nataliafedorovabi/OBS-book-search/internal/escalate"
	"github.com/nataliafedorovabi/OBS-book-search/internal/logging"
	"github.com/nataliafedorovabi/OBS-book-search/internal/oracle"
	"github.com/nataliafedorovabi/OBS-book-search/internal/search"
	"github.com/nataliafedorovabi/OBS-book-search/internal/session"
	"github.com/nataliafedorovabi/OBS-book-search/internal/usage"
	"github.com/nataliafedorovabi/OBS-book-search/internal/vector"
)

// app bundles the wired service for a single CLI invocation.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	index      *corpus.Index
	adapter    *oracle.Adapter
	controller *escalate.Controller
	retriever  search.Retriever
	generator  *answer.Generator
	limiter    *usage.Limiter
	cleanup    func()
}

// newApp loads configuration and wires the full retrieval stack. The
// semantic path is optional: with no vector snapshot or embedding key
// the engine runs keyword-only on the corpus tree.
func newApp() (*app, error) {
	cfg, err := config.Load(flagProjectDir)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	logCfg.WriteToStderr = false
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("logging setup: %w", err)
	}
	slog.SetDefault(logger)

	index, err := corpus.Load(cfg.Paths.Corpus)
	if err != nil {
		cleanup()
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, index: index, cleanup: cleanup}

	// Oracle is optional: without an API key the engine degrades to
	// literal-keyword search and skips expansion rounds.
	if key := cfg.OracleAPIKey(); key != "" {
		client := oracle.NewOpenAIClient(oracle.ClientConfig{
			APIKey:      key,
			BaseURL:     cfg.Oracle.BaseURL,
			Model:       cfg.Oracle.Model,
			Temperature: cfg.Oracle.Temperature,
			MaxTokens:   cfg.Oracle.MaxTokens,
		})
		a.adapter = oracle.NewAdapter(client,
			oracle.WithTimeout(cfg.Oracle.Timeout),
			oracle.WithLogger(logger))
		a.generator = answer.NewGenerator(client)
	} else {
		logger.Warn("oracle api key missing, query understanding disabled",
			slog.String("env", cfg.Oracle.APIKeyEnv))
	}

	a.retriever = a.buildRetriever()

	a.limiter = usage.NewLimiter(usage.LimiterConfig{
		DailyLimit:    cfg.Limits.DailyRequests,
		WarnThreshold: cfg.Limits.WarnThreshold,
		StatsPath:     filepath.Join(cfg.Paths.Stats, "requests.json"),
	}, logger)

	a.controller = escalate.New(a.retriever, a.adapter, index,
		session.NewStore(session.DefaultCapacity),
		escalate.Config{
			ScoreThreshold:   cfg.Search.ScoreThreshold,
			OverlapThreshold: cfg.Search.OverlapThreshold,
			MaxRounds:        cfg.Search.MaxRounds,
			Base:             a.searchOptions(),
		}, logger)

	return a, nil
}

func (a *app) buildRetriever() search.Retriever {
	cfg := a.cfg

	if cfg.Paths.Vectors == "" {
		return search.NewTreeSearcher(a.index, a.adapter, search.WithTreeLogger(a.logger))
	}

	snap, err := vector.LoadSnapshot(cfg.Paths.Vectors)
	if err != nil {
		a.logger.Warn("vector snapshot unavailable, running keyword-only",
			slog.String("path", cfg.Paths.Vectors),
			slog.String("error", err.Error()))
		return search.NewTreeSearcher(a.index, a.adapter, search.WithTreeLogger(a.logger))
	}

	vecIndex, err := vector.Build(snap)
	if err != nil {
		a.logger.Warn("vector index build failed, running keyword-only",
			slog.String("error", err.Error()))
		return search.NewTreeSearcher(a.index, a.adapter, search.WithTreeLogger(a.logger))
	}

	key := cfg.EmbeddingsAPIKey()
	if key == "" {
		a.logger.Warn("embeddings api key missing, running keyword-only",
			slog.String("env", cfg.Embeddings.APIKeyEnv))
		return search.NewTreeSearcher(a.index, a.adapter, search.WithTreeLogger(a.logger))
	}

	budget := usage.NewBudget(usage.BudgetConfig{
		FreeLimit:     cfg.Limits.EmbeddingTokens,
		HardLimit:     cfg.Limits.EmbeddingHardStop,
		WarnThreshold: cfg.Limits.WarnThreshold,
		StatsPath:     filepath.Join(cfg.Paths.Stats, "tokens.json"),
	}, nil, a.logger)

	var embedder embed.Embedder = embed.NewOpenAIEmbedder(embed.Config{
		APIKey:     key,
		BaseURL:    cfg.Embeddings.BaseURL,
		Model:      cfg.Embeddings.Model,
		Dimensions: cfg.Embeddings.Dimensions,
	}, budget)
	embedder = embed.NewCachedEmbedder(embedder, cfg.Embeddings.CacheSize)

	return search.NewHybridSearcher(a.index, vecIndex, embedder, a.adapter,
		search.WithHybridLogger(a.logger))
}

// searchOptions translates the configured caps into retrieval options.
func (a *app) searchOptions() search.Options {
	return search.Options{
		MaxChapters:   a.cfg.Search.MaxChapters,
		MaxChunks:     a.cfg.Search.MaxChunks,
		PerChapterCap: a.cfg.Search.PerChapterCap,
	}
}

func (a *app) close() {
	if a.cleanup != nil {
		a.cleanup()
	}
}

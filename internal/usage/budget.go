package usage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// BudgetConfig configures the embedding token budget guard.
type BudgetConfig struct {
	// FreeLimit is the provider's free-tier token allowance.
	FreeLimit int64

	// HardLimit stops all embedding calls, leaving a safety buffer
	// below the free limit.
	HardLimit int64

	// WarnThreshold is the fraction of FreeLimit at which the warning
	// notification fires (once).
	WarnThreshold float64

	// StatsPath is the JSON file the running total persists to.
	StatsPath string
}

// DefaultBudgetConfig mirrors the multilingual embedding provider's
// free tier: 50M tokens free, stop at 45M to keep a buffer.
func DefaultBudgetConfig() BudgetConfig {
	return BudgetConfig{
		FreeLimit:     50_000_000,
		HardLimit:     45_000_000,
		WarnThreshold: 0.8,
	}
}

// budgetState is the persisted shape.
type budgetState struct {
	TotalTokens  int64     `json:"total_tokens"`
	Warned       bool      `json:"warned"`
	LimitReached bool      `json:"limit_reached"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Budget tracks embedding token spend and blocks calls past the hard
// limit. It implements the embedder's token recorder boundary.
type Budget struct {
	mu     sync.Mutex
	cfg    BudgetConfig
	state  budgetState
	notify func(string)
	logger *slog.Logger
}

// NewBudget creates a budget guard, loading the persisted total when
// present. notify may be nil; it receives human-readable warnings for
// admin delivery.
func NewBudget(cfg BudgetConfig, notify func(string), logger *slog.Logger) *Budget {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Budget{cfg: cfg, notify: notify, logger: logger}
	b.load()
	return b
}

func (b *Budget) load() {
	if b.cfg.StatsPath == "" {
		return
	}
	data, err := os.ReadFile(b.cfg.StatsPath)
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, &b.state); err != nil {
		b.logger.Warn("token budget file corrupt, starting from zero", "error", err)
		return
	}
	b.logger.Info("token budget loaded",
		"total_tokens", b.state.TotalTokens,
		"percent_used", b.percentUsed())
}

func (b *Budget) save() {
	if b.cfg.StatsPath == "" {
		return
	}
	b.state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(&b.state, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(b.cfg.StatsPath), 0o755); err != nil {
		return
	}
	if err := os.WriteFile(b.cfg.StatsPath, data, 0o644); err != nil {
		b.logger.Warn("cannot persist token budget", "error", err)
	}
}

func (b *Budget) percentUsed() float64 {
	if b.cfg.FreeLimit == 0 {
		return 0
	}
	return float64(b.state.TotalTokens) / float64(b.cfg.FreeLimit) * 100
}

// CanSpend reports whether the hard limit still allows an embedding call.
// Crossing the limit notifies once and latches.
func (b *Budget) CanSpend() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state.TotalTokens < b.cfg.HardLimit {
		return true
	}
	if !b.state.LimitReached {
		b.state.LimitReached = true
		b.save()
		b.send(fmt.Sprintf(
			"Embedding token budget exhausted: %d of %d tokens used. Embedding calls are stopped.",
			b.state.TotalTokens, b.cfg.HardLimit))
	}
	return false
}

// Record adds consumed tokens to the running total and fires the warning
// notification when spend crosses the threshold.
func (b *Budget) Record(tokens int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state.TotalTokens += int64(tokens)
	b.save()

	if !b.state.Warned &&
		b.state.TotalTokens >= int64(float64(b.cfg.FreeLimit)*b.cfg.WarnThreshold) {
		b.state.Warned = true
		b.save()
		b.send(fmt.Sprintf(
			"Embedding token spend at %.1f%% of the free tier (%d of %d tokens).",
			b.percentUsed(), b.state.TotalTokens, b.cfg.FreeLimit))
	}
}

// TotalTokens returns the recorded spend.
func (b *Budget) TotalTokens() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.TotalTokens
}

func (b *Budget) send(message string) {
	b.logger.Warn(message)
	if b.notify != nil {
		b.notify(message)
	}
}

// Package usage tracks request counts against a daily limit and embedding
// token spend against a paid-tier budget. Both persist to small JSON
// files so restarts do not reset the counters.
package usage

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LimiterConfig configures the daily request limiter.
type LimiterConfig struct {
	// DailyLimit is the number of requests allowed per calendar day.
	DailyLimit int

	// WarnThreshold is the fraction of the daily limit at which the
	// admin notification fires (once per day).
	WarnThreshold float64

	// StatsPath is the JSON file the counters persist to. Empty
	// disables persistence.
	StatsPath string
}

// DefaultLimiterConfig returns the production limits.
func DefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		DailyLimit:    500,
		WarnThreshold: 0.8,
	}
}

// Info is a point-in-time usage summary for user-facing reporting.
type Info struct {
	Date          string  `json:"date"`
	RequestsToday int     `json:"requests_today"`
	Limit         int     `json:"limit"`
	Remaining     int     `json:"remaining"`
	PercentUsed   float64 `json:"percent_used"`
}

// userStats tracks per-user request history.
type userStats struct {
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	Requests  int       `json:"requests"`
}

// limiterState is the persisted shape.
type limiterState struct {
	DailyStats map[string]int        `json:"daily_stats"`
	Users      map[string]*userStats `json:"users"`
	Date       string                `json:"date"`
	Warned     bool                  `json:"warned"`
}

// Limiter enforces the daily request limit with per-user tracking.
type Limiter struct {
	mu     sync.Mutex
	cfg    LimiterConfig
	state  limiterState
	today  string
	count  int
	warned bool
	logger *slog.Logger
}

// NewLimiter creates a limiter, loading persisted counters when present.
// A corrupt stats file is discarded with a warning: losing a day of
// counters is cheaper than refusing to start.
func NewLimiter(cfg LimiterConfig, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Limiter{
		cfg:    cfg,
		today:  today(),
		logger: logger,
		state: limiterState{
			DailyStats: make(map[string]int),
			Users:      make(map[string]*userStats),
		},
	}
	l.load()
	return l
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func (l *Limiter) load() {
	if l.cfg.StatsPath == "" {
		return
	}
	data, err := os.ReadFile(l.cfg.StatsPath)
	if err != nil {
		return
	}
	var st limiterState
	if err := json.Unmarshal(data, &st); err != nil {
		l.logger.Warn("usage stats file corrupt, starting fresh", "error", err)
		return
	}
	if st.DailyStats == nil {
		st.DailyStats = make(map[string]int)
	}
	if st.Users == nil {
		st.Users = make(map[string]*userStats)
	}
	l.state = st
	if st.Date == l.today {
		l.count = st.DailyStats[l.today]
		l.warned = st.Warned
	}
}

// save persists under lock; write failures are logged, not propagated.
func (l *Limiter) save() {
	if l.cfg.StatsPath == "" {
		return
	}
	l.state.Date = l.today
	l.state.Warned = l.warned
	l.state.DailyStats[l.today] = l.count

	data, err := json.MarshalIndent(&l.state, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(l.cfg.StatsPath), 0o755); err != nil {
		l.logger.Warn("cannot create stats directory", "error", err)
		return
	}
	if err := os.WriteFile(l.cfg.StatsPath, data, 0o644); err != nil {
		l.logger.Warn("cannot persist usage stats", "error", err)
	}
}

// rollover resets the daily counter on date change. Callers hold the lock.
func (l *Limiter) rollover() {
	if d := today(); d != l.today {
		l.today = d
		l.count = 0
		l.warned = false
	}
}

// Allow reports whether another request fits under today's limit.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()
	return l.count < l.cfg.DailyLimit
}

// Record counts a request for userID.
func (l *Limiter) Record(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()
	l.count++

	now := time.Now()
	u, ok := l.state.Users[userID]
	if !ok {
		u = &userStats{FirstSeen: now}
		l.state.Users[userID] = u
	}
	u.LastSeen = now
	u.Requests++

	l.save()
}

// ShouldWarn reports, once per day, that usage crossed the warning
// threshold. The caller notifies the admin and the flag latches.
func (l *Limiter) ShouldWarn() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()
	if l.warned {
		return false
	}
	if l.count < int(float64(l.cfg.DailyLimit)*l.cfg.WarnThreshold) {
		return false
	}
	l.warned = true
	l.save()
	return true
}

// UsageInfo returns today's usage summary.
func (l *Limiter) UsageInfo() Info {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rollover()
	remaining := l.cfg.DailyLimit - l.count
	if remaining < 0 {
		remaining = 0
	}
	return Info{
		Date:          l.today,
		RequestsToday: l.count,
		Limit:         l.cfg.DailyLimit,
		Remaining:     remaining,
		PercentUsed:   float64(l.count) / float64(l.cfg.DailyLimit) * 100,
	}
}

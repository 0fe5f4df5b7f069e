package usage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_AllowUnderLimit(t *testing.T) {
	l := NewLimiter(LimiterConfig{DailyLimit: 3, WarnThreshold: 0.8}, nil)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow())
		l.Record("user-1")
	}
	assert.False(t, l.Allow(), "fourth request exceeds the daily limit")
}

func TestLimiter_RecordTracksUsers(t *testing.T) {
	l := NewLimiter(LimiterConfig{DailyLimit: 10, WarnThreshold: 0.8}, nil)

	l.Record("alice")
	l.Record("alice")
	l.Record("bob")

	info := l.UsageInfo()
	assert.Equal(t, 3, info.RequestsToday)
	assert.Equal(t, 10, info.Limit)
	assert.Equal(t, 7, info.Remaining)
	assert.InDelta(t, 30.0, info.PercentUsed, 0.001)
	assert.Equal(t, time.Now().Format("2006-01-02"), info.Date)
}

func TestLimiter_ShouldWarnLatches(t *testing.T) {
	l := NewLimiter(LimiterConfig{DailyLimit: 10, WarnThreshold: 0.8}, nil)

	for i := 0; i < 7; i++ {
		l.Record("u")
	}
	assert.False(t, l.ShouldWarn(), "below threshold")

	l.Record("u")
	assert.True(t, l.ShouldWarn(), "fires once at 80 percent")
	assert.False(t, l.ShouldWarn(), "latched for the rest of the day")

	l.Record("u")
	assert.False(t, l.ShouldWarn())
}

func TestLimiter_PersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats", "usage.json")
	cfg := LimiterConfig{DailyLimit: 5, WarnThreshold: 0.8, StatsPath: path}

	l := NewLimiter(cfg, nil)
	l.Record("alice")
	l.Record("bob")

	reloaded := NewLimiter(cfg, nil)
	info := reloaded.UsageInfo()
	assert.Equal(t, 2, info.RequestsToday)
	assert.Equal(t, 3, info.Remaining)
}

func TestLimiter_WarnLatchSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.json")
	cfg := LimiterConfig{DailyLimit: 2, WarnThreshold: 0.5, StatsPath: path}

	l := NewLimiter(cfg, nil)
	l.Record("u")
	require.True(t, l.ShouldWarn())

	reloaded := NewLimiter(cfg, nil)
	assert.False(t, reloaded.ShouldWarn(), "the warned flag persists across restarts")
}

func TestLimiter_CorruptStatsFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	l := NewLimiter(LimiterConfig{DailyLimit: 5, WarnThreshold: 0.8, StatsPath: path}, nil)
	info := l.UsageInfo()
	assert.Equal(t, 0, info.RequestsToday)
	assert.True(t, l.Allow())
}

func TestLimiter_NoStatsPathIsMemoryOnly(t *testing.T) {
	l := NewLimiter(LimiterConfig{DailyLimit: 1, WarnThreshold: 0.8}, nil)
	l.Record("u")
	assert.False(t, l.Allow())
}

func TestDefaultLimiterConfig(t *testing.T) {
	cfg := DefaultLimiterConfig()
	assert.Equal(t, 500, cfg.DailyLimit)
	assert.InDelta(t, 0.8, cfg.WarnThreshold, 0.001)
}

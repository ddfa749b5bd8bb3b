package config_test

import (
	"testing"

	"go-leavechat/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.False(t, cfg.WeekendCounts)
	assert.True(t, cfg.MinBalance().Equal(decimal.Zero))
	assert.Equal(t, 30, cfg.MaxConsecutiveDays)
	assert.InDelta(t, 0.6, cfg.ConfidenceThreshold, 1e-9)
	assert.Equal(t, "15m0s", cfg.PendingTTL.String())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WEEKEND_COUNTS", "true")
	t.Setenv("MIN_LEAVE_BALANCE", "-5")
	t.Setenv("MAX_CONSECUTIVE_DAYS", "10")
	t.Setenv("CONFIDENCE_THRESHOLD", "0.8")
	t.Setenv("PENDING_TTL", "5m")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.WeekendCounts)
	assert.True(t, cfg.MinBalance().Equal(decimal.NewFromInt(-5)))
	assert.Equal(t, 10, cfg.MaxConsecutiveDays)
	assert.InDelta(t, 0.8, cfg.ConfidenceThreshold, 1e-9)
}

func TestLoad_BadMinBalance(t *testing.T) {
	t.Setenv("MIN_LEAVE_BALANCE", "not-a-number")

	_, err := config.Load()
	assert.Error(t, err)
}

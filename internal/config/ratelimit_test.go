package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	cfg := LoadRateLimitConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 10, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 3*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Minute, cfg.TTL)
	assert.Equal(t, "rl", cfg.Prefix)
}

func TestLoadRateLimitConfigOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_CAPACITY", "25")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "500ms")

	cfg := LoadRateLimitConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 25, cfg.Capacity)
	assert.Equal(t, 500*time.Millisecond, cfg.RefillInterval)
}

func TestLoadRateLimitConfigClampsTTL(t *testing.T) {
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "5m")
	t.Setenv("RATE_LIMIT_TTL", "1m")

	cfg := LoadRateLimitConfig()

	// TTL may never undercut five refill intervals.
	assert.Equal(t, 25*time.Minute, cfg.TTL)
}

func TestLoadRateLimitConfigBadValuesFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "not-a-number")
	t.Setenv("RATE_LIMIT_ENABLED", "maybe")

	cfg := LoadRateLimitConfig()

	assert.Equal(t, 10, cfg.Capacity)
	assert.True(t, cfg.Enabled)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ailuckly/SmartPropertyManagement/internal/config"
)

func limiterSetup(t *testing.T, cfg config.RateLimitConfig) (echo.MiddlewareFunc, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewTokenBucket(cfg, rdb), mr
}

func hitLimiter(t *testing.T, mw echo.MiddlewareFunc, ip string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = ip + ":51234"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/auth/login")
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(c))
	return rec
}

func TestTokenBucketExhaustion(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       3,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		Prefix:         "rl",
	}
	mw, _ := limiterSetup(t, cfg)

	for i := 0; i < 3; i++ {
		rec := hitLimiter(t, mw, "10.0.0.1")
		assert.Equal(t, http.StatusOK, rec.Code, "attempt %d should pass", i+1)
	}

	rec := hitLimiter(t, mw, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestTokenBucketPerClientIsolation(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		Prefix:         "rl",
	}
	mw, _ := limiterSetup(t, cfg)

	assert.Equal(t, http.StatusOK, hitLimiter(t, mw, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hitLimiter(t, mw, "10.0.0.1").Code)

	// A different client keeps its own bucket.
	assert.Equal(t, http.StatusOK, hitLimiter(t, mw, "10.0.0.2").Code)
}

func TestTokenBucketRefill(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            10 * time.Minute,
		Prefix:         "rl",
	}
	mw, mr := limiterSetup(t, cfg)

	assert.Equal(t, http.StatusOK, hitLimiter(t, mw, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hitLimiter(t, mw, "10.0.0.1").Code)

	// The script clocks itself off ARGV timestamps, so real sleep is what
	// moves the bucket; miniredis FastForward only ages the key TTL.
	mr.FastForward(2 * time.Second)
	time.Sleep(1100 * time.Millisecond)

	assert.Equal(t, http.StatusOK, hitLimiter(t, mw, "10.0.0.1").Code)
}

func TestTokenBucketDisabled(t *testing.T) {
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)
	for i := 0; i < 50; i++ {
		assert.Equal(t, http.StatusOK, hitLimiter(t, mw, "10.0.0.1").Code)
	}
}

func TestTokenBucketFailsOpenWhenRedisDies(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		Prefix:         "rl",
	}
	mw, mr := limiterSetup(t, cfg)
	mr.Close()

	assert.Equal(t, http.StatusOK, hitLimiter(t, mw, "10.0.0.1").Code)
}

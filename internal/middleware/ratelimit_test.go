package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterRefillsPerInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(ctx, 2, time.Minute)
	rl.now = func() time.Time { return clock }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "buckets are per key")

	clock = clock.Add(time.Minute)
	assert.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiterCleanupDropsIdleVisitors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(ctx, 1, time.Minute)
	rl.now = func() time.Time { return clock }
	rl.Allow("10.0.0.1")

	clock = clock.Add(4 * time.Minute)
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.Empty(t, rl.visitors)
}

func TestRateLimiterMiddlewareUsesReject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 1, time.Hour)
	r := gin.New()
	r.POST("/portal", rl.Middleware(func(c *gin.Context) {
		c.String(http.StatusTooManyRequests, "slow down")
	}), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.POST("/json", rl.Middleware(nil), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	send := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
		return w
	}

	assert.Equal(t, http.StatusNoContent, send("/portal").Code)
	w := send("/portal")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "slow down", w.Body.String())

	w = send("/json")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
}

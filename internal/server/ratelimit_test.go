package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(1, 2, false)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"), "burst exhausted")

	// Other clients have their own bucket.
	assert.True(t, rl.Allow("10.0.0.2"))

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("10.0.0.1"), "one token refilled")
	assert.False(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1, false)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("idle")
	rl.Allow("active")
	now = now.Add(limiterIdleTimeout / 2)
	rl.Allow("active")

	now = now.Add(limiterIdleTimeout/2 + time.Second)
	rl.Allow("active")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.limiters, "idle")
	assert.Contains(t, rl.limiters, "active")
}

func TestRateLimiter_MinimumBurst(t *testing.T) {
	rl := NewRateLimiter(5, 0, false)
	assert.Equal(t, 1, rl.burst)
}

func TestRateLimiter_Middleware(t *testing.T) {
	isolateCredentials(t)
	sc := newTestServerContext(t)

	rl := NewRateLimiter(0.001, 1, false)
	handler := rl.Middleware(sc, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
		req.RemoteAddr = "192.0.2.10:41000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusNoContent, serve().Code)

	rec := serve()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limited")
}

func TestRateLimiter_ClientAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	req.RemoteAddr = "192.0.2.10:41000"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	assert.Equal(t, "192.0.2.10", NewRateLimiter(1, 1, false).clientAddr(req))
	assert.Equal(t, "203.0.113.7", NewRateLimiter(1, 1, true).clientAddr(req))

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "192.0.2.10", NewRateLimiter(1, 1, true).clientAddr(req))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", NewRateLimiter(1, 1, false).clientAddr(req))
}

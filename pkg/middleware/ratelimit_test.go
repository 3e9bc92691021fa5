package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestRateLimiter(maxReqs int) *RateLimiter {
	return NewRateLimiter(RateLimiterConfig{
		Window:          time.Minute,
		Max:             maxReqs,
		CleanupInterval: time.Hour,
	})
}

func TestRateLimiter_AllowsWithinBudget(t *testing.T) {
	rl := newTestRateLimiter(3)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d should pass", i)
	}
	assert.False(t, rl.Allow("1.2.3.4"), "request over budget should be denied")
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := newTestRateLimiter(1)
	defer rl.Stop()

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiter_Middleware429(t *testing.T) {
	rl := newTestRateLimiter(1)
	defer rl.Stop()

	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "9.9.9.9:1234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "too many requests")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		Window:          time.Minute,
		Max:             1,
		CleanupInterval: 10 * time.Millisecond,
	})
	defer rl.Stop()

	rl.Allow("stale-key")
	assert.Equal(t, 1, rl.Len())

	assert.Eventually(t, func() bool { return rl.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	assert.Equal(t, "203.0.113.9", clientIP(req))

	// Proxy chains: only the originating client counts toward the limit key.
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.2, 10.0.0.3")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}

package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Aphidet6/earth-bettashop/pkg/httputil"
)

// RateLimiterConfig holds the settings for a keyed rate limiter.
type RateLimiterConfig struct {
	// Window and Max express the limit as "Max requests per Window per key".
	Window time.Duration
	Max    int
	// CleanupInterval controls how often idle per-key limiters are dropped.
	CleanupInterval time.Duration
}

// DefaultLoginRateLimiterConfig returns the login brute-force limit:
// 10 requests per 15 minutes per client IP.
func DefaultLoginRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		Window:          15 * time.Minute,
		Max:             10,
		CleanupInterval: 5 * time.Minute,
	}
}

type keyedLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter enforces a token-bucket limit per key (typically client IP).
// Idle entries are cleaned up in the background; call Stop on shutdown.
type RateLimiter struct {
	config   RateLimiterConfig
	limit    rate.Limit
	mu       sync.Mutex
	limiters map[string]*keyedLimiter
	stopCh   chan struct{}
}

// NewRateLimiter creates a RateLimiter and starts its cleanup goroutine.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:   config,
		limit:    rate.Limit(float64(config.Max) / config.Window.Seconds()),
		limiters: make(map[string]*keyedLimiter),
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// Middleware limits requests per client IP and responds 429 with a
// Retry-After header when the bucket is exhausted.
func (rl *RateLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(clientIP(r)) {
				retryAfterSec := int(math.Ceil(1.0 / float64(rl.limit)))
				if retryAfterSec < 1 {
					retryAfterSec = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
				httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.Response{
					Success: false,
					Error:   "too many requests, please try again later",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Allow reports whether a request for the given key fits within the limit.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	kl, ok := rl.limiters[key]
	if !ok {
		kl = &keyedLimiter{limiter: rate.NewLimiter(rl.limit, rl.config.Max)}
		rl.limiters[key] = kl
	}
	kl.lastAccess = time.Now()
	rl.mu.Unlock()

	return kl.limiter.Allow()
}

// Len returns the number of tracked keys. For tests and metrics.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup drops entries idle for longer than twice the cleanup interval.
func (rl *RateLimiter) cleanup() {
	ttl := rl.config.CleanupInterval * 2
	now := time.Now()

	rl.mu.Lock()
	for key, kl := range rl.limiters {
		if now.Sub(kl.lastAccess) > ttl {
			delete(rl.limiters, key)
		}
	}
	rl.mu.Unlock()
}

// clientIP extracts the client address, preferring X-Forwarded-For when the
// service runs behind a proxy. The header may carry the whole proxy chain;
// the first entry is the originating client.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

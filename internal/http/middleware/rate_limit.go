package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
)

// maxTrackedKeys bounds limiter memory; the least recently seen callers
// are evicted first, which effectively resets their window.
const maxTrackedKeys = 8192

type window struct {
	mu     sync.Mutex
	stamps []time.Time
}

// RateLimiter is a sliding-window limiter keyed by authenticated device id
// when available, client IP otherwise.
type RateLimiter struct {
	limit    int
	interval time.Duration
	mu       sync.Mutex
	windows  *lru.Cache[string, *window]
	now      func() time.Time
}

func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	cache, _ := lru.New[string, *window](maxTrackedKeys)
	return &RateLimiter{
		limit:    limit,
		interval: interval,
		windows:  cache,
		now:      time.Now,
	}
}

// window returns the tracked window for key, creating it under the lock so
// concurrent first requests share a single window.
func (rl *RateLimiter) window(key string) *window {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if w, ok := rl.windows.Get(key); ok {
		return w
	}
	w := &window{}
	rl.windows.Add(key, w)
	return w
}

// Allow records a hit for key and reports whether it stays within the
// limit.
func (rl *RateLimiter) Allow(key string) bool {
	w := rl.window(key)

	w.mu.Lock()
	defer w.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.interval)

	kept := w.stamps[:0]
	for _, ts := range w.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.stamps = kept

	if len(w.stamps) >= rl.limit {
		return false
	}

	w.stamps = append(w.stamps, now)
	return true
}

// Middleware applies the limiter to a route group.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(clientKey(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func clientKey(c *gin.Context) string {
	if deviceID, ok := MustDeviceID(c); ok {
		return "device:" + deviceID.String()
	}
	return "ip:" + c.ClientIP()
}

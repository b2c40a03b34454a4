package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/edupulse/class-service/internal/model"
	"github.com/edupulse/class-service/internal/response"
	"github.com/gin-gonic/gin"
)

// RateLimiter implements a simple keyed token bucket rate limiter.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // Tokens per interval
	interval time.Duration // Refill interval
	now      func() time.Time
}

type visitor struct {
	tokens     int
	lastRefill time.Time
	lastUsed   time.Time
}

// NewRateLimiter creates a RateLimiter (e.g., 30 marks per minute). Stale
// buckets are swept until ctx is done.
func NewRateLimiter(ctx context.Context, rate int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		interval: interval,
		now:      time.Now,
	}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.cleanup()
			}
		}
	}()

	return rl
}

// PerPrincipal returns a Gin middleware that rate-limits by acting user, falling
// back to the client IP when no principal is set.
func (rl *RateLimiter) PerPrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if p := GetPrincipal(c); p.Authenticated() {
			key = principalKey(p)
		}

		if !rl.allow(key) {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

// AllowPrincipal takes one token from p's bucket. It shares buckets with
// PerPrincipal, so marks over HTTP and WebSocket draw from the same budget.
func (rl *RateLimiter) AllowPrincipal(p model.Principal) bool {
	return rl.allow(principalKey(p))
}

func principalKey(p model.Principal) string {
	return "user:" + strconv.FormatInt(p.UserID, 10)
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[key]
	if !exists {
		v = &visitor{tokens: rl.rate, lastRefill: now}
		rl.visitors[key] = v
	}
	v.lastUsed = now

	// Refill whole intervals only; the remainder carries over.
	if elapsed := int(now.Sub(v.lastRefill) / rl.interval); elapsed > 0 {
		v.tokens = min(v.tokens+elapsed*rl.rate, rl.rate)
		v.lastRefill = v.lastRefill.Add(time.Duration(elapsed) * rl.interval)
	}

	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

// cleanup drops buckets idle for more than three intervals. An idle bucket is
// full again after one interval, so dropping it loses nothing.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, v := range rl.visitors {
		if now.Sub(v.lastUsed) > 3*rl.interval {
			delete(rl.visitors, key)
		}
	}
}

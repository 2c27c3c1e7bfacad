package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeremiapane/restaurant-portal/utils"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	idle     time.Duration
	visitors map[string]*visitor
	lastScan time.Time
	mu       sync.Mutex
}

// NewRateLimiter allows requests per interval for each IP, with bursts of
// the same size.
func NewRateLimiter(requests int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Every(interval / time.Duration(requests)),
		burst:    requests,
		idle:     10 * interval,
		visitors: make(map[string]*visitor),
		lastScan: time.Now(),
	}
}

// NewStrictRateLimiter is for submissions: 5 per minute per IP.
func NewStrictRateLimiter() *RateLimiter {
	return NewRateLimiter(5, time.Minute)
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastScan) > rl.idle {
		for key, v := range rl.visitors {
			if now.Sub(v.lastSeen) > rl.idle {
				delete(rl.visitors, key)
			}
		}
		rl.lastScan = now
	}

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}

func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			utils.InfoLogger.Warnf("rate limit hit by %s on %s", c.ClientIP(), c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, utils.JSONResponse{
				Status:  false,
				Message: "Too many requests, please wait a moment",
			})
			return
		}
		c.Next()
	}
}

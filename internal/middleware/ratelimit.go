package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/dermaclinic/clinic-api/pkg/httputil"
)

type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	seen     map[string]time.Time
	rps      rate.Limit
	burst    int
}

// NewRateLimiter builds a per-client-IP token bucket limiter.
func NewRateLimiter(rps float64, burst int) *rateLimiter {
	return &rateLimiter{
		limiters: make(map[string]*rate.Limiter),
		seen:     make(map[string]time.Time),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (rl *rateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[ip]
	if !ok {
		l = rate.NewLimiter(rl.rps, rl.burst)
		rl.limiters[ip] = l
	}
	rl.seen[ip] = time.Now()
	return l
}

func (rl *rateLimiter) cleanup(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	for ip, last := range rl.seen {
		if last.Before(cutoff) {
			delete(rl.seen, ip)
			delete(rl.limiters, ip)
		}
	}
}

func (rl *rateLimiter) RateLimit() gin.HandlerFunc {
	go func() {
		for {
			time.Sleep(10 * time.Minute)
			rl.cleanup(10 * time.Minute)
		}
	}()

	return func(c *gin.Context) {
		if !rl.limiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, httputil.Response{
				Success: false,
				Message: "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

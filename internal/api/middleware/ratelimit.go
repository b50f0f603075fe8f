package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/bookstore/pkg/response"
)

// RateLimiter 按客户端 IP 的令牌桶限流
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	rps      rate.Limit
	burst    int
	idle     time.Duration
	// max 同时跟踪的客户端上限，满了淘汰最久未出现的
	max       int
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		idle:     10 * time.Minute,
		max:      10000,
		now:      time.Now,
	}
}

// Allow 同时清理长时间未出现的客户端
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= l.max || now.Sub(l.lastSweep) >= time.Minute {
			l.sweep(now)
		}
		if len(l.limiters) >= l.max {
			l.evictOldest()
		}
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *RateLimiter) sweep(now time.Time) {
	l.lastSweep = now
	for k, v := range l.limiters {
		if now.Sub(v.lastSeen) > l.idle {
			delete(l.limiters, k)
		}
	}
}

func (l *RateLimiter) evictOldest() {
	var (
		oldest string
		seen   time.Time
	)
	for k, v := range l.limiters {
		if oldest == "" || v.lastSeen.Before(seen) {
			oldest, seen = k, v.lastSeen
		}
	}
	delete(l.limiters, oldest)
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.Response{
				Code:    http.StatusTooManyRequests,
				Message: "too many requests",
			})
			return
		}
		c.Next()
	}
}

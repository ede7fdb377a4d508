package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// IPRateLimiter hands out one token bucket per client IP.
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter allows perSecond requests per IP with the given burst.
// Buckets unused for idle are dropped on the next sweep.
func NewIPRateLimiter(perSecond float64, burst int, idle time.Duration) *IPRateLimiter {
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	return &IPRateLimiter{
		limiters: make(map[string]*visitor),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idle:     idle,
	}
}

// Allow reports whether ip may proceed at now.
func (l *IPRateLimiter) Allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.limiters[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Sweep drops buckets idle since before now minus the idle window.
func (l *IPRateLimiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	dropped := 0
	for ip, v := range l.limiters {
		if now.Sub(v.lastSeen) > l.idle {
			delete(l.limiters, ip)
			dropped++
		}
	}
	return dropped
}

// RateLimit rejects requests over the per-IP budget with 429.
func RateLimit(l *IPRateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP(), time.Now()) {
				c.Response().Header().Set("Retry-After", "1")
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}

package middleware

import (
	"net/http"
	"sync"
	"time"

	"notes-service/pkg/logger"
	"notes-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// idleTTL is how long an unused client limiter is kept
const idleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// ClientRateLimiter keeps one token bucket per client IP
type ClientRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	rps       rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewClientRateLimiter allows rps requests per second per client with the given burst
func NewClientRateLimiter(rps float64, burst int) *ClientRateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ClientRateLimiter{
		limiters: make(map[string]*limiterEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow reports whether client may make a request now
func (rl *ClientRateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > idleTTL {
		for key, entry := range rl.limiters {
			if now.Sub(entry.lastUsed) > idleTTL {
				delete(rl.limiters, key)
			}
		}
		rl.lastSweep = now
	}

	entry, ok := rl.limiters[client]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.limiters[client] = entry
	}
	entry.lastUsed = now
	return entry.limiter.AllowN(now, 1)
}

// Middleware rejects requests over the client's limit with 429
func (rl *ClientRateLimiter) Middleware(metrics *prometheus.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.Allow(c.RealIP()) {
				logger.FromContext(c).Warn("Rate limit exceeded", zap.String("ip", c.RealIP()))
				metrics.RecordAuthError("rate_limited")
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "Too many requests, try again later"})
			}
			return next(c)
		}
	}
}

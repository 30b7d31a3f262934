package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// limiterIdleAfter is how long a client limiter may sit unused before the
// purge job drops it. Long enough that a dropped entry's refilled bucket
// grants no more than the configured burst.
const limiterIdleAfter = 15 * time.Minute

// RateLimiter applies a per-client token bucket keyed by the authenticated
// user when available, otherwise by remote IP. Idle client entries are
// dropped by Purge so the map does not grow with client churn.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second with the
// given burst per client.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// Handler returns the fiber middleware handler.
func (r *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if userID, ok := UserIDFromCtx(c); ok {
			key = userID.String()
		}

		if !r.limiterFor(key).Allow() {
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}

// Purge drops limiters that have been idle past the eviction window and
// returns how many were dropped.
func (r *RateLimiter) Purge() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-limiterIdleAfter)
	purged := 0
	for key, cl := range r.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(r.limiters, key)
			purged++
		}
	}
	return purged
}

func (r *RateLimiter) limiterFor(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	cl, ok := r.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.limiters[key] = cl
	}
	cl.lastSeen = r.now()
	return cl.limiter
}

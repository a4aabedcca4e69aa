package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"kinderstep-backend/pkg/utils"

	"golang.org/x/time/rate"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles each caller with its own token bucket. Signed-in
// shoppers are keyed by account, guests by client IP.
type RateLimiter struct {
	buckets map[string]*bucket
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	every   time.Duration
	ttl     time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewRateLimiter starts a limiter allowing limit requests per second with the
// given burst. Buckets idle for longer than ttl are dropped every period.
func NewRateLimiter(ctx context.Context, limit rate.Limit, burst int, every, ttl time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		burst:   burst,
		every:   every,
		ttl:     ttl,
	}
	rl.ctx, rl.cancel = context.WithCancel(ctx)
	go rl.sweepLoop()
	return rl
}

func (rl *RateLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.bucketFor(callerKey(r)).Allow() {
				w.Header().Set("Retry-After", "1")
				utils.WriteError(w, http.StatusTooManyRequests, "Too many requests, please slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// callerKey runs before authentication, so an invalid token simply counts
// against the caller's IP.
func callerKey(r *http.Request) string {
	if token := tokenFromRequest(r); token != "" {
		if user, err := userFromToken(token); err == nil && user.ID != "" {
			return "user:" + user.ID
		}
	}
	return "ip:" + getClientIP(r)
}

func (rl *RateLimiter) bucketFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.ctx.Done():
			return
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, b := range rl.buckets {
		if time.Since(b.lastSeen) > rl.ttl {
			delete(rl.buckets, key)
		}
	}
}

// Shutdown stops the sweeper.
func (rl *RateLimiter) Shutdown() {
	rl.cancel()
}

// Clients reports how many callers are currently tracked.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

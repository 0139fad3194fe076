package presentation

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/puzpuzpuz/xsync/v2"
	"golang.org/x/time/rate"

	"github.com/sglre6355/venuevibe/internal/server"
)

// DefaultLimiterIdleTTL is how long a client's limiter survives without requests.
const DefaultLimiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiter limits requests per client address with a token bucket each.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	clock   clock.Clock

	visitors *xsync.MapOf[string, *visitor]
}

// NewRateLimiter creates a RateLimiter allowing perSecond requests with the
// given burst. A nil clk uses the wall clock.
func NewRateLimiter(perSecond float64, burst int, clk clock.Clock) *RateLimiter {
	if clk == nil {
		clk = clock.New()
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		idleTTL:  DefaultLimiterIdleTTL,
		clock:    clk,
		visitors: xsync.NewMapOf[*visitor](),
	}
}

// Allow reports whether a request from key may proceed now.
func (l *RateLimiter) Allow(key string) bool {
	now := l.clock.Now()
	v, _ := l.visitors.LoadOrCompute(key, func() *visitor {
		return &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
	})
	v.lastSeen.Store(now.UnixNano())
	return v.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients.
func (l *RateLimiter) Len() int {
	return l.visitors.Size()
}

// Sweep forgets clients idle for longer than the idle TTL.
func (l *RateLimiter) Sweep() {
	cutoff := l.clock.Now().Add(-l.idleTTL).UnixNano()
	l.visitors.Range(func(key string, v *visitor) bool {
		if v.lastSeen.Load() < cutoff {
			l.visitors.Delete(key)
		}
		return true
	})
}

// Run sweeps idle clients periodically until ctx is done.
func (l *RateLimiter) Run(ctx context.Context) {
	ticker := l.clock.Ticker(l.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// Middleware rejects requests over the limit with 429.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(server.ClientIP(r)) {
			w.Header().Set("Retry-After", "1")
			server.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

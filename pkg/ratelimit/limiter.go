// Package ratelimit implements a client-side token bucket gating every
// outbound API request. The artworks API publishes no error-budget headers,
// so this is a fixed courtesy limit rather than a server-driven one.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var rateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "artic_rate_limit_wait_seconds",
	Help:    "Time spent waiting on the client-side rate limiter",
	Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
})

// Limiter wraps a token bucket shared by all requests of one client.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a Limiter allowing rps requests per second with the given
// burst. Non-positive rps means unlimited; burst floors at 1.
func New(rps float64, burst int) *Limiter {
	r := rate.Limit(rps)
	if rps <= 0 {
		r = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(r, burst),
	}
}

// Wait blocks until a token is available, respecting the context.
func (l *Limiter) Wait(ctx context.Context) error {
	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	if waited := time.Since(start); waited > time.Millisecond {
		rateLimitWaitSeconds.Observe(waited.Seconds())
	}
	return nil
}

// Limit returns the configured rate.
func (l *Limiter) Limit() rate.Limit {
	return l.limiter.Limit()
}

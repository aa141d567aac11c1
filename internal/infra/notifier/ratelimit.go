package notifier

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimiter wraps a token bucket in front of webhook posts. Slack
// allows one message per second per webhook; the scheduler could fire
// publishes closer together than that after a missed run.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter refilling at requestsPerSecond with
// the given burst capacity.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Allow blocks until a token is available or the context is canceled.
func (r *RateLimiter) Allow(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

package ai

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter paces backend calls to a number of requests per minute.
// A limit of zero or less disables pacing.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter allowing rpm requests per minute.
func NewRateLimiter(rpm int) *RateLimiter {
	return &RateLimiter{limiter: rate.NewLimiter(limitFor(rpm))}
}

func limitFor(rpm int) (rate.Limit, int) {
	if rpm <= 0 {
		return rate.Inf, 1
	}
	return rate.Every(time.Minute / time.Duration(rpm)), 1
}

// Wait blocks until a call is allowed or context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

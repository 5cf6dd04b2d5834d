package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Bucket throttles calls against the commerce platform's request quota. One
// shared instance guards all callers; refill is computed lazily from elapsed
// time, there is no background timer, and the bucket starts full on boot.
type Bucket struct {
	limiter *rate.Limiter
}

// NewPerMinute builds a bucket holding capacity tokens, refilled at
// perMinute tokens per minute.
func NewPerMinute(capacity, perMinute int) *Bucket {
	if capacity < 1 {
		capacity = 1
	}
	if perMinute < 1 {
		perMinute = 1
	}
	return &Bucket{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), capacity),
	}
}

// Consume blocks until n tokens are available or ctx is done. It never fails
// otherwise; running dry only adds latency.
func (b *Bucket) Consume(ctx context.Context, n int) error {
	return b.limiter.WaitN(ctx, n)
}

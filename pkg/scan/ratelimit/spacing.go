package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// SpacingLimiter enforces a minimum interval between request starts and caps how many requests are in
// flight at once.
type SpacingLimiter struct {
	limiter *rate.Limiter
	slots   chan struct{}
}

// NewSpacingLimiter creates a limiter letting one request start every interval with at most concurrency
// requests in flight. A zero interval disables spacing.
func NewSpacingLimiter(interval time.Duration, concurrency int) *SpacingLimiter {
	if concurrency < 1 {
		concurrency = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &SpacingLimiter{
		limiter: rate.NewLimiter(limit, 1),
		slots:   make(chan struct{}, concurrency),
	}
}

// Acquire waits for a free slot and then for the next spacing tick
func (s *SpacingLimiter) Acquire(ctx context.Context) error {
	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := s.limiter.Wait(ctx); err != nil {
		<-s.slots
		return err
	}
	return nil
}

// Release frees the slot taken by Acquire
func (s *SpacingLimiter) Release() {
	select {
	case <-s.slots:
	default:
	}
}

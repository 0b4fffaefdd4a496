// Package ratelimit spaces and caps the requests a scan sends to its target.
package ratelimit

import (
	"context"
)

// RateLimiter defines the interface for rate limiting scan requests.
type RateLimiter interface {
	// Acquire blocks until a request can proceed, or returns error if cancelled.
	Acquire(ctx context.Context) error

	// Release signals completion of a request.
	Release()
}

// NoOpRateLimiter is a rate limiter that does nothing (allows all requests immediately).
type NoOpRateLimiter struct{}

// NewNoOpRateLimiter creates a new no-op rate limiter.
func NewNoOpRateLimiter() *NoOpRateLimiter {
	return &NoOpRateLimiter{}
}

// Acquire returns immediately unless ctx is already done.
func (n *NoOpRateLimiter) Acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Release does nothing.
func (n *NoOpRateLimiter) Release() {}

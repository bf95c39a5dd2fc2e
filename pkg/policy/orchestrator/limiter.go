package orchestrator

import (
	"context"
)

// ConcurrencyLimiter bounds the number of batches evaluating at once.
//
// It is a counting semaphore over a buffered channel. Unlike a
// try-acquire limiter, Acquire blocks until a slot frees up or the
// context is canceled: a flush never rejects batches, it just paces them.
type ConcurrencyLimiter struct {
	slots chan struct{}
}

// NewConcurrencyLimiter creates a limiter with the given number of slots.
// A limit below 1 is treated as 1.
func NewConcurrencyLimiter(limit int) *ConcurrencyLimiter {
	if limit < 1 {
		limit = 1
	}
	return &ConcurrencyLimiter{slots: make(chan struct{}, limit)}
}

// Acquire blocks until a slot is available. The caller MUST call Release
// when done. Returns the context error if ctx is canceled while waiting.
func (l *ConcurrencyLimiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot. Always pair with a successful Acquire.
func (l *ConcurrencyLimiter) Release() {
	<-l.slots
}

// InFlight returns the number of slots currently held.
func (l *ConcurrencyLimiter) InFlight() int {
	return len(l.slots)
}

// Limit returns the configured slot count.
func (l *ConcurrencyLimiter) Limit() int {
	return cap(l.slots)
}

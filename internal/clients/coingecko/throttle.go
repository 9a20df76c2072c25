package coingecko

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle serializes outbound requests so that no two start less than
// a fixed minimum delay apart, across all callers. Admission is strict
// FIFO: each caller reserves the next slot under the limiter's lock and
// then sleeps until that slot arrives.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle creates a throttle with the given minimum inter-request spacing.
func NewThrottle(minDelay time.Duration) *Throttle {
	return &Throttle{
		limiter: rate.NewLimiter(rate.Every(minDelay), 1),
	}
}

// Wait blocks until the caller's slot arrives. A canceled wait returns
// the context error but does not refund the consumed slot: subsequent
// callers keep the spacing already scheduled behind it.
func (t *Throttle) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r := t.limiter.Reserve()
	delay := r.Delay()
	if delay == 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		// Slot stays consumed.
		return ctx.Err()
	}
}

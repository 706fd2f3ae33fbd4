package research

import (
	"context"
	"time"
)

// RetryPolicy drives the retry loop around a full search attempt.
// Backoff receives the zero-based attempt index that just failed.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// DefaultRetry waits 1s, 2s, 4s between attempts.
func DefaultRetry() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     func(attempt int) time.Duration { return (1 << attempt) * time.Second },
		sleep:       sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// wait blocks for the backoff of the given attempt, or until the
// context is canceled.
func (p RetryPolicy) wait(ctx context.Context, attempt int) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	return sleep(ctx, p.Backoff(attempt))
}

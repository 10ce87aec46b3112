package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RetryPolicy bounds the optimistic create loop of posting runs.
type RetryPolicy struct {
	// MaxCreateAttempts is the number of create attempts before a conflict is surfaced.
	MaxCreateAttempts int
	// BaseDelay is the exponential backoff base between attempts. Zero retries immediately.
	BaseDelay time.Duration
}

// DefaultRetryPolicy allows one retry after the first conflicting create, without delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxCreateAttempts: 2}
}

func (p RetryPolicy) attempts() int {
	if p.MaxCreateAttempts < 1 {
		return 1
	}
	return p.MaxCreateAttempts
}

// delay returns a full-jitter delay in [0, BaseDelay * 2^(attempt-1)).
func (p RetryPolicy) delay(attempt int) time.Duration {
	if p.BaseDelay <= 0 || attempt < 1 {
		return 0
	}
	shift := min(attempt-1, 16)
	return time.Duration(rand.Int63n(int64(p.BaseDelay << shift)))
}

// wait sleeps before the next attempt, returning early when ctx is done.
func (p RetryPolicy) wait(ctx context.Context, attempt int) error {
	d := p.delay(attempt)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context done: %w", ctx.Err())
	}
}

package download

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/flanksource/vx/internal/vxerrors"
)

// RetryPolicy configures the exponential-backoff retry wrapper new in
// SPEC_FULL.md's downloader generalization — the predecessor's Download has no
// retry loop at all, it fails on the first transport error.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy makes up to 3 attempts with exponential backoff starting
// at 500ms, capped at 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 10 * time.Second}
}

// NoRetry disables retries (a single attempt).
func NoRetry() RetryPolicy { return RetryPolicy{MaxAttempts: 1} }

// WithBackoff runs fn, retrying on failure per policy with exponential
// backoff between attempts, stopping early (and returning a cancellation
// error) if ctx is cancelled. A checksum mismatch is not retried: a
// corrupted remote artifact won't become correct on the next attempt.
func WithBackoff(ctx context.Context, policy RetryPolicy, fn func(context.Context) error) error {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return vxerrors.CancelledByUser()
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		var vxErr *vxerrors.Error
		if errors.As(lastErr, &vxErr) && vxErr.Kind == vxerrors.KindChecksumMismatch {
			return lastErr
		}
		if attempt == policy.MaxAttempts-1 {
			break
		}
		delay := backoffDelay(policy, attempt)
		select {
		case <-ctx.Done():
			return vxerrors.CancelledByUser()
		case <-time.After(delay):
		}
	}
	return lastErr
}

func backoffDelay(policy RetryPolicy, attempt int) time.Duration {
	delay := time.Duration(float64(policy.BaseDelay) * math.Pow(2, float64(attempt)))
	if policy.MaxDelay > 0 && delay > policy.MaxDelay {
		delay = policy.MaxDelay
	}
	return delay
}

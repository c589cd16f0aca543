package resilience

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// retryBackoff is the base delay before the single retry. A small jitter is
// added so concurrent collectors don't retry in lockstep.
const retryBackoff = 500 * time.Millisecond

// Once executes fn and retries it at most one time on a transient error.
// Quota errors and context expiry are returned immediately: a rate-limited
// platform will not be helped by a second attempt, and a collector past its
// deadline must hand back whatever it has.
func Once[T any](ctx context.Context, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	val, err := fn(ctx)
	if err == nil {
		return val, nil
	}

	var zero T
	if ctx.Err() != nil || IsQuota(err) || !IsTransient(err) {
		return zero, err
	}

	zap.L().Warn("retrying after transient failure",
		zap.String("operation", operation),
		zap.Error(err),
	)

	delay := retryBackoff + time.Duration(rand.Int64N(int64(retryBackoff)/2))
	timer := time.NewTimer(delay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return zero, err
	case <-timer.C:
	}

	val, retryErr := fn(ctx)
	if retryErr != nil {
		return zero, retryErr
	}
	return val, nil
}

package engine

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryConfig controls the request retry loop.
// The wait between attempts is fixed; it does not grow.
type RetryConfig struct {
	Attempts int
	Sleep    time.Duration
	Timeout  time.Duration
}

// DefaultRetryConfig matches what the web front end tolerates.
var DefaultRetryConfig = RetryConfig{
	Attempts: 5,
	Sleep:    20 * time.Second,
	Timeout:  60 * time.Second,
}

// ErrRetriesExhausted is returned by RetryFixed when no attempt succeeded.
var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryFixed calls fn up to rc.Attempts times, sleeping rc.Sleep between failed
// attempts. Each attempt gets its own rc.Timeout deadline. Any error from fn is
// retried; parent context cancellation stops the loop.
func RetryFixed[T any](ctx context.Context, rc RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := rc.Attempts
	if attempts < 1 {
		attempts = 1
	}

	operation := func() (T, error) {
		if err := ctx.Err(); err != nil {
			return zero, backoff.Permanent(err)
		}
		attemptCtx := ctx
		if rc.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, rc.Timeout)
			defer cancel()
		}
		return fn(attemptCtx)
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(rc.Sleep)),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithMaxElapsedTime(retryBudget(rc, attempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			metrics.RequestRetries.Add(1)
			slog.Debug("retrying", slog.Duration("wait", wait), slog.Any("error", err))
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		return zero, errors.Join(ErrRetriesExhausted, err)
	}
	return result, nil
}

// retryBudget bounds the whole loop so the attempt count is what ends it.
// Without a per-attempt timeout a single attempt has no upper bound, so
// neither does the budget.
func retryBudget(rc RetryConfig, attempts int) time.Duration {
	if rc.Timeout <= 0 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(attempts) * (rc.Timeout + rc.Sleep + time.Second)
}

// httpStatusError reports an HTTP status that did not end the retry loop.
type httpStatusError struct {
	StatusCode int
}

func (e *httpStatusError) Error() string {
	return "HTTP " + strconv.Itoa(e.StatusCode) + " " + http.StatusText(e.StatusCode)
}

// StatusError wraps a response status as a retryable error.
func StatusError(code int) error {
	return &httpStatusError{StatusCode: code}
}

package creatio

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
)

// Default retry and timeout constants for Creatio calls.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second
	DefaultTimeout    = 60 * time.Second
)

// RetryEvent describes one failed attempt of a wrapped operation.
type RetryEvent struct {
	Operation   string
	Attempt     int // 1-based
	MaxAttempts int
	Err         error
	Exhausted   bool // true when no attempts remain and the error is returned
}

// Retrier re-invokes an operation on any error with a fixed delay between attempts.
// MaxRetries is the total number of attempts, not the number of retries after the
// first failure. Errors are not classified: a 401 is retried like a timeout.
type Retrier struct {
	MaxRetries int
	Delay      time.Duration

	logger arbor.ILogger
	notify func(RetryEvent)
}

// RetrierOption configures the Retrier.
type RetrierOption func(*Retrier)

// WithNotify registers a hook that receives every failed attempt.
func WithNotify(fn func(RetryEvent)) RetrierOption {
	return func(r *Retrier) {
		r.notify = fn
	}
}

// NewRetrier creates a retrier. maxRetries < 1 is treated as a single attempt.
func NewRetrier(maxRetries int, delay time.Duration, logger arbor.ILogger, opts ...RetrierOption) *Retrier {
	if maxRetries < 1 {
		maxRetries = 1
	}
	if delay < 0 {
		delay = 0
	}

	r := &Retrier{
		MaxRetries: maxRetries,
		Delay:      delay,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Do runs fn until it succeeds or MaxRetries attempts have failed.
// The last error is returned unchanged. The wait between attempts is
// interrupted by ctx cancellation, in which case ctx.Err() is returned.
func (r *Retrier) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	maxAttempts := r.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}

		if attempt == maxAttempts {
			r.report(RetryEvent{Operation: operation, Attempt: attempt, MaxAttempts: maxAttempts, Err: err, Exhausted: true})
			return err
		}

		r.report(RetryEvent{Operation: operation, Attempt: attempt, MaxAttempts: maxAttempts, Err: err})

		if r.Delay > 0 {
			timer := time.NewTimer(r.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		} else if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}

	return err
}

func (r *Retrier) report(event RetryEvent) {
	if r.logger != nil {
		if event.Exhausted {
			r.logger.Error().
				Str("operation", event.Operation).
				Int("attempts", event.MaxAttempts).
				Err(event.Err).
				Msg("Operation failed after all attempts")
		} else {
			r.logger.Warn().
				Str("operation", event.Operation).
				Int("attempt", event.Attempt).
				Int("max_attempts", event.MaxAttempts).
				Dur("delay", r.Delay).
				Err(event.Err).
				Msg("Retrying operation after error")
		}
	}
	if r.notify != nil {
		r.notify(event)
	}
}

// Retry is the value-returning form of Retrier.Do.
func Retry[T any](ctx context.Context, r *Retrier, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, operation, func(ctx context.Context) error {
		value, err := fn(ctx)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	return result, err
}

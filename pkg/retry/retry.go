package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// PermanentError marks an error that must not be retried.
type PermanentError interface {
	error
	IsPermanent() bool
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) IsPermanent() bool {
	return true
}

func (e *permanentError) Unwrap() error {
	return e.err
}

func NewPermanentError(err error) PermanentError {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Policy describes a bounded constant-interval retry: the operation runs once,
// then up to ExtraAttempts additional times with Interval between attempts.
type Policy struct {
	ExtraAttempts int
	Interval      time.Duration
}

// Do runs fn until it succeeds, returns a permanent error, or the attempt
// budget is exhausted. onRetry, if non-nil, is invoked before each sleep with
// the failed attempt number (1-based) and its error.
func Do(ctx context.Context, policy Policy, fn func() error, onRetry func(attempt int, err error)) error {
	if policy.ExtraAttempts < 0 {
		policy.ExtraAttempts = 0
	}

	var b backoff.BackOff = backoff.NewConstantBackOff(policy.Interval)
	b = backoff.WithContext(b, ctx)
	b = backoff.WithMaxRetries(b, uint64(policy.ExtraAttempts))

	attempt := 0
	operation := func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}

		var permErr PermanentError
		if errors.As(err, &permErr) {
			return backoff.Permanent(err)
		}

		if onRetry != nil && attempt <= policy.ExtraAttempts {
			onRetry(attempt, err)
		}
		return err
	}

	return backoff.Retry(operation, b)
}

package core

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retryPolicy configures withRetry
type retryPolicy struct {
	Retries    int
	NewBackOff func() backoff.BackOff
	Operation  string
	Logger     *slog.Logger

	// BeforeRetry runs before each retry attempt
	BeforeRetry func() error
}

// withRetry runs fn, retrying it up to p.Retries times while it fails with a
// *NetworkError. Any other error is returned immediately. The returned
// NetworkError reports the total number of attempts.
func withRetry(ctx context.Context, p retryPolicy, fn func() error) error {
	attempts := 0

	operation := func() error {
		if attempts > 0 && p.BeforeRetry != nil {
			if err := p.BeforeRetry(); err != nil {
				return backoff.Permanent(err)
			}
		}

		attempts++

		err := fn()
		if err == nil {
			return nil
		}

		var netErr *NetworkError
		if !errors.As(err, &netErr) {
			return backoff.Permanent(err)
		}

		return err
	}

	newBackOff := p.NewBackOff
	if newBackOff == nil {
		newBackOff = func() backoff.BackOff { return backoff.NewExponentialBackOff() }
	}

	var retries uint64
	if p.Retries > 0 {
		retries = uint64(p.Retries)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), retries), ctx)

	notify := func(err error, wait time.Duration) {
		if p.Logger == nil {
			return
		}

		p.Logger.Warn("transient error, retrying",
			slog.String("operation", p.Operation),
			slog.Int("attempt", attempts),
			slog.Duration("backoff", wait),
			slog.String("error", err.Error()),
		)
	}

	err := backoff.RetryNotify(operation, b, notify)

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		netErr.Attempts = attempts
	}

	return err
}

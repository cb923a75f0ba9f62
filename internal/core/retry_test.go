package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastBackOff() backoff.BackOff {
	return backoff.NewConstantBackOff(time.Millisecond)
}

func TestWithRetry_NoRetriesByDefault(t *testing.T) {
	calls := 0

	err := withRetry(context.Background(), retryPolicy{NewBackOff: fastBackOff}, func() error {
		calls++
		return &NetworkError{Operation: "op", Err: errors.New("connection reset")}
	})

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, netErr.Attempts)
}

func TestWithRetry_RetriesNetworkErrors(t *testing.T) {
	calls := 0

	err := withRetry(context.Background(), retryPolicy{Retries: 3, NewBackOff: fastBackOff}, func() error {
		calls++
		if calls < 3 {
			return &NetworkError{Operation: "op", Err: errors.New("timeout")}
		}

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_GivesUp(t *testing.T) {
	calls := 0

	err := withRetry(context.Background(), retryPolicy{Retries: 2, NewBackOff: fastBackOff}, func() error {
		calls++
		return &NetworkError{Operation: "op", Err: errors.New("timeout")}
	})

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, netErr.Attempts)
}

func TestWithRetry_OtherErrorsArePermanent(t *testing.T) {
	calls := 0
	authErr := &AuthError{StatusCode: 401}

	err := withRetry(context.Background(), retryPolicy{Retries: 5, NewBackOff: fastBackOff}, func() error {
		calls++
		return authErr
	})

	assert.Same(t, authErr, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_BeforeRetry(t *testing.T) {
	calls, cleanups := 0, 0

	err := withRetry(context.Background(), retryPolicy{
		Retries:     1,
		NewBackOff:  fastBackOff,
		BeforeRetry: func() error { cleanups++; return nil },
	}, func() error {
		calls++
		if calls == 1 {
			return &NetworkError{Operation: "op", Err: errors.New("timeout")}
		}

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, cleanups)
}

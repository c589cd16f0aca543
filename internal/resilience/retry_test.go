package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnceSucceedsFirstTry(t *testing.T) {
	calls := 0
	got, err := Once(context.Background(), "op", func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, calls)
}

func TestOnceRetriesTransientOnce(t *testing.T) {
	calls := 0
	got, err := Once(context.Background(), "op", func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", NewTransientError(errors.New("gateway hiccup"), 502)
		}
		return "recovered", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, 2, calls)
}

func TestOnceGivesUpAfterSecondFailure(t *testing.T) {
	calls := 0
	_, err := Once(context.Background(), "op", func(ctx context.Context) (int, error) {
		calls++
		return 0, NewTransientError(errors.New("still down"), 503)
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestOnceQuotaIsNotRetried(t *testing.T) {
	calls := 0
	_, err := Once(context.Background(), "op", func(ctx context.Context) (int, error) {
		calls++
		return 0, &QuotaError{Platform: "github"}
	})

	require.Error(t, err)
	assert.True(t, IsQuota(err))
	assert.Equal(t, 1, calls)
}

func TestOnceNonTransientIsNotRetried(t *testing.T) {
	calls := 0
	_, err := Once(context.Background(), "op", func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("bad request")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestOnceExpiredContextIsNotRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := Once(ctx, "op", func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, NewTransientError(errors.New("cut off"), 503)
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

package questionnaire

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTimeoutReturnsValue(t *testing.T) {
	v, err := WithTimeout(context.Background(), time.Second, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestWithTimeoutIgnoresLateResult(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan struct{})
	v, err := WithTimeout(context.Background(), 20*time.Millisecond, func(context.Context) (string, error) {
		defer close(finished)
		<-release
		return "late", nil
	})
	require.ErrorIs(t, err, ErrTimeout)
	assert.Empty(t, v)

	close(release)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("abandoned operation did not finish")
	}
}

func TestWithTimeoutPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	_, err := WithTimeout(context.Background(), time.Second, func(context.Context) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestWithTimeoutRecoversPanic(t *testing.T) {
	_, err := WithTimeout(context.Background(), time.Second, func(context.Context) (int, error) {
		panic("kaboom")
	})
	require.Error(t, err)
}

func TestWithTimeoutParentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := WithTimeout(ctx, time.Second, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	require.ErrorIs(t, err, context.Canceled)
}

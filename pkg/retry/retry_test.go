package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     50 * time.Millisecond,
		Multiplier:      2.0,
		JitterFactor:    0,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.InitialInterval)
	assert.Equal(t, 30*time.Second, cfg.MaxInterval)
	assert.Equal(t, 2.0, cfg.Multiplier)
	assert.Equal(t, 0.1, cfg.JitterFactor)
}

func TestNew_NormalizesConfig(t *testing.T) {
	r := New(&Config{JitterFactor: 3})

	assert.Equal(t, time.Second, r.config.InitialInterval)
	assert.Equal(t, 30*time.Second, r.config.MaxInterval)
	assert.Equal(t, 2.0, r.config.Multiplier)
	assert.Equal(t, 1.0, r.config.JitterFactor)

	require.NotNil(t, New(nil))
}

func TestDo_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	result := New(fastConfig(3)).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, result.Err)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, calls)
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	result := New(fastConfig(5)).Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("broker not ready")
		}
		return nil
	})

	require.NoError(t, result.Err)
	assert.Equal(t, 3, result.Attempts)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	opErr := errors.New("connection refused")
	result := New(fastConfig(2)).Do(context.Background(), func(ctx context.Context) error {
		return opErr
	})

	assert.ErrorIs(t, result.Err, ErrMaxRetriesExceeded)
	assert.Equal(t, opErr, result.LastError)
	assert.Equal(t, 3, result.Attempts) // initial + 2 retries
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	opErr := errors.New("topic does not exist")
	calls := 0
	result := New(fastConfig(5)).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(opErr)
	})

	assert.Equal(t, opErr, result.Err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := New(fastConfig(5)).Do(ctx, func(ctx context.Context) error {
		return errors.New("never reached after cancel")
	})

	assert.ErrorIs(t, result.Err, ErrContextCanceled)
}

func TestDo_ContextCancelledDuringWait(t *testing.T) {
	cfg := &Config{
		MaxRetries:      3,
		InitialInterval: time.Second,
		MaxInterval:     time.Second,
		Multiplier:      1.0,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	result := New(cfg).Do(ctx, func(ctx context.Context) error {
		return errors.New("still failing")
	})

	assert.ErrorIs(t, result.Err, ErrContextCanceled)
	assert.Equal(t, 1, result.Attempts)
}

func TestDoWithCallback_InvokedBeforeEachWait(t *testing.T) {
	var attempts []int
	callback := func(attempt int, err error, next time.Duration) {
		attempts = append(attempts, attempt)
	}

	calls := 0
	result := New(fastConfig(5)).DoWithCallback(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	}, callback)

	require.NoError(t, result.Err)
	// Two failed attempts, so two waits
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestErrorWrappers(t *testing.T) {
	base := errors.New("boom")

	assert.Nil(t, Permanent(nil))
	assert.Nil(t, Retryable(nil))
	assert.ErrorIs(t, Permanent(base), base)
	assert.ErrorIs(t, Retryable(base), base)
	assert.Equal(t, "boom", Retryable(base).Error())
}

func TestCalculateInterval_GrowsAndCaps(t *testing.T) {
	r := New(&Config{
		MaxRetries:      10,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2.0,
		JitterFactor:    0,
	})

	assert.Equal(t, 100*time.Millisecond, r.calculateInterval(0))
	assert.Equal(t, 200*time.Millisecond, r.calculateInterval(1))
	assert.Equal(t, 400*time.Millisecond, r.calculateInterval(2))
	// Capped at MaxInterval from here on
	assert.Equal(t, time.Second, r.calculateInterval(5))
	assert.Equal(t, time.Second, r.calculateInterval(9))
}

func TestPackageLevelDo(t *testing.T) {
	result := Do(context.Background(), fastConfig(1), func(ctx context.Context) error {
		return nil
	})
	require.NoError(t, result.Err)
}

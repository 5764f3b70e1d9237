package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	fast := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}

	t.Run("첫 시도에 성공", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), fast, func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("재시도 후 성공", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), fast, func() error {
			calls++
			if calls < 3 {
				return errors.New("busy")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("최대 횟수 초과", func(t *testing.T) {
		cause := errors.New("still busy")
		calls := 0
		err := RetryWithBackoff(context.Background(), fast, func() error {
			calls++
			return cause
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, 3, calls)
	})

	t.Run("컨텍스트 취소", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		slow := RetryConfig{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 2}
		err := RetryWithBackoff(ctx, slow, func() error { return errors.New("busy") })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

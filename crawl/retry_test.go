package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/docindex"
	"github.com/fwojciec/docindex/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry(t *testing.T) {
	t.Parallel()

	delays := []time.Duration{time.Millisecond, time.Millisecond}

	t.Run("retries transient failures", func(t *testing.T) {
		t.Parallel()

		calls := 0
		got, err := crawl.Retry(context.Background(), delays, func() (string, error) {
			calls++
			if calls < 3 {
				return "", errors.New("connection reset")
			}
			return "page", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "page", got)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after the last delay", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := crawl.Retry(context.Background(), delays, func() (string, error) {
			calls++
			return "", errors.New("HTTP 503")
		})

		require.EqualError(t, err, "HTTP 503")
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry missing pages", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := crawl.Retry(context.Background(), delays, func() (string, error) {
			calls++
			return "", docindex.Errorf(docindex.ENOTFOUND, "gone")
		})

		assert.Equal(t, docindex.ENOTFOUND, docindex.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when the context is done", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		_, err := crawl.Retry(ctx, []time.Duration{time.Hour}, func() (string, error) {
			cancel()
			return "", errors.New("timeout")
		})

		require.ErrorIs(t, err, context.Canceled)
	})
}

package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/docindex"
)

// DefaultRetryDelays returns the backoff delays between fetch attempts.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}
}

// Retry calls fn until it succeeds, sleeping delays[i] after the i-th
// failure. Missing (ENOTFOUND) and invalid (EINVALID) resources fail
// immediately since asking again cannot help.
func Retry[T any](ctx context.Context, delays []time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		if code := docindex.ErrorCode(err); code == docindex.ENOTFOUND || code == docindex.EINVALID {
			return zero, err
		}
		if attempt >= len(delays) {
			return zero, err
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
}

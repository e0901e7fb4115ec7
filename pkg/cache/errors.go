package cache

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/turnoutpaths/pkg/httputil"
)

// Sentinel errors for caching operations.
var (
	// ErrNetwork is returned when a remote backend cannot be reached.
	ErrNetwork = errors.New("network error")

	// ErrCacheMiss is returned by GetJSON when an item is not in the cache.
	ErrCacheMiss = errors.New("cache miss")
)

// Retryable marks a backend error as transient.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &httputil.RetryableError{Err: err}
}

// IsRetryable checks if an error was marked with Retryable.
func IsRetryable(err error) bool {
	return httputil.IsRetryable(err)
}

// retryDelay is the first backoff step; tests shorten it.
var retryDelay = 100 * time.Millisecond

// RetryWithBackoff retries a backend call up to 3 times.
// Only errors wrapped with Retryable trigger retries.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return httputil.Retry(ctx, 3, retryDelay, fn)
}

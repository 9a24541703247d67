package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/api/googleapi"

	"secondbrain-backend/internal/core"
)

// RetryPolicy caps backoff retries for rate-limited model calls. Zero
// MaxRetries keeps the fail-fast reference behavior: one attempt, and the
// caller sees the 429.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryPolicy(maxRetries int) RetryPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return RetryPolicy{
		MaxRetries:      uint64(maxRetries),
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     8 * time.Second,
	}
}

// retryRateLimited runs fn with capped exponential backoff and jitter,
// retrying only while the failure is a rate limit. Anything else aborts
// immediately.
func retryRateLimited(ctx context.Context, p RetryPolicy, fn func() error) error {
	if p.MaxRetries == 0 {
		return fn()
	}

	bo := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		bo.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		bo.MaxInterval = p.MaxInterval
	}

	return backoff.Retry(func() error {
		err := fn()
		if err == nil || core.IsRateLimited(err) {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(bo, p.MaxRetries), ctx))
}

// classify turns an upstream failure into the pipeline taxonomy: a 429
// becomes a RateLimitError for the given phase, everything else wraps the
// phase sentinel.
func classify(phase string, sentinel error, err error) error {
	if err == nil {
		return nil
	}
	if isRateLimit(err) {
		return &core.RateLimitError{Phase: phase, Err: err}
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

func isRateLimit(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return true
	}
	// The SDK sometimes surfaces throttling only in the message text.
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "ResourceExhausted")
}

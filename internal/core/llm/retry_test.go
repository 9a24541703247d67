package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"secondbrain-backend/internal/core"
)

func fastPolicy(retries uint64) RetryPolicy {
	return RetryPolicy{
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	}
}

func TestRetryDisabledByDefault(t *testing.T) {
	calls := 0
	err := retryRateLimited(context.Background(), DefaultRetryPolicy(0), func() error {
		calls++
		return &core.RateLimitError{Phase: "embedding", Err: errors.New("quota")}
	})

	require.Error(t, err)
	assert.True(t, core.IsRateLimited(err))
	assert.Equal(t, 1, calls, "zero retries must mean a single attempt")
}

func TestRetryRecoversFromRateLimit(t *testing.T) {
	calls := 0
	err := retryRateLimited(context.Background(), fastPolicy(3), func() error {
		calls++
		if calls < 3 {
			return &core.RateLimitError{Phase: "embedding", Err: errors.New("quota")}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetrySkipsFatalErrors(t *testing.T) {
	calls := 0
	fatal := errors.New("invalid argument")
	err := retryRateLimited(context.Background(), fastPolicy(5), func() error {
		calls++
		return fatal
	})

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls, "non-rate-limit errors must not be retried")
}

func TestClassifyGoogleAPI429(t *testing.T) {
	upstream := &googleapi.Error{Code: http.StatusTooManyRequests, Message: "quota exceeded"}

	err := classify("embedding", core.ErrEmbedding, upstream)
	require.Error(t, err)
	assert.True(t, core.IsRateLimited(err))
	assert.Equal(t, "embedding", core.RateLimitPhase(err))
}

func TestClassifyMessageOnly429(t *testing.T) {
	err := classify("generation", core.ErrGeneration, errors.New("googleapi: Error 429: resource exhausted"))
	require.Error(t, err)
	assert.True(t, core.IsRateLimited(err))
	assert.Equal(t, "generation", core.RateLimitPhase(err))
}

func TestClassifyGenericFailure(t *testing.T) {
	err := classify("embedding", core.ErrEmbedding, errors.New("connection reset"))
	require.Error(t, err)
	assert.False(t, core.IsRateLimited(err))
	assert.ErrorIs(t, err, core.ErrEmbedding)
}

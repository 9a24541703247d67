package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pipeline stages. Services wrap them with
// fmt.Errorf("...: %w", err); handlers map them to HTTP statuses.
var (
	ErrNoFile        = errors.New("no file uploaded")
	ErrEmptyQuestion = errors.New("question is required")
	ErrExtraction    = errors.New("text extraction failed")
	ErrEmbedding     = errors.New("embedding generation failed")
	ErrGeneration    = errors.New("answer generation failed")
	ErrVectorStore   = errors.New("vector store operation failed")
	ErrNotFound      = errors.New("not found")
)

// RateLimitError marks a transient upstream 429. Callers may retry after a
// delay; everything else is fatal for the request. Phase records which
// external call was throttled so the API can say so.
type RateLimitError struct {
	Phase string // "embedding" or "generation"
	Err   error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited: %v", e.Phase, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err (or anything it wraps) is a RateLimitError.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// RateLimitPhase returns the throttled phase, or "" if err is not rate-limited.
func RateLimitPhase(err error) string {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.Phase
	}
	return ""
}

package pipeline

import (
	"errors"
	"math/rand/v2"
	"net/url"
	"time"

	"github.com/dgallion1/docrender/internal/matrix"
)

const MaxRetries = 3

// IsRetryable checks if a send error is worth retrying: homeserver rate
// limiting, server-side failures, and transport errors. Client errors
// (forbidden, unknown room) are permanent.
func IsRetryable(err error) bool {
	var matrixErr *matrix.Error
	if errors.As(err, &matrixErr) {
		return matrixErr.Code == matrix.ErrCodeLimitExceeded || matrixErr.StatusCode >= 500
	}
	// net/http wraps connection and timeout failures in *url.Error.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
// When the homeserver supplied a retry_after_ms hint, that wins.
func Backoff(attempt int, err error) time.Duration {
	var matrixErr *matrix.Error
	if errors.As(err, &matrixErr) && matrixErr.RetryAfterMS > 0 {
		return time.Duration(matrixErr.RetryAfterMS) * time.Millisecond
	}
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

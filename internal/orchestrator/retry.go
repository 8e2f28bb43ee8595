package orchestrator

import (
	"time"

	apperrors "github.com/xtxerr/uplake/internal/errors"
)

// RetryStrategy decides whether a failed upload attempt is repeated.
//
// Next is consulted after attempt n failed (n starts at 1) and returns
// the delay before the next attempt plus whether to retry at all. The
// orchestrator re-signs before every attempt, since a signature that
// was rejected or has aged out never becomes valid again.
type RetryStrategy interface {
	Next(attempt int, err error) (time.Duration, bool)
}

// NoRetry never retries. It is the default: the pipeline reports
// failures per batch and leaves retry policy to the operator.
type NoRetry struct{}

// Next implements RetryStrategy.
func (NoRetry) Next(int, error) (time.Duration, bool) {
	return 0, false
}

// Backoff retries transient failures with exponential delay. It is not
// wired by default; install it with SetRetryStrategy.
type Backoff struct {
	// MaxAttempts is the total attempt budget including the first.
	MaxAttempts int

	// BaseDelay is the delay after the first failure.
	BaseDelay time.Duration

	// MaxDelay caps the delay growth.
	MaxDelay time.Duration
}

// Next implements RetryStrategy.
func (b Backoff) Next(attempt int, err error) (time.Duration, bool) {
	if !apperrors.IsRetriable(err) {
		return 0, false
	}
	if attempt >= b.MaxAttempts {
		return 0, false
	}

	delay := b.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= b.MaxDelay {
			delay = b.MaxDelay
			break
		}
	}
	if delay > b.MaxDelay {
		delay = b.MaxDelay
	}

	return delay, true
}

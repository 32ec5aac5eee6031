package lifecycle

import (
	"errors"
	"time"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrUnsupportedDirection = errors.New("unsupported swipe direction")
	ErrOutOfRange           = errors.New("candidate queue exhausted")
	ErrCandidateMismatch    = errors.New("candidate is not at the top of the queue")
	ErrSwipeInFlight        = errors.New("swipe commit is still pending")
	ErrNotEntitled          = errors.New("premium capability required")
	ErrNotEligible          = errors.New("match is not expiring soon")
	ErrRateLimited          = errors.New("match extension rate limited")
	ErrNothingToUndo        = errors.New("nothing to undo")
	ErrMatchNotFound        = errors.New("match not found")
)

type ExtensionRateLimitedError struct {
	MatchID    string
	RetryAfter time.Duration
}

func (e ExtensionRateLimitedError) Error() string {
	return ErrRateLimited.Error()
}

func (e ExtensionRateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

func (e ExtensionRateLimitedError) RetryAfterSec() int64 {
	sec := int64(e.RetryAfter / time.Second)
	if e.RetryAfter%time.Second != 0 {
		sec++
	}
	if sec <= 0 {
		return 1
	}
	return sec
}

func IsRateLimited(err error) (*ExtensionRateLimitedError, bool) {
	var rl ExtensionRateLimitedError
	if errors.As(err, &rl) {
		return &rl, true
	}
	return nil, false
}

package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	swipesMinuteWindow = time.Minute
	swipes10SecWindow  = 10 * time.Second
)

var ErrInvalidKey = errors.New("rate key is required")

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return fmt.Sprintf("too many swipes, retry after %ds", e.RetryAfterSec)
}

func IsTooFast(err error) (TooFastError, bool) {
	var tf TooFastError
	if errors.As(err, &tf) {
		return tf, true
	}
	return TooFastError{}, false
}

// Limiter throttles swipes per session with two fixed windows. A zero limit
// disables that window.
type Limiter struct {
	store     WindowStore
	perMinute int
	per10Sec  int
}

func NewLimiter(store WindowStore, perMinute, per10Sec int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	if per10Sec < 0 {
		per10Sec = 0
	}

	return &Limiter{
		store:     store,
		perMinute: perMinute,
		per10Sec:  per10Sec,
	}
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.store != nil && (l.perMinute > 0 || l.per10Sec > 0)
}

// AllowSwipe counts one swipe for sessionID and returns TooFastError once a
// window is over its limit.
func (l *Limiter) AllowSwipe(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrInvalidKey
	}
	if !l.Enabled() {
		return nil
	}

	var retryAfterSec int64
	windows := []struct {
		limit  int
		key    string
		window time.Duration
	}{
		{limit: l.perMinute, key: minuteKey(sessionID), window: swipesMinuteWindow},
		{limit: l.per10Sec, key: tenSecKey(sessionID), window: swipes10SecWindow},
	}
	for _, w := range windows {
		if w.limit <= 0 {
			continue
		}
		count, ttl, err := l.store.IncrementWindow(ctx, w.key, w.window)
		if err != nil {
			return err
		}
		if count > int64(w.limit) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return TooFastError{RetryAfterSec: retryAfterSec}
	}
	return nil
}

// RetryAfter reports how long the session must wait without counting a swipe.
func (l *Limiter) RetryAfter(ctx context.Context, sessionID string) (int64, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return 0, ErrInvalidKey
	}
	if !l.Enabled() {
		return 0, nil
	}

	var retryAfterSec int64
	if l.perMinute > 0 {
		count, ttl, err := l.store.WindowState(ctx, minuteKey(sessionID))
		if err != nil {
			return 0, err
		}
		if count >= int64(l.perMinute) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}
	if l.per10Sec > 0 {
		count, ttl, err := l.store.WindowState(ctx, tenSecKey(sessionID))
		if err != nil {
			return 0, err
		}
		if count >= int64(l.per10Sec) {
			retryAfterSec = max(retryAfterSec, ceilSeconds(ttl))
		}
	}

	return retryAfterSec, nil
}

func minuteKey(sessionID string) string {
	return "rate:swipes:min:" + sessionID
}

func tenSecKey(sessionID string) string {
	return "rate:swipes:10s:" + sessionID
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	return sec
}

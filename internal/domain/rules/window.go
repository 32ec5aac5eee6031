package rules

import (
	"time"

	"github.com/Jayce162/Petpals/internal/domain/enums"
	"github.com/Jayce162/Petpals/internal/domain/model"
)

const (
	MatchWindow        = 24 * time.Hour
	ExpiringSoonWindow = 2 * time.Hour
	ExtensionStep      = 24 * time.Hour
	ExtensionCooldown  = 24 * time.Hour

	DefaultMatchProbability = 0.7
	DefaultCommitDelay      = 300 * time.Millisecond
)

func ExpiresAt(matchedAt time.Time) time.Time {
	return matchedAt.Add(MatchWindow)
}

func TimeLeft(m model.Match, now time.Time) time.Duration {
	left := m.ExpiresAt.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// HoursLeft rounds the remaining window up to whole hours, the value shown on
// the match badge.
func HoursLeft(m model.Match, now time.Time) int {
	left := TimeLeft(m, now)
	hours := int(left / time.Hour)
	if left%time.Hour != 0 {
		hours++
	}
	return hours
}

func IsExpiringSoon(m model.Match, now time.Time) bool {
	left := TimeLeft(m, now)
	return left > 0 && left < ExpiringSoonWindow
}

func IsExpired(m model.Match, now time.Time) bool {
	return !m.ExpiresAt.After(now)
}

func CanExtend(m model.Match, now time.Time) bool {
	if !IsExpiringSoon(m, now) {
		return false
	}
	return m.LastExtendedAt == nil || now.Sub(*m.LastExtendedAt) > ExtensionCooldown
}

// ExtensionRetryAfter reports how long until another extension is allowed.
// Zero means the cooldown does not block.
func ExtensionRetryAfter(m model.Match, now time.Time) time.Duration {
	if m.LastExtendedAt == nil {
		return 0
	}
	since := now.Sub(*m.LastExtendedAt)
	if since >= ExtensionCooldown {
		return 0
	}
	return ExtensionCooldown - since
}

func Status(m model.Match, now time.Time) enums.MatchStatus {
	switch {
	case IsExpired(m, now):
		return enums.MatchStatusExpired
	case IsExpiringSoon(m, now):
		return enums.MatchStatusExpiringSoon
	default:
		return enums.MatchStatusActive
	}
}

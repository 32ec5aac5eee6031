package enums

type MatchStatus string

const (
	MatchStatusActive       MatchStatus = "active"
	MatchStatusExpiringSoon MatchStatus = "expiring_soon"
	MatchStatusExpired      MatchStatus = "expired"
)

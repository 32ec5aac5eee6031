package model

import "time"

type Match struct {
	ID               string     `json:"id"`
	CandidateID      string     `json:"candidate_id"`
	MatchedAt        time.Time  `json:"matched_at"`
	IsFirstMoveYours bool       `json:"is_first_move_yours"`
	ExpiresAt        time.Time  `json:"expires_at"`
	LastExtendedAt   *time.Time `json:"last_extended_at,omitempty"`
}

func (m Match) Clone() Match {
	out := m
	if m.LastExtendedAt != nil {
		at := *m.LastExtendedAt
		out.LastExtendedAt = &at
	}
	return out
}

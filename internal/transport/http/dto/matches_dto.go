package dto

import "time"

type MatchResponse struct {
	ID               string     `json:"id"`
	CandidateID      string     `json:"candidate_id"`
	MatchedAt        time.Time  `json:"matched_at"`
	ExpiresAt        time.Time  `json:"expires_at"`
	LastExtendedAt   *time.Time `json:"last_extended_at,omitempty"`
	IsFirstMoveYours bool       `json:"is_first_move_yours"`
	TimeLeftSec      int64      `json:"time_left_sec"`
	HoursLeft        int        `json:"hours_left"`
	IsExpiringSoon   bool       `json:"is_expiring_soon"`
	CanExtend        bool       `json:"can_extend"`
	IsExpired        bool       `json:"is_expired"`
	Status           string     `json:"status"`
}

type MatchesResponse struct {
	Items []MatchResponse `json:"items"`
}

type DirectMatchRequest struct {
	CandidateID string `json:"candidate_id"`
	Gender      string `json:"gender,omitempty"`
	Name        string `json:"name,omitempty"`
}

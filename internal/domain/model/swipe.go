package model

import "github.com/Jayce162/Petpals/internal/domain/enums"

type SwipeHistoryEntry struct {
	Direction   enums.Direction `json:"direction"`
	CandidateID string          `json:"candidate_id"`
	MatchID     string          `json:"match_id,omitempty"`
}

package dto

import "time"

type CreateSessionRequest struct {
	ActorID int64  `json:"actor_id"`
	Gender  string `json:"gender"`
}

type SessionResponse struct {
	ID        string    `json:"id"`
	ActorID   int64     `json:"actor_id"`
	Gender    string    `json:"gender"`
	IsPremium bool      `json:"is_premium"`
	Remaining int       `json:"remaining"`
	CreatedAt time.Time `json:"created_at"`
}

type CandidateResponse struct {
	ID         string  `json:"id"`
	Gender     string  `json:"gender"`
	Name       string  `json:"name,omitempty"`
	Species    string  `json:"species,omitempty"`
	Breed      string  `json:"breed,omitempty"`
	DistanceKM float64 `json:"distance_km,omitempty"`
}

type CurrentCandidateResponse struct {
	Candidate *CandidateResponse `json:"candidate"`
	Remaining int                `json:"remaining"`
	Pending   bool               `json:"pending"`

	SwipeRetryAfterSec int64 `json:"swipe_retry_after_sec"`
}

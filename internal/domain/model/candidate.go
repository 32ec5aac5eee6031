package model

import "github.com/Jayce162/Petpals/internal/domain/enums"

// Candidate is a profile offered for swiping. Only ID and Gender feed the
// match rules; the rest is passed through for display.
type Candidate struct {
	ID         string       `json:"id"`
	Gender     enums.Gender `json:"gender"`
	Name       string       `json:"name,omitempty"`
	Species    string       `json:"species,omitempty"`
	Breed      string       `json:"breed,omitempty"`
	DistanceKM float64      `json:"distance_km,omitempty"`
}

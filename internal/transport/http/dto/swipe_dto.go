package dto

type SwipeRequest struct {
	CandidateID string `json:"candidate_id"`
	Direction   string `json:"direction"`
}

type SwipeResponse struct {
	Committed   bool           `json:"committed"`
	Direction   string         `json:"direction"`
	CandidateID string         `json:"candidate_id"`
	Matched     bool           `json:"matched"`
	Match       *MatchResponse `json:"match,omitempty"`
	Remaining   int            `json:"remaining"`
}

type UndoResponse struct {
	Candidate        CandidateResponse `json:"candidate"`
	Direction        string            `json:"direction"`
	RetractedMatchID string            `json:"retracted_match_id,omitempty"`
	Remaining        int               `json:"remaining"`
}

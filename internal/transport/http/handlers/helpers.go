package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Jayce162/Petpals/internal/domain/model"
	"github.com/Jayce162/Petpals/internal/services/lifecycle"
	sessionsvc "github.com/Jayce162/Petpals/internal/services/sessions"
	"github.com/Jayce162/Petpals/internal/transport/http/dto"
	httperrors "github.com/Jayce162/Petpals/internal/transport/http/errors"
)

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeConflict(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

// writeLifecycleError maps engine and session errors to responses. It
// reports false when err is not one it knows.
func writeLifecycleError(w http.ResponseWriter, err error) bool {
	if rl, ok := lifecycle.IsRateLimited(err); ok {
		httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
			Code:          "EXTENSION_RATE_LIMITED",
			Message:       "match was extended recently, try again later",
			RetryAfterSec: rl.RetryAfterSec(),
		})
		return true
	}

	switch {
	case errors.Is(err, sessionsvc.ErrNotFound):
		writeNotFound(w, "SESSION_NOT_FOUND", "session not found")
	case errors.Is(err, lifecycle.ErrMatchNotFound):
		writeNotFound(w, "MATCH_NOT_FOUND", "match not found")
	case errors.Is(err, lifecycle.ErrOutOfRange):
		writeConflict(w, "QUEUE_EXHAUSTED", "no candidates left")
	case errors.Is(err, lifecycle.ErrNotEntitled):
		httperrors.Write(w, http.StatusPaymentRequired, httperrors.APIError{
			Code:    "PREMIUM_REQUIRED",
			Message: "premium is required for this action",
		})
	case errors.Is(err, lifecycle.ErrNotEligible):
		writeConflict(w, "NOT_ELIGIBLE", "match is not expiring soon")
	case errors.Is(err, lifecycle.ErrNothingToUndo):
		writeConflict(w, "NOTHING_TO_UNDO", "nothing to undo")
	case errors.Is(err, lifecycle.ErrSwipeInFlight):
		writeConflict(w, "SWIPE_IN_FLIGHT", "previous swipe is still being processed")
	case errors.Is(err, lifecycle.ErrCandidateMismatch):
		writeBadRequest(w, "VALIDATION_ERROR", "candidate is not at the top of the queue")
	case errors.Is(err, lifecycle.ErrUnsupportedDirection):
		writeBadRequest(w, "VALIDATION_ERROR", "unsupported direction")
	case errors.Is(err, lifecycle.ErrValidation), errors.Is(err, sessionsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request")
	default:
		return false
	}
	return true
}

func sessionIDParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}

func mapCandidate(c model.Candidate) dto.CandidateResponse {
	return dto.CandidateResponse{
		ID:         c.ID,
		Gender:     string(c.Gender),
		Name:       c.Name,
		Species:    c.Species,
		Breed:      c.Breed,
		DistanceKM: c.DistanceKM,
	}
}

func mapMatch(view lifecycle.MatchView) dto.MatchResponse {
	m := view.Match
	return dto.MatchResponse{
		ID:               m.ID,
		CandidateID:      m.CandidateID,
		MatchedAt:        m.MatchedAt,
		ExpiresAt:        m.ExpiresAt,
		LastExtendedAt:   m.LastExtendedAt,
		IsFirstMoveYours: m.IsFirstMoveYours,
		TimeLeftSec:      int64(view.TimeLeft / time.Second),
		HoursLeft:        view.HoursLeft,
		IsExpiringSoon:   view.IsExpiringSoon,
		CanExtend:        view.CanExtend,
		IsExpired:        view.IsExpired,
		Status:           string(view.Status),
	}
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Jayce162/Petpals/internal/domain/enums"
	"github.com/Jayce162/Petpals/internal/domain/model"
	"github.com/Jayce162/Petpals/internal/pkg/validate"
	"github.com/Jayce162/Petpals/internal/services/lifecycle"
	ratesvc "github.com/Jayce162/Petpals/internal/services/rate"
	sessionsvc "github.com/Jayce162/Petpals/internal/services/sessions"
	"github.com/Jayce162/Petpals/internal/transport/http/dto"
	httperrors "github.com/Jayce162/Petpals/internal/transport/http/errors"
)

// SwipeLimiter counts swipes per session. RetryAfter peeks at the windows
// without counting so clients can hold off before a 429.
type SwipeLimiter interface {
	AllowSwipe(ctx context.Context, sessionID string) error
	RetryAfter(ctx context.Context, sessionID string) (int64, error)
}

type SwipeHandler struct {
	sessions *sessionsvc.Service
	limiter  SwipeLimiter
	logger   *zap.Logger
}

func NewSwipeHandler(sessions *sessionsvc.Service, limiter SwipeLimiter, logger *zap.Logger) *SwipeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SwipeHandler{sessions: sessions, limiter: limiter, logger: logger}
}

// Swipe submits the decision and waits for the delayed commit, bounded by the
// request context. A request that gives up early gets 202 and the commit still
// lands.
func (h *SwipeHandler) Swipe(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		writeInternal(w, "SESSION_SERVICE_UNAVAILABLE", "session service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	direction, ok := enums.ParseDirection(req.Direction)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "direction must be like or pass")
		return
	}
	candidateID, ok := validate.ID(req.CandidateID)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "candidate_id is required")
		return
	}

	session, err := h.sessions.Get(sessionIDParam(r))
	if err != nil {
		h.writeError(w, err, "failed to load session")
		return
	}

	if h.limiter != nil {
		if err := h.limiter.AllowSwipe(r.Context(), session.ID); err != nil {
			if tf, ok := ratesvc.IsTooFast(err); ok {
				httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
					Code:          "TOO_FAST",
					Message:       "too many swipes, slow down",
					RetryAfterSec: tf.RetryAfterSec,
				})
				return
			}
			h.logger.Warn("swipe throttle unavailable, allowing swipe", zap.String("session_id", session.ID), zap.Error(err))
		}
	}

	pending, err := session.Engine.Swipe(r.Context(), direction, session.ActorGender, model.Candidate{ID: candidateID})
	if err != nil {
		h.writeError(w, err, "failed to process swipe")
		return
	}

	result, err := pending.Wait(r.Context())
	if err != nil {
		httperrors.Write(w, http.StatusAccepted, dto.SwipeResponse{
			Committed:   false,
			Direction:   string(pending.Direction()),
			CandidateID: pending.Candidate().ID,
		})
		return
	}

	resp := dto.SwipeResponse{
		Committed:   true,
		Direction:   string(result.Direction),
		CandidateID: result.Candidate.ID,
		Matched:     result.Matched,
		Remaining:   session.Engine.Remaining(),
	}
	if result.Match != nil {
		m := mapMatch(lifecycle.Describe(*result.Match, result.Match.MatchedAt))
		resp.Match = &m
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *SwipeHandler) Undo(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		writeInternal(w, "SESSION_SERVICE_UNAVAILABLE", "session service is unavailable")
		return
	}

	session, err := h.sessions.Get(sessionIDParam(r))
	if err != nil {
		h.writeError(w, err, "failed to load session")
		return
	}

	result, err := session.Engine.Undo(r.Context())
	if err != nil {
		h.writeError(w, err, "failed to undo swipe")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UndoResponse{
		Candidate:        mapCandidate(result.Candidate),
		Direction:        string(result.Direction),
		RetractedMatchID: result.RetractedMatchID,
		Remaining:        session.Engine.Remaining(),
	})
}

func (h *SwipeHandler) writeError(w http.ResponseWriter, err error, message string) {
	if writeLifecycleError(w, err) {
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{
			Code:    "REQUEST_CANCELLED",
			Message: "request was cancelled",
		})
		return
	}
	h.logger.Error(message, zap.Error(err))
	writeInternal(w, "INTERNAL_ERROR", message)
}

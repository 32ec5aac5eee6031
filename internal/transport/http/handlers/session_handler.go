package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Jayce162/Petpals/internal/domain/enums"
	"github.com/Jayce162/Petpals/internal/services/lifecycle"
	sessionsvc "github.com/Jayce162/Petpals/internal/services/sessions"
	"github.com/Jayce162/Petpals/internal/transport/http/dto"
	httperrors "github.com/Jayce162/Petpals/internal/transport/http/errors"
)

type SessionHandler struct {
	sessions *sessionsvc.Service
	limiter  SwipeLimiter
	logger   *zap.Logger
}

func NewSessionHandler(sessions *sessionsvc.Service, limiter SwipeLimiter, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{sessions: sessions, limiter: limiter, logger: logger}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		writeInternal(w, "SESSION_SERVICE_UNAVAILABLE", "session service is unavailable")
		return
	}

	var req dto.CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	gender, ok := enums.ParseGender(req.Gender)
	if req.ActorID <= 0 || !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "actor_id and gender are required")
		return
	}

	session, err := h.sessions.Create(r.Context(), req.ActorID, gender)
	if err != nil {
		if errors.Is(err, sessionsvc.ErrTooManySessions) {
			httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{
				Code:    "SESSION_LIMIT_REACHED",
				Message: "too many active sessions, try again later",
			})
			return
		}
		if writeLifecycleError(w, err) {
			return
		}
		h.logger.Error("create session failed", zap.Int64("actor_id", req.ActorID), zap.Error(err))
		writeInternal(w, "INTERNAL_ERROR", "failed to create session")
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.SessionResponse{
		ID:        session.ID,
		ActorID:   session.ActorID,
		Gender:    string(session.ActorGender),
		IsPremium: session.IsPremium,
		Remaining: session.Engine.Remaining(),
		CreatedAt: session.CreatedAt,
	})
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		writeInternal(w, "SESSION_SERVICE_UNAVAILABLE", "session service is unavailable")
		return
	}

	if err := h.sessions.Delete(sessionIDParam(r)); err != nil {
		if writeLifecycleError(w, err) {
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Candidate(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		writeInternal(w, "SESSION_SERVICE_UNAVAILABLE", "session service is unavailable")
		return
	}

	session, err := h.sessions.Get(sessionIDParam(r))
	if err != nil {
		if writeLifecycleError(w, err) {
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load session")
		return
	}

	resp := dto.CurrentCandidateResponse{
		Remaining: session.Engine.Remaining(),
		Pending:   session.Engine.Pending(),
	}
	current, err := session.Engine.Current()
	switch {
	case err == nil:
		c := mapCandidate(current)
		resp.Candidate = &c
	case errors.Is(err, lifecycle.ErrOutOfRange):
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to load candidate")
		return
	}

	resp.SwipeRetryAfterSec = h.swipeRetryAfter(r, session.ID)

	httperrors.Write(w, http.StatusOK, resp)
}

// swipeRetryAfter reports zero when the throttle is off or unreachable.
func (h *SessionHandler) swipeRetryAfter(r *http.Request, sessionID string) int64 {
	if h.limiter == nil {
		return 0
	}
	sec, err := h.limiter.RetryAfter(r.Context(), sessionID)
	if err != nil {
		h.logger.Warn("swipe throttle unavailable", zap.String("session_id", sessionID), zap.Error(err))
		return 0
	}
	return sec
}

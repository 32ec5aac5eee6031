package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Jayce162/Petpals/internal/domain/enums"
	"github.com/Jayce162/Petpals/internal/domain/model"
	"github.com/Jayce162/Petpals/internal/pkg/validate"
	"github.com/Jayce162/Petpals/internal/services/lifecycle"
	sessionsvc "github.com/Jayce162/Petpals/internal/services/sessions"
	"github.com/Jayce162/Petpals/internal/transport/http/dto"
	httperrors "github.com/Jayce162/Petpals/internal/transport/http/errors"
)

type MatchesHandler struct {
	sessions *sessionsvc.Service
	logger   *zap.Logger
}

func NewMatchesHandler(sessions *sessionsvc.Service, logger *zap.Logger) *MatchesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchesHandler{sessions: sessions, logger: logger}
}

func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	views := session.Engine.Views()
	items := make([]dto.MatchResponse, 0, len(views))
	for _, view := range views {
		items = append(items, mapMatch(view))
	}
	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{Items: items})
}

// Direct accepts an admirer from the likes list straight into a match.
func (h *MatchesHandler) Direct(w http.ResponseWriter, r *http.Request) {
	var req dto.DirectMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	candidateID, ok := validate.ID(req.CandidateID)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "candidate_id is required")
		return
	}
	candidate := model.Candidate{ID: candidateID, Name: req.Name}
	if req.Gender != "" {
		gender, ok := enums.ParseGender(req.Gender)
		if !ok {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid gender")
			return
		}
		candidate.Gender = gender
	}

	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	m, err := session.Engine.DirectMatch(r.Context(), candidate)
	if err != nil {
		h.writeError(w, err, "failed to create match")
		return
	}
	httperrors.Write(w, http.StatusCreated, mapMatch(lifecycle.Describe(m, m.MatchedAt)))
}

func (h *MatchesHandler) Extend(w http.ResponseWriter, r *http.Request) {
	matchID, ok := validate.ID(chi.URLParam(r, "match_id"))
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "match_id is required")
		return
	}

	session, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	if _, err := session.Engine.ExtendMatch(r.Context(), matchID); err != nil {
		h.writeError(w, err, "failed to extend match")
		return
	}

	for _, view := range session.Engine.Views() {
		if view.Match.ID == matchID {
			httperrors.Write(w, http.StatusOK, mapMatch(view))
			return
		}
	}
	writeNotFound(w, "MATCH_NOT_FOUND", "match not found")
}

func (h *MatchesHandler) loadSession(w http.ResponseWriter, r *http.Request) (*sessionsvc.Session, bool) {
	if h.sessions == nil {
		writeInternal(w, "SESSION_SERVICE_UNAVAILABLE", "session service is unavailable")
		return nil, false
	}
	session, err := h.sessions.Get(sessionIDParam(r))
	if err != nil {
		h.writeError(w, err, "failed to load session")
		return nil, false
	}
	return session, true
}

func (h *MatchesHandler) writeError(w http.ResponseWriter, err error, message string) {
	if writeLifecycleError(w, err) {
		return
	}
	h.logger.Error(message, zap.Error(err))
	writeInternal(w, "INTERNAL_ERROR", message)
}

package api

import (
	"log/slog"
	"net/http"

	"github.com/kotoba-app/kotoba-api/internal/api/shared"
	"github.com/kotoba-app/kotoba-api/internal/domain"
	"github.com/kotoba-app/kotoba-api/internal/platform/logger"
	"github.com/kotoba-app/kotoba-api/internal/study"
)

// StudyHandler handles study-session HTTP requests. Sessions are ephemeral
// server-side state addressed by ID; every mutating endpoint responds with
// the session's fresh snapshot so clients never need a second read.
type StudyHandler struct {
	manager *study.Manager
	logger  *slog.Logger
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(manager *study.Manager, log *slog.Logger) *StudyHandler {
	if manager == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("manager cannot be nil for StudyHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StudyHandler")
	}

	return &StudyHandler{
		manager: manager,
		logger:  log.With(slog.String("component", "study_handler")),
	}
}

// CreateSession handles POST /study/sessions requests. The body narrows the
// due-set; omitted filters default to the "all" wildcard.
func (h *StudyHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateSessionRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.manager.Create(r.Context(), study.Filters{
		JLPTLevel:          req.JLPTLevel,
		MemorizationStatus: req.MemorizationStatus,
		DifficultyLevel:    req.DifficultyLevel,
	})
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	log.Debug("study session created", slog.String("session_id", session.ID().String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, NewSessionResponse(session.Snapshot()))
}

// GetSession handles GET /study/sessions/{id} requests.
func (h *StudyHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, NewSessionResponse(session.Snapshot()))
}

// DeleteSession handles DELETE /study/sessions/{id} requests, abandoning
// the session. Card mutations already written stay written.
func (h *StudyHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}
	h.manager.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

// Restart handles POST /study/sessions/{id}/restart requests.
func (h *StudyHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(s *study.Session) error {
		s.Start()
		return nil
	})
}

// Flip handles POST /study/sessions/{id}/flip requests.
func (h *StudyHandler) Flip(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(s *study.Session) error {
		s.Flip()
		return nil
	})
}

// Next handles POST /study/sessions/{id}/next requests.
func (h *StudyHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(s *study.Session) error {
		s.Next()
		return nil
	})
}

// Prev handles POST /study/sessions/{id}/prev requests.
func (h *StudyHandler) Prev(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(s *study.Session) error {
		s.Prev()
		return nil
	})
}

// Shuffle handles POST /study/sessions/{id}/shuffle requests.
func (h *StudyHandler) Shuffle(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(s *study.Session) error {
		s.Shuffle()
		return nil
	})
}

// ResetOrder handles POST /study/sessions/{id}/reset-order requests.
func (h *StudyHandler) ResetOrder(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(s *study.Session) error {
		s.ResetOrder()
		return nil
	})
}

// ResetAll handles POST /study/sessions/{id}/reset-all requests.
func (h *StudyHandler) ResetAll(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(s *study.Session) error {
		return s.ResetAll(r.Context())
	})
}

// SetStatus handles POST /study/sessions/{id}/status requests.
func (h *StudyHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	h.mutate(w, r, func(s *study.Session) error {
		return s.SetMemorizationStatus(r.Context(), domain.MemorizationStatus(req.Status))
	})
}

// SetDifficulty handles POST /study/sessions/{id}/difficulty requests.
func (h *StudyHandler) SetDifficulty(w http.ResponseWriter, r *http.Request) {
	var req SetDifficultyRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	h.mutate(w, r, func(s *study.Session) error {
		return s.SetDifficultyLevel(r.Context(), domain.DifficultyLevel(req.Level))
	})
}

// Rate handles POST /study/sessions/{id}/rate requests: the full scheduler
// path for the current card.
func (h *StudyHandler) Rate(w http.ResponseWriter, r *http.Request) {
	var req RateCardRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}
	h.mutate(w, r, func(s *study.Session) error {
		return s.Rate(r.Context(), domain.ReviewRating(req.Rating))
	})
}

// session resolves the {id} path parameter to an active session. On failure
// it writes the error response and returns false.
func (h *StudyHandler) session(w http.ResponseWriter, r *http.Request) (*study.Session, bool) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return nil, false
	}
	session, err := h.manager.Get(id)
	if err != nil {
		HandleServiceError(w, r, err)
		return nil, false
	}
	return session, true
}

// mutate applies op to the addressed session and responds with the updated
// snapshot.
func (h *StudyHandler) mutate(w http.ResponseWriter, r *http.Request, op func(*study.Session) error) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := op(session); err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, NewSessionResponse(session.Snapshot()))
}

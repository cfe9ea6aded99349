package api

import (
	"log/slog"
	"net/http"

	"github.com/kotoba-app/kotoba-api/internal/api/shared"
	"github.com/kotoba-app/kotoba-api/internal/daily"
	"github.com/kotoba-app/kotoba-api/internal/platform/logger"
)

// DailyHandler handles daily-words HTTP requests.
type DailyHandler struct {
	tracker *daily.Tracker
	logger  *slog.Logger
}

// NewDailyHandler creates a new DailyHandler.
func NewDailyHandler(tracker *daily.Tracker, log *slog.Logger) *DailyHandler {
	if tracker == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tracker cannot be nil for DailyHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for DailyHandler")
	}

	return &DailyHandler{
		tracker: tracker,
		logger:  log.With(slog.String("component", "daily_handler")),
	}
}

// GetState handles GET /daily requests. Reading the state also performs the
// day rollover, so the response always describes today.
func (h *DailyHandler) GetState(w http.ResponseWriter, r *http.Request) {
	h.respondWithState(w, r)
}

// MarkLearned handles POST /daily/learned/{id} requests.
func (h *DailyHandler) MarkLearned(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.tracker.MarkWordLearned(r.Context(), id); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	log.Debug("daily word marked learned", slog.String("card_id", id.String()))
	h.respondWithState(w, r)
}

// MarkAllLearned handles POST /daily/learn-all requests.
func (h *DailyHandler) MarkAllLearned(w http.ResponseWriter, r *http.Request) {
	if err := h.tracker.MarkAllLearned(r.Context()); err != nil {
		HandleServiceError(w, r, err)
		return
	}
	h.respondWithState(w, r)
}

// RefreshWords handles POST /daily/refresh requests.
func (h *DailyHandler) RefreshWords(w http.ResponseWriter, r *http.Request) {
	if err := h.tracker.RefreshWords(r.Context()); err != nil {
		HandleServiceError(w, r, err)
		return
	}
	h.respondWithState(w, r)
}

// SetTarget handles POST /daily/target requests.
func (h *DailyHandler) SetTarget(w http.ResponseWriter, r *http.Request) {
	var req SetTargetRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	if err := h.tracker.SetTarget(r.Context(), req.TargetWords); err != nil {
		HandleServiceError(w, r, err)
		return
	}
	h.respondWithState(w, r)
}

// DismissNotification handles POST /daily/dismiss-notification requests.
func (h *DailyHandler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	if err := h.tracker.DismissNotification(r.Context()); err != nil {
		HandleServiceError(w, r, err)
		return
	}
	h.respondWithState(w, r)
}

func (h *DailyHandler) respondWithState(w http.ResponseWriter, r *http.Request) {
	state, err := h.tracker.State(r.Context())
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, NewDailyStateResponse(state))
}

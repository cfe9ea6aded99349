// Package api provides HTTP handlers for the API.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kotoba-app/kotoba-api/internal/api/shared"
	"github.com/kotoba-app/kotoba-api/internal/domain"
	"github.com/kotoba-app/kotoba-api/internal/platform/logger"
	"github.com/kotoba-app/kotoba-api/internal/store"
	"github.com/kotoba-app/kotoba-api/internal/study"
)

// CardHandler handles card-related HTTP requests.
type CardHandler struct {
	cardStore store.CardStore
	logger    *slog.Logger
	now       func() domain.Date
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardStore store.CardStore, log *slog.Logger) *CardHandler {
	if cardStore == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("cardStore cannot be nil for CardHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}

	return &CardHandler{
		cardStore: cardStore,
		logger:    log.With(slog.String("component", "card_handler")),
		now:       domain.Today,
	}
}

// CreateCard handles POST /cards requests.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateCardRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	card, err := newCardFromRequest(req)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid card data", err)
		return
	}

	if err := h.cardStore.Create(r.Context(), card); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	log.Debug("card created", slog.String("card_id", card.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, NewCardResponse(card))
}

// BatchCreateCards handles POST /cards/batch requests. The batch is atomic:
// if any card is rejected, none are created.
func (h *CardHandler) BatchCreateCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req BatchCreateCardsRequest
	if !DecodeAndValidate(w, r, &req) {
		return
	}

	cards := make([]*domain.Flashcard, 0, len(req.Cards))
	for _, item := range req.Cards {
		card, err := newCardFromRequest(item)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid card data", err)
			return
		}
		cards = append(cards, card)
	}

	if err := h.cardStore.CreateBatch(r.Context(), cards); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	resp := make([]CardResponse, 0, len(cards))
	for _, card := range cards {
		resp = append(resp, NewCardResponse(card))
	}
	log.Debug("card batch created", slog.Int("count", len(cards)))
	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

func newCardFromRequest(req CreateCardRequest) (*domain.Flashcard, error) {
	card, err := domain.NewFlashcard(req.Front, req.Back, req.JLPTLevels)
	if err != nil {
		return nil, err
	}
	card.Reading = req.Reading
	return card, nil
}

// ListCards handles GET /cards requests. Query parameters jlpt_level,
// memorization_status, and difficulty_level narrow the collection the same
// way a study session scope does; due=true narrows to the current due-set.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	filters := study.Filters{
		JLPTLevel:          r.URL.Query().Get("jlpt_level"),
		MemorizationStatus: r.URL.Query().Get("memorization_status"),
		DifficultyLevel:    r.URL.Query().Get("difficulty_level"),
	}

	cards, err := h.cardStore.List(r.Context())
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	var matched []*domain.Flashcard
	if r.URL.Query().Get("due") == "true" {
		matched = study.DueCards(cards, filters, h.now())
	} else {
		matched = make([]*domain.Flashcard, 0, len(cards))
		for _, card := range cards {
			if filters.Matches(card) {
				matched = append(matched, card)
			}
		}
	}

	resp := make([]CardResponse, 0, len(matched))
	for _, card := range matched {
		resp = append(resp, NewCardResponse(card))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetCard handles GET /cards/{id} requests.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	card, err := h.cardStore.GetByID(r.Context(), id)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, NewCardResponse(card))
}

// DeleteCard handles DELETE /cards/{id} requests.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := parseUUIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.cardStore.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Card not found")
			return
		}
		HandleServiceError(w, r, err)
		return
	}

	log.Debug("card deleted", slog.String("card_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// parseUUIDParam extracts and parses a UUID path parameter. On failure it
// writes a 400 response and returns false.
func parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

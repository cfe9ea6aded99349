package api

import (
	"errors"
	"net/http"

	"github.com/kotoba-app/kotoba-api/internal/api/shared"
	"github.com/kotoba-app/kotoba-api/internal/domain"
	"github.com/kotoba-app/kotoba-api/internal/domain/srs"
	"github.com/kotoba-app/kotoba-api/internal/store"
	"github.com/kotoba-app/kotoba-api/internal/study"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrCardNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, study.ErrSessionNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, srs.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidDailyTarget),
		errors.Is(err, domain.ErrInvalidMemorizationStatus),
		errors.Is(err, domain.ErrInvalidDifficultyLevel),
		errors.Is(err, domain.ErrInvalidReviewRating),
		errors.Is(err, domain.ErrInvalidDate):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, study.ErrSessionNotFound):
		return "Study session not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrDuplicate):
		return "Already exists"

	case errors.Is(err, srs.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidReviewRating):
		return "Invalid review rating"

	case errors.Is(err, domain.ErrInvalidDailyTarget):
		return "Daily target must be one of 5, 10, 15, or 20"

	case errors.Is(err, domain.ErrInvalidMemorizationStatus):
		return "Invalid memorization status"

	case errors.Is(err, domain.ErrInvalidDifficultyLevel):
		return "Invalid difficulty level"

	case errors.Is(err, domain.ErrInvalidDate):
		return "Invalid date"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleServiceError is the one-stop error responder used by all handlers:
// it maps the error to a status code and a safe message, logs the raw error,
// and writes the response.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

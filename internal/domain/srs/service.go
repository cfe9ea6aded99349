package srs

import (
	"errors"

	"github.com/kotoba-app/kotoba-api/internal/domain"
)

// Common errors
var (
	ErrNilCard       = errors.New("card cannot be nil")
	ErrInvalidRating = errors.New("invalid review rating")
)

// ReviewResult carries the scheduling fields computed for one review.
// The caller patches these onto the card and persists them; the scheduler
// itself has no side effects.
type ReviewResult struct {
	EaseFactor     float64     `json:"ease_factor"`
	Interval       int         `json:"interval"`
	Repetitions    int         `json:"repetitions"`
	NextReviewDate domain.Date `json:"next_review_date"`
}

// Patch converts the result into a partial card update.
func (r *ReviewResult) Patch() domain.CardPatch {
	ef := r.EaseFactor
	interval := r.Interval
	reps := r.Repetitions
	next := r.NextReviewDate
	return domain.CardPatch{
		EaseFactor:     &ef,
		Interval:       &interval,
		Repetitions:    &reps,
		NextReviewDate: &next,
	}
}

// Service defines the interface for SRS algorithm operations
type Service interface {
	// CalculateNextReview computes the next-review scheduling fields for a
	// card given the learner's rating. The card itself is not modified.
	CalculateNextReview(
		card *domain.Flashcard,
		rating domain.ReviewRating,
		today domain.Date,
	) (*ReviewResult, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// CalculateNextReview implements the Service interface.
func (s *defaultService) CalculateNextReview(
	card *domain.Flashcard,
	rating domain.ReviewRating,
	today domain.Date,
) (*ReviewResult, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	if !rating.IsValid() {
		return nil, ErrInvalidRating
	}

	return calculateNextReview(card, rating, today, s.params), nil
}

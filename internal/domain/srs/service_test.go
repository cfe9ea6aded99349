package srs

import (
	"errors"
	"testing"

	"github.com/kotoba-app/kotoba-api/internal/domain"
)

func TestServiceCalculateNextReview(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()
	today := domain.NewDate(2024, 6, 15)

	card, err := domain.NewFlashcard("空", "sky", []string{"N5"})
	if err != nil {
		t.Fatalf("Failed to create card: %v", err)
	}

	result, err := svc.CalculateNextReview(card, domain.ReviewRatingGood, today)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.Repetitions != 1 || result.Interval != 1 {
		t.Errorf("Expected (reps 1, interval 1), got (%d, %d)", result.Repetitions, result.Interval)
	}

	// The card itself must not be mutated
	if card.Repetitions != 0 || card.Interval != 0 {
		t.Error("Expected CalculateNextReview to leave the card untouched")
	}
}

func TestServiceCalculateNextReviewNilCard(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	_, err := svc.CalculateNextReview(nil, domain.ReviewRatingGood, domain.NewDate(2024, 6, 15))
	if !errors.Is(err, ErrNilCard) {
		t.Errorf("Expected ErrNilCard, got %v", err)
	}
}

func TestServiceCalculateNextReviewInvalidRating(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	card, err := domain.NewFlashcard("海", "sea", []string{"N5"})
	if err != nil {
		t.Fatalf("Failed to create card: %v", err)
	}

	_, err = svc.CalculateNextReview(card, "brilliant", domain.NewDate(2024, 6, 15))
	if !errors.Is(err, ErrInvalidRating) {
		t.Errorf("Expected ErrInvalidRating, got %v", err)
	}
}

func TestReviewResultPatch(t *testing.T) {
	t.Parallel()

	result := &ReviewResult{
		EaseFactor:     2.36,
		Interval:       6,
		Repetitions:    2,
		NextReviewDate: domain.NewDate(2024, 6, 21),
	}

	card, err := domain.NewFlashcard("森", "forest", []string{"N4"})
	if err != nil {
		t.Fatalf("Failed to create card: %v", err)
	}

	result.Patch().Apply(card)

	if card.EaseFactor != 2.36 {
		t.Errorf("Expected ease factor 2.36, got %v", card.EaseFactor)
	}
	if card.Interval != 6 || card.Repetitions != 2 {
		t.Errorf("Expected (interval 6, reps 2), got (%d, %d)", card.Interval, card.Repetitions)
	}
	if !card.NextReviewDate.Equal(result.NextReviewDate) {
		t.Errorf("Expected next review %s, got %s", result.NextReviewDate, card.NextReviewDate)
	}
}

package srs

import (
	"testing"

	"github.com/kotoba-app/kotoba-api/internal/domain"
)

func TestNewDefaultParams(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	if params.MinEaseFactor != 1.3 {
		t.Errorf("Expected minimum ease factor 1.3, got %v", params.MinEaseFactor)
	}
	if params.MaxEaseFactor != 3.0 {
		t.Errorf("Expected maximum ease factor 3.0, got %v", params.MaxEaseFactor)
	}

	expected := map[domain.ReviewRating]int{
		domain.ReviewRatingAgain: 0,
		domain.ReviewRatingHard:  3,
		domain.ReviewRatingGood:  4,
		domain.ReviewRatingEasy:  5,
	}
	for rating, quality := range expected {
		if params.QualityScores[rating] != quality {
			t.Errorf("Expected quality %d for %s, got %d", quality, rating, params.QualityScores[rating])
		}
	}

	if params.FirstInterval != 1 || params.SecondInterval != 6 {
		t.Errorf("Expected early intervals (1, 6), got (%d, %d)",
			params.FirstInterval, params.SecondInterval)
	}
}

func TestNewParamsOverrides(t *testing.T) {
	t.Parallel()

	params := NewParams(ParamsConfig{
		MaxEaseFactor:  2.8,
		SecondInterval: 4,
	})

	if params.MaxEaseFactor != 2.8 {
		t.Errorf("Expected overridden maximum 2.8, got %v", params.MaxEaseFactor)
	}
	if params.SecondInterval != 4 {
		t.Errorf("Expected overridden second interval 4, got %d", params.SecondInterval)
	}

	// Unconfigured fields keep their defaults
	if params.MinEaseFactor != 1.3 {
		t.Errorf("Expected default minimum 1.3, got %v", params.MinEaseFactor)
	}
	if params.FirstInterval != 1 {
		t.Errorf("Expected default first interval 1, got %d", params.FirstInterval)
	}
}

package srs

import (
	"github.com/kotoba-app/kotoba-api/internal/domain"
)

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Core limits
	MinEaseFactor float64
	MaxEaseFactor float64

	// Quality scores for each review rating, on the classic 0-5 SM-2 scale
	QualityScores map[domain.ReviewRating]int

	// PassingQuality is the lowest score counted as a successful recall
	PassingQuality int

	// Fixed intervals for the first two successful reviews
	FirstInterval  int
	SecondInterval int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	// Core limits
	MinEaseFactor float64
	MaxEaseFactor float64

	// Quality scores
	AgainQuality int
	HardQuality  int
	GoodQuality  int
	EasyQuality  int

	// Fixed early intervals
	FirstInterval  int
	SecondInterval int
}

// NewDefaultParams creates a new Params instance with default values.
//
// The quality mapping follows the classic SM-2 scale: "hard" maps to 3,
// the lowest passing score, and therefore counts as a successful recall.
// This is deliberate; changing it would alter interval growth for cards
// learners already have in rotation.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: domain.MinEaseFactor,
		MaxEaseFactor: domain.MaxEaseFactor,

		QualityScores: map[domain.ReviewRating]int{
			domain.ReviewRatingAgain: 0,
			domain.ReviewRatingHard:  3,
			domain.ReviewRatingGood:  4,
			domain.ReviewRatingEasy:  5,
		},

		PassingQuality: 3,

		FirstInterval:  1,
		SecondInterval: 6,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	// Override core limits if provided
	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.MaxEaseFactor > 0 {
		params.MaxEaseFactor = config.MaxEaseFactor
	}

	// Override quality scores if provided
	if config.AgainQuality > 0 {
		params.QualityScores[domain.ReviewRatingAgain] = config.AgainQuality
	}
	if config.HardQuality > 0 {
		params.QualityScores[domain.ReviewRatingHard] = config.HardQuality
	}
	if config.GoodQuality > 0 {
		params.QualityScores[domain.ReviewRatingGood] = config.GoodQuality
	}
	if config.EasyQuality > 0 {
		params.QualityScores[domain.ReviewRatingEasy] = config.EasyQuality
	}

	// Override early intervals if provided
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}

	return params
}

package srs

import (
	"math"

	"github.com/kotoba-app/kotoba-api/internal/domain"
)

// calculateNewEaseFactor determines the new ease factor after a review.
//
// It applies the classic SM-2 adjustment
//
//	EF' = EF + (0.1 - (5-q)*(0.08 + (5-q)*0.02))
//
// where q is the quality score of the review. A perfect recall (q=5) nudges
// the factor up by 0.1, a passing-but-effortful recall (q=3) pulls it down
// by 0.14, and a failed recall (q=0) drops it by 0.8. The adjustment is
// applied on every review, including failures.
//
// The result is always clamped to [params.MinEaseFactor, params.MaxEaseFactor]
// so a card can never become impossibly hard or grow without bound.
func calculateNewEaseFactor(currentEF float64, quality int, params *Params) float64 {
	q := float64(quality)
	newEF := currentEF + (0.1 - (5-q)*(0.08+(5-q)*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}
	if newEF > params.MaxEaseFactor {
		newEF = params.MaxEaseFactor
	}

	return newEF
}

// calculateNextInterval determines the new interval and repetition count.
//
// Algorithm behavior:
//   - Failed recall (quality below params.PassingQuality): repetitions reset
//     to 0 and the card comes back tomorrow (interval 1). Interval and
//     repetitions only ever move together.
//   - First successful review: fixed interval of params.FirstInterval days.
//   - Second successful review: fixed interval of params.SecondInterval days.
//   - Later successful reviews: the current interval multiplied by the ease
//     factor, rounded half away from zero.
//
// The ease factor used for growth is the card's factor going into the
// review; the post-review adjustment takes effect from the next review on.
func calculateNextInterval(
	currentInterval int,
	repetitions int,
	easeFactor float64,
	quality int,
	params *Params,
) (newInterval, newRepetitions int) {
	if quality < params.PassingQuality {
		return 1, 0
	}

	switch repetitions {
	case 0:
		newInterval = params.FirstInterval
	case 1:
		newInterval = params.SecondInterval
	default:
		newInterval = int(math.Round(float64(currentInterval) * easeFactor))
	}

	if newInterval < 1 {
		newInterval = 1
	}

	return newInterval, repetitions + 1
}

// calculateNextReview runs the full SM-2 step for one card and returns the
// new scheduling fields. It never mutates the card; persisting the result
// is the caller's responsibility.
func calculateNextReview(
	card *domain.Flashcard,
	rating domain.ReviewRating,
	today domain.Date,
	params *Params,
) *ReviewResult {
	quality := params.QualityScores[rating]

	newInterval, newRepetitions := calculateNextInterval(
		card.Interval,
		card.Repetitions,
		card.EaseFactor,
		quality,
		params,
	)

	return &ReviewResult{
		EaseFactor:     calculateNewEaseFactor(card.EaseFactor, quality, params),
		Interval:       newInterval,
		Repetitions:    newRepetitions,
		NextReviewDate: today.AddDays(newInterval),
	}
}

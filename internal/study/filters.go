package study

import (
	"github.com/kotoba-app/kotoba-api/internal/domain"
)

// FilterAll is the wildcard value matching every card in a filter dimension.
// An empty filter value is treated the same way.
const FilterAll = "all"

// Filters narrows the due-set. Active filters compose with logical AND: a
// card must satisfy every non-wildcard dimension to be selected.
type Filters struct {
	JLPTLevel          string `json:"jlpt_level"`
	MemorizationStatus string `json:"memorization_status"`
	DifficultyLevel    string `json:"difficulty_level"`
}

// active reports whether a single filter value constrains anything.
func active(value string) bool {
	return value != "" && value != FilterAll
}

// Matches reports whether the card satisfies every active filter.
func (f Filters) Matches(card *domain.Flashcard) bool {
	if active(f.JLPTLevel) && !card.HasJLPTLevel(f.JLPTLevel) {
		return false
	}
	if active(f.MemorizationStatus) && card.MemorizationStatus != domain.MemorizationStatus(f.MemorizationStatus) {
		return false
	}
	if active(f.DifficultyLevel) && card.DifficultyLevel != domain.DifficultyLevel(f.DifficultyLevel) {
		return false
	}
	return true
}

// DueCards selects the cards due for review on the given date that satisfy
// every active filter. A card with zero repetitions is new and due by
// definition. Input order is preserved; any further ordering (shuffle) is
// imposed by the session.
func DueCards(cards []*domain.Flashcard, filters Filters, today domain.Date) []*domain.Flashcard {
	due := make([]*domain.Flashcard, 0, len(cards))
	for _, card := range cards {
		if card.IsDue(today) && filters.Matches(card) {
			due = append(due, card)
		}
	}
	return due
}

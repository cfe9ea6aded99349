package store

import (
	"context"

	"github.com/kotoba-app/kotoba-api/internal/domain"
)

// DailyWordsKey is the fixed storage key under which the daily-words
// progress record is persisted.
const DailyWordsKey = "daily_words"

// ProgressStore defines the interface for daily-words progress persistence.
// It is a plain key-value contract: one JSON-serializable state blob under
// a fixed key.
type ProgressStore interface {
	// Load retrieves the persisted progress state.
	// Returns ErrProgressNotFound if nothing has been saved yet; callers
	// treat that (and corrupt stored state) as a cold start.
	Load(ctx context.Context) (*domain.DailyWordsState, error)

	// Save persists the progress state, replacing any previous record.
	Save(ctx context.Context, state *domain.DailyWordsState) error
}

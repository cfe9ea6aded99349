package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kotoba-app/kotoba-api/internal/domain"
	"github.com/kotoba-app/kotoba-api/internal/store"
)

// ProgressStore is an in-memory store.ProgressStore. State round-trips
// through JSON on every call so it exercises the same serialization the
// durable adapter uses, including legacy-record tolerance.
type ProgressStore struct {
	mu   sync.RWMutex
	blob []byte
}

// NewProgressStore creates an empty in-memory progress store.
func NewProgressStore() *ProgressStore {
	return &ProgressStore{}
}

// Ensure ProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*ProgressStore)(nil)

// Load implements store.ProgressStore.Load
func (s *ProgressStore) Load(_ context.Context) (*domain.DailyWordsState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.blob == nil {
		return nil, store.ErrProgressNotFound
	}

	var state domain.DailyWordsState
	if err := json.Unmarshal(s.blob, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrProgressCorrupt, err)
	}
	state.Normalize()
	return &state, nil
}

// Save implements store.ProgressStore.Save
func (s *ProgressStore) Save(_ context.Context, state *domain.DailyWordsState) error {
	if state == nil {
		return fmt.Errorf("%w: state cannot be nil", store.ErrInvalidEntity)
	}

	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: failed to encode state: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = blob
	return nil
}

// Corrupt overwrites the stored blob with bytes that do not decode. Test
// hook for the tracker's cold-start path.
func (s *ProgressStore) Corrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = []byte("{not json")
}

// Package memory provides in-process implementations of the store
// interfaces. They back the engine in tests and in deployments that do not
// need durable storage.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/kotoba-app/kotoba-api/internal/domain"
	"github.com/kotoba-app/kotoba-api/internal/store"
)

// CardStore is a map-backed store.CardStore. Insertion order is preserved
// so List returns cards oldest first, matching the PostgreSQL adapter.
type CardStore struct {
	mu    sync.RWMutex
	cards map[uuid.UUID]*domain.Flashcard
	order []uuid.UUID
}

// NewCardStore creates an empty in-memory card store.
func NewCardStore() *CardStore {
	return &CardStore{
		cards: make(map[uuid.UUID]*domain.Flashcard),
	}
}

// Ensure CardStore implements store.CardStore interface
var _ store.CardStore = (*CardStore)(nil)

// Create implements store.CardStore.Create
func (s *CardStore) Create(_ context.Context, card *domain.Flashcard) error {
	if card == nil {
		return fmt.Errorf("%w: card cannot be nil", store.ErrInvalidEntity)
	}
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cards[card.ID]; exists {
		return store.ErrDuplicate
	}
	s.cards[card.ID] = card.Clone()
	s.order = append(s.order, card.ID)
	return nil
}

// CreateBatch implements store.CardStore.CreateBatch
// All cards are validated and checked for duplicates before any state
// changes, so a failing card leaves the store untouched.
func (s *CardStore) CreateBatch(_ context.Context, cards []*domain.Flashcard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[uuid.UUID]struct{}, len(cards))
	for _, card := range cards {
		if card == nil {
			return fmt.Errorf("%w: card cannot be nil", store.ErrInvalidEntity)
		}
		if err := card.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		if _, exists := s.cards[card.ID]; exists {
			return store.ErrDuplicate
		}
		if _, dup := seen[card.ID]; dup {
			return store.ErrDuplicate
		}
		seen[card.ID] = struct{}{}
	}

	for _, card := range cards {
		s.cards[card.ID] = card.Clone()
		s.order = append(s.order, card.ID)
	}
	return nil
}

// GetByID implements store.CardStore.GetByID
func (s *CardStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, ok := s.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return card.Clone(), nil
}

// List implements store.CardStore.List
func (s *CardStore) List(_ context.Context) ([]*domain.Flashcard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cards := make([]*domain.Flashcard, 0, len(s.order))
	for _, id := range s.order {
		cards = append(cards, s.cards[id].Clone())
	}
	return cards, nil
}

// Update implements store.CardStore.Update
func (s *CardStore) Update(_ context.Context, id uuid.UUID, patch domain.CardPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[id]
	if !ok {
		return store.ErrCardNotFound
	}
	patch.Apply(card)
	return nil
}

// Delete implements store.CardStore.Delete
func (s *CardStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[id]; !ok {
		return store.ErrCardNotFound
	}
	delete(s.cards, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = append(s.order[:i], s.order[i+1:]...)
	}
	return nil
}

// WithTx implements store.CardStore.WithTx
// The in-memory store has no transactions; it returns itself.
func (s *CardStore) WithTx(_ *sql.Tx) store.CardStore {
	return s
}

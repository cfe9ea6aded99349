package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kotoba-app/kotoba-api/internal/domain"
	"github.com/kotoba-app/kotoba-api/internal/domain/srs"
	"github.com/kotoba-app/kotoba-api/internal/store"
)

// ErrSessionNotFound indicates no active session exists for the given ID.
var ErrSessionNotFound = errors.New("study session not found")

// Manager owns the registry of active study sessions. Sessions are
// ephemeral server-side state: they are created from the current due-set,
// addressed by ID, and dropped when the learner finishes or abandons them.
// Manager is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	cardStore store.CardStore
	srs       srs.Service
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// NewManager creates a session manager backed by the given card store.
func NewManager(cardStore store.CardStore, srsService srs.Service, opts Options, logger *slog.Logger) *Manager {
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Manager{
		sessions:  make(map[uuid.UUID]*Session),
		cardStore: cardStore,
		srs:       srsService,
		opts:      opts,
		logger:    logger.With(slog.String("component", "study_manager")),
		now:       now,
	}
}

// Create builds the due-set from the full collection under the given
// filters and starts a new session over it. An empty due-set still yields a
// session; its operations are no-ops and its snapshot renders empty.
func (m *Manager) Create(ctx context.Context, filters Filters) (*Session, error) {
	cards, err := m.cardStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	today := domain.DateOf(m.now())
	due := DueCards(cards, filters, today)

	session := NewSession(due, m.cardStore, m.srs, m.opts, m.logger)
	session.Start()

	m.mu.Lock()
	m.sessions[session.ID()] = session
	m.mu.Unlock()

	m.logger.Debug("study session created",
		slog.String("session_id", session.ID().String()),
		slog.Int("due_cards", len(due)),
		slog.Int("total_cards", len(cards)))

	return session, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Remove drops the session with the given ID. Removing an unknown ID is a
// no-op.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

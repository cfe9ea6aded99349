package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kotoba-app/kotoba-api/internal/domain"
	"github.com/kotoba-app/kotoba-api/internal/domain/srs"
)

// CardMutator is the engine's write port to the card collection. Any
// store.CardStore satisfies it. Writes are best-effort mirrors of the
// session's in-memory state; a failed write is reported but does not roll
// the in-memory mutation back.
type CardMutator interface {
	Update(ctx context.Context, id uuid.UUID, patch domain.CardPatch) error
}

// State identifies where a session is in its lifecycle.
type State string

const (
	// StateSelectingScope is the pre-session phase: the learner has not yet
	// narrowed the collection, so no session object exists. It appears in
	// API responses when a session is requested before creation.
	StateSelectingScope State = "selecting-scope"

	// StateStudying is an active traversal of the due-set.
	StateStudying State = "studying"

	// StateComplete is reached by advancing past the last card. It is
	// re-enterable: Start returns the session to StateStudying.
	StateComplete State = "complete"
)

// DefaultClicksToAdvance is the flip-count threshold for auto-advance.
const DefaultClicksToAdvance = 3

// Stats aggregates per-session study counters.
//
// CardsStudied increments on every status change, not once per card:
// repeatedly rating the same card without navigating double-counts. That is
// a quirk the UI is expected to avoid triggering, not an invariant the
// engine guards.
type Stats struct {
	TotalCards   int `json:"total_cards"`
	CardsStudied int `json:"cards_studied"`
	CorrectCount int `json:"correct_count"`
	AgainCount   int `json:"again_count"`
}

// Options configures session behavior.
type Options struct {
	// AutoAdvance enables click-counted advancing on Flip.
	AutoAdvance bool

	// ClicksToAdvance is the flip count at which an auto-advance fires.
	// Zero means DefaultClicksToAdvance.
	ClicksToAdvance int

	// Rand is the shuffle source. Nil means a time-seeded source.
	Rand *rand.Rand

	// Now reports the current time. Nil means time.Now. Injected by tests
	// that need a fixed calendar date for scheduling.
	Now func() time.Time
}

// Session is the study session state machine. It owns the traversal of one
// due-set: current position, flip state, shuffle order, click counting, and
// completion. All methods are safe for concurrent use.
//
// Every operation is a silent no-op when the due-set is empty or there is
// no current card; callers render an empty state instead of handling errors.
type Session struct {
	mu sync.Mutex

	id      uuid.UUID
	cards   []*domain.Flashcard
	mutator CardMutator
	srs     srs.Service
	logger  *slog.Logger

	autoAdvance     bool
	clicksToAdvance int
	rng             *rand.Rand
	now             func() time.Time

	currentIndex  int
	isFlipped     bool
	isShuffled    bool
	shuffledOrder []uuid.UUID
	clickCount    int
	stats         Stats
	complete      bool
}

// NewSession creates a session over an already-selected due-set. The slice
// is owned by the session after the call; cards themselves are shared with
// the caller since mutations must be visible to the surrounding collection.
func NewSession(
	cards []*domain.Flashcard,
	mutator CardMutator,
	srsService srs.Service,
	opts Options,
	logger *slog.Logger,
) *Session {
	if mutator == nil {
		panic("mutator cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	clicks := opts.ClicksToAdvance
	if clicks <= 0 {
		clicks = DefaultClicksToAdvance
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Session{
		id:              uuid.New(),
		cards:           cards,
		mutator:         mutator,
		srs:             srsService,
		logger:          logger.With(slog.String("component", "study_session")),
		autoAdvance:     opts.AutoAdvance,
		clicksToAdvance: clicks,
		rng:             rng,
		now:             now,
	}
	s.stats.TotalCards = len(cards)
	return s
}

// ID returns the session's identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Start resets the session to the beginning of the due-set: position,
// flip state, and click count are cleared, completion is un-set, and the
// stats total is recomputed from the current due-set size.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentIndex = 0
	s.isFlipped = false
	s.clickCount = 0
	s.complete = false
	s.stats.TotalCards = len(s.cards)
}

// order returns the active traversal order: shuffled when a shuffle is in
// effect, natural otherwise. Caller must hold s.mu.
func (s *Session) order() []*domain.Flashcard {
	if !s.isShuffled {
		return s.cards
	}
	byID := make(map[uuid.UUID]*domain.Flashcard, len(s.cards))
	for _, card := range s.cards {
		byID[card.ID] = card
	}
	ordered := make([]*domain.Flashcard, 0, len(s.shuffledOrder))
	for _, id := range s.shuffledOrder {
		if card, ok := byID[id]; ok {
			ordered = append(ordered, card)
		}
	}
	return ordered
}

// current returns the card at the current position, or nil when the due-set
// is empty or the index is out of range. Caller must hold s.mu.
func (s *Session) current() *domain.Flashcard {
	ordered := s.order()
	if s.currentIndex < 0 || s.currentIndex >= len(ordered) {
		return nil
	}
	return ordered[s.currentIndex]
}

// CurrentCard returns the card at the current position, or nil when the
// due-set is empty.
func (s *Session) CurrentCard() *domain.Flashcard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

// Flip toggles the card face. With auto-advance enabled, the flip that
// reaches the click threshold is discarded and the session advances to the
// next card instead.
func (s *Session) Flip() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current() == nil || s.complete {
		return
	}

	s.clickCount++
	if s.autoAdvance && s.clickCount >= s.clicksToAdvance {
		s.advance()
		return
	}
	s.isFlipped = !s.isFlipped
}

// advance moves to the next card, or completes the session when already on
// the last one. Flip state and click count reset either way. Caller must
// hold s.mu.
func (s *Session) advance() {
	s.isFlipped = false
	s.clickCount = 0

	if s.currentIndex >= len(s.order())-1 {
		s.complete = true
		return
	}
	s.currentIndex++
}

// Next moves forward one card. Manual navigation does not wrap and does not
// complete the session: at the last card it is a no-op.
func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current() == nil || s.complete || s.currentIndex >= len(s.order())-1 {
		return
	}
	s.currentIndex++
	s.isFlipped = false
	s.clickCount = 0
}

// Prev moves back one card. No-op at the first card.
func (s *Session) Prev() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current() == nil || s.complete || s.currentIndex <= 0 {
		return
	}
	s.currentIndex--
	s.isFlipped = false
	s.clickCount = 0
}

// SetMemorizationStatus records the learner's judgment of the current card
// and mirrors it through the mutator. Stats update on every call.
func (s *Session) SetMemorizationStatus(ctx context.Context, status domain.MemorizationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card := s.current()
	if card == nil || s.complete {
		return nil
	}
	if !status.IsValid() {
		return domain.ErrInvalidMemorizationStatus
	}

	card.MemorizationStatus = status
	s.stats.CardsStudied++
	switch status {
	case domain.MemorizationStatusMemorized:
		s.stats.CorrectCount++
	case domain.MemorizationStatusNotMemorized:
		s.stats.AgainCount++
	}

	patch := domain.CardPatch{MemorizationStatus: &status}
	if err := s.mutator.Update(ctx, card.ID, patch); err != nil {
		s.logger.Warn("failed to persist memorization status",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to persist memorization status: %w", err)
	}
	return nil
}

// SetDifficultyLevel records a difficulty override for the current card.
// The first override snapshots the pre-change value into
// OriginalDifficultyLevel so ResetAll can restore the author-set baseline;
// later overrides leave the snapshot alone.
func (s *Session) SetDifficultyLevel(ctx context.Context, level domain.DifficultyLevel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card := s.current()
	if card == nil || s.complete {
		return nil
	}
	if !level.IsValid() {
		return domain.ErrInvalidDifficultyLevel
	}

	patch := domain.CardPatch{DifficultyLevel: &level}
	if card.OriginalDifficultyLevel == domain.DifficultyLevelUnset &&
		card.DifficultyLevel != domain.DifficultyLevelUnset {
		original := card.DifficultyLevel
		patch.OriginalDifficultyLevel = &original
		card.OriginalDifficultyLevel = original
	}
	card.DifficultyLevel = level

	if err := s.mutator.Update(ctx, card.ID, patch); err != nil {
		s.logger.Warn("failed to persist difficulty level",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to persist difficulty level: %w", err)
	}
	return nil
}

// Rate runs the current card through the SM-2 scheduler, mirrors the new
// schedule through the mutator, and advances to the next card.
func (s *Session) Rate(ctx context.Context, rating domain.ReviewRating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card := s.current()
	if card == nil || s.complete {
		return nil
	}

	today := domain.DateOf(s.now())
	result, err := s.srs.CalculateNextReview(card, rating, today)
	if err != nil {
		return err
	}

	result.Patch().Apply(card)
	s.stats.CardsStudied++
	if rating == domain.ReviewRatingAgain {
		s.stats.AgainCount++
	} else {
		s.stats.CorrectCount++
	}

	if err := s.mutator.Update(ctx, card.ID, result.Patch()); err != nil {
		s.logger.Warn("failed to persist review result",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		s.advance()
		return fmt.Errorf("failed to persist review result: %w", err)
	}

	s.advance()
	return nil
}

// Shuffle generates a new random traversal order over the due-set and
// resets position, flip state, and click count.
func (s *Session) Shuffle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cards) == 0 {
		return
	}

	ids := make([]uuid.UUID, len(s.cards))
	for i, card := range s.cards {
		ids[i] = card.ID
	}
	// Fisher-Yates
	for i := len(ids) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}

	s.shuffledOrder = ids
	s.isShuffled = true
	s.currentIndex = 0
	s.isFlipped = false
	s.clickCount = 0
	s.complete = false
}

// ResetOrder reverts to the natural (unshuffled) order and resets position,
// flip state, and click count.
func (s *Session) ResetOrder() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shuffledOrder = nil
	s.isShuffled = false
	s.currentIndex = 0
	s.isFlipped = false
	s.clickCount = 0
	s.complete = false
}

// ResetAll clears the traversal state and walks every card in the due-set,
// restoring memorization status to unset and difficulty to the author-set
// baseline. The walk is a sequence of independent writes, not a
// transaction: a failed card is recorded and the walk continues, so a
// partial reset leaves the successfully reset cards reset. The joined
// per-card errors are returned for the caller to report or retry.
func (s *Session) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shuffledOrder = nil
	s.isShuffled = false
	s.currentIndex = 0
	s.isFlipped = false
	s.clickCount = 0
	s.complete = false
	s.stats = Stats{TotalCards: len(s.cards)}

	var errs []error
	for _, card := range s.cards {
		original := card.OriginalDifficultyLevel
		if original == "" {
			original = domain.DifficultyLevelUnset
		}
		if card.MemorizationStatus == domain.MemorizationStatusUnset &&
			card.DifficultyLevel == original {
			continue
		}

		unset := domain.MemorizationStatusUnset
		restored := original
		patch := domain.CardPatch{
			MemorizationStatus: &unset,
			DifficultyLevel:    &restored,
		}

		card.MemorizationStatus = unset
		card.DifficultyLevel = restored

		if err := s.mutator.Update(ctx, card.ID, patch); err != nil {
			s.logger.Warn("failed to reset card",
				slog.String("card_id", card.ID.String()),
				slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("card %s: %w", card.ID, err))
		}
	}
	return errors.Join(errs...)
}

// State returns the session's lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.complete {
		return StateComplete
	}
	return StateStudying
}

// Snapshot is a read-only view of the session for rendering.
type Snapshot struct {
	ID            uuid.UUID         `json:"id"`
	State         State             `json:"state"`
	CurrentIndex  int               `json:"current_index"`
	IsFlipped     bool              `json:"is_flipped"`
	IsShuffled    bool              `json:"is_shuffled"`
	ClickCount    int               `json:"click_count"`
	Stats         Stats             `json:"stats"`
	IsComplete    bool              `json:"is_complete"`
	CurrentCard   *domain.Flashcard `json:"current_card,omitempty"`
}

// Snapshot returns a consistent view of the session's current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := StateStudying
	if s.complete {
		state = StateComplete
	}

	var current *domain.Flashcard
	if card := s.current(); card != nil {
		current = card.Clone()
	}

	return Snapshot{
		ID:           s.id,
		State:        state,
		CurrentIndex: s.currentIndex,
		IsFlipped:    s.isFlipped,
		IsShuffled:   s.isShuffled,
		ClickCount:   s.clickCount,
		Stats:        s.stats,
		IsComplete:   s.complete,
		CurrentCard:  current,
	}
}

package daily

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kotoba-app/kotoba-api/internal/domain"
	"github.com/kotoba-app/kotoba-api/internal/store"
)

// Options configures tracker behavior.
type Options struct {
	// TargetWords is the default daily quota for newly created sessions.
	// Zero means domain.DefaultDailyTarget. Must be one of
	// domain.ValidDailyTargets otherwise.
	TargetWords int

	// HistoryLimit caps the retained past sessions. Zero means
	// domain.DailyHistoryLimit.
	HistoryLimit int

	// Rand is the word-selection source. Nil means a time-seeded source.
	Rand *rand.Rand

	// Now reports the current time. Nil means time.Now.
	Now func() time.Time
}

// Tracker maintains the daily-words state: today's quota session, the
// session history, and the streak counters. It is safe for concurrent use.
//
// Every mutating operation first ensures the state is rolled over to the
// current calendar day, applies its change, and then persists the whole
// state through the progress store. The in-memory state is authoritative;
// a failed save is returned to the caller but does not roll the state back.
type Tracker struct {
	mu sync.Mutex

	state    *domain.DailyWordsState
	cards    store.CardStore
	progress store.ProgressStore
	logger   *slog.Logger

	target       int
	historyLimit int
	rng          *rand.Rand
	now          func() time.Time
}

// NewTracker creates a tracker over the given stores. Call Init before any
// other method to load persisted state and roll it to today.
func NewTracker(cards store.CardStore, progress store.ProgressStore, opts Options, logger *slog.Logger) *Tracker {
	if cards == nil {
		panic("cards cannot be nil")
	}
	if progress == nil {
		panic("progress cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	target := opts.TargetWords
	if target == 0 {
		target = domain.DefaultDailyTarget
	}
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = domain.DailyHistoryLimit
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Tracker{
		state:        domain.NewDailyWordsState(),
		cards:        cards,
		progress:     progress,
		logger:       logger.With(slog.String("component", "daily_tracker")),
		target:       target,
		historyLimit: limit,
		rng:          rng,
		now:          now,
	}
}

// Init loads persisted progress and rolls it over to today. A missing or
// corrupt record is a cold start, not a failure; any other store error is
// returned as-is.
func (t *Tracker) Init(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	state, err := t.progress.Load(ctx)
	switch {
	case err == nil:
		state.Normalize()
		t.state = state
	case errors.Is(err, store.ErrProgressNotFound):
		t.state = domain.NewDailyWordsState()
	case errors.Is(err, store.ErrProgressCorrupt):
		t.logger.Warn("persisted daily progress is corrupt, starting fresh",
			slog.String("error", err.Error()))
		t.state = domain.NewDailyWordsState()
	default:
		return fmt.Errorf("failed to load daily progress: %w", err)
	}

	if _, err := t.ensureToday(ctx); err != nil {
		return err
	}
	return t.save(ctx)
}

// State returns a deep copy of the tracker's state, rolled over to today.
// A rollover observed here is persisted immediately; today's word sample
// must survive a restart even when the read is the only interaction.
func (t *Tracker) State(ctx context.Context) (*domain.DailyWordsState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rolled, err := t.ensureToday(ctx)
	if err != nil {
		return nil, err
	}
	if rolled {
		if err := t.save(ctx); err != nil {
			return nil, err
		}
	}
	return t.state.Clone(), nil
}

// MarkWordLearned records one word of today's quota as learned. Unknown
// IDs, already-learned IDs, and calls after completion are silent no-ops.
// Reaching the quota completes the session and updates the streak.
func (t *Tracker) MarkWordLearned(ctx context.Context, id uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.ensureToday(ctx); err != nil {
		return err
	}

	sess := t.state.CurrentSession
	if sess.IsCompleted || !sess.HasWord(id) || sess.HasLearned(id) {
		return nil
	}

	sess.LearnedWordIDs = append(sess.LearnedWordIDs, id)
	sess.CompletedWords = len(sess.LearnedWordIDs)
	if sess.CompletedWords >= sess.TargetWords {
		t.complete(sess)
	}

	return t.save(ctx)
}

// MarkAllLearned force-completes today's quota in one step. Idempotent on
// an already-completed session.
func (t *Tracker) MarkAllLearned(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.ensureToday(ctx); err != nil {
		return err
	}

	sess := t.state.CurrentSession
	if sess.IsCompleted {
		return nil
	}

	sess.LearnedWordIDs = slices.Clone(sess.WordIDs)
	sess.CompletedWords = len(sess.LearnedWordIDs)
	t.complete(sess)

	return t.save(ctx)
}

// RefreshWords resamples today's word subset and clears the learned set,
// restarting today's quota. Streak history is untouched.
func (t *Tracker) RefreshWords(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.ensureToday(ctx); err != nil {
		return err
	}

	sess := t.state.CurrentSession
	words, err := t.selectWords(ctx, sess.TargetWords)
	if err != nil {
		return err
	}

	sess.WordIDs = words
	sess.LearnedWordIDs = []uuid.UUID{}
	sess.CompletedWords = 0

	return t.save(ctx)
}

// SetTarget changes the daily quota size. Today's session is resampled at
// the new size with progress cleared, the same as RefreshWords; sessions
// created on later days inherit the new target.
func (t *Tracker) SetTarget(ctx context.Context, target int) error {
	if !slices.Contains(domain.ValidDailyTargets, target) {
		return domain.ErrInvalidDailyTarget
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.ensureToday(ctx); err != nil {
		return err
	}

	t.target = target
	sess := t.state.CurrentSession
	words, err := t.selectWords(ctx, target)
	if err != nil {
		return err
	}

	sess.TargetWords = target
	sess.WordIDs = words
	sess.LearnedWordIDs = []uuid.UUID{}
	sess.CompletedWords = 0

	return t.save(ctx)
}

// DismissNotification records that the learner dismissed today's reminder.
func (t *Tracker) DismissNotification(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.ensureToday(ctx); err != nil {
		return err
	}

	t.state.NotificationDismissedDate = domain.DateOf(t.now())
	return t.save(ctx)
}

// ensureToday rolls the state over to the current calendar day: an existing
// session for a past day is archived into history and a fresh session is
// sampled for today. The streak is recomputed after every rollover so a
// missed day is reflected immediately. Reports whether a rollover occurred,
// so read-path callers know the new state needs saving. Caller must hold
// t.mu.
func (t *Tracker) ensureToday(ctx context.Context) (bool, error) {
	today := domain.DateOf(t.now())

	sess := t.state.CurrentSession
	if sess != nil && sess.Date.Equal(today) {
		return false, nil
	}

	if sess != nil {
		t.state.History = append(t.state.History, *sess.Clone())
		if over := len(t.state.History) - t.historyLimit; over > 0 {
			t.state.History = t.state.History[over:]
		}
	}

	target := t.target
	if sess != nil {
		target = sess.TargetWords
	}
	words, err := t.selectWords(ctx, target)
	if err != nil {
		return false, err
	}

	fresh, err := domain.NewDailyWordsSession(today, target, words)
	if err != nil {
		return false, err
	}
	t.state.CurrentSession = fresh

	t.state.Streak = ComputeStreak(t.state.History, t.state.CurrentSession, today)
	if t.state.Streak > t.state.LongestStreak {
		t.state.LongestStreak = t.state.Streak
	}

	t.logger.Debug("daily session rolled over",
		slog.String("date", today.String()),
		slog.Int("target", target),
		slog.Int("words", len(words)),
		slog.Int("streak", t.state.Streak))

	return true, nil
}

// selectWords samples up to target card IDs for a day's quota. Cards not
// yet memorized are preferred; if fewer than target exist, the full
// collection is the pool. Fewer cards than target yields a short day.
// Caller must hold t.mu.
func (t *Tracker) selectWords(ctx context.Context, target int) ([]uuid.UUID, error) {
	cards, err := t.cards.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	pool := make([]uuid.UUID, 0, len(cards))
	for _, card := range cards {
		if card.MemorizationStatus != domain.MemorizationStatusMemorized {
			pool = append(pool, card.ID)
		}
	}
	if len(pool) < target {
		pool = pool[:0]
		for _, card := range cards {
			pool = append(pool, card.ID)
		}
	}

	// Fisher-Yates
	for i := len(pool) - 1; i > 0; i-- {
		j := t.rng.Intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
	if len(pool) > target {
		pool = pool[:target]
	}
	return pool, nil
}

// complete marks the session completed and refreshes the streak counters.
// Caller must hold t.mu.
func (t *Tracker) complete(sess *domain.DailyWordsSession) {
	sess.IsCompleted = true
	sess.CompletedAt = t.now().UTC()

	t.state.Streak = ComputeStreak(t.state.History, sess, domain.DateOf(t.now()))
	if t.state.Streak > t.state.LongestStreak {
		t.state.LongestStreak = t.state.Streak
	}
}

// save persists the whole state. Caller must hold t.mu.
func (t *Tracker) save(ctx context.Context) error {
	if err := t.progress.Save(ctx, t.state); err != nil {
		t.logger.Warn("failed to persist daily progress",
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to persist daily progress: %w", err)
	}
	return nil
}

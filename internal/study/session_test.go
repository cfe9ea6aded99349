package study

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kotoba-app/kotoba-api/internal/domain"
	"github.com/kotoba-app/kotoba-api/internal/domain/srs"
)

// recordingMutator captures every patch pushed through the write port.
type recordingMutator struct {
	mu      sync.Mutex
	patches []domain.CardPatch
	ids     []uuid.UUID
	err     error
}

func (m *recordingMutator) Update(_ context.Context, id uuid.UUID, patch domain.CardPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.ids = append(m.ids, id)
	m.patches = append(m.patches, patch)
	return nil
}

func (m *recordingMutator) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.patches)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedNow(t *testing.T, s string) func() time.Time {
	t.Helper()
	d := mustDate(t, s)
	return func() time.Time { return d.Time() }
}

func newTestSession(t *testing.T, n int, opts Options) (*Session, *recordingMutator) {
	t.Helper()
	cards := make([]*domain.Flashcard, n)
	for i := range cards {
		cards[i] = newTestCard(t, string(rune('a'+i)), []string{"N5"})
	}
	mutator := &recordingMutator{}
	if opts.Now == nil {
		opts.Now = fixedNow(t, "2025-06-15")
	}
	s := NewSession(cards, mutator, srs.NewDefaultService(), opts, testLogger())
	s.Start()
	return s, mutator
}

func TestSessionNavigation(t *testing.T) {
	t.Parallel()

	t.Run("next and prev move within bounds", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSession(t, 3, Options{})

		s.Next()
		if snap := s.Snapshot(); snap.CurrentIndex != 1 {
			t.Errorf("after Next, index = %d, want 1", snap.CurrentIndex)
		}

		s.Prev()
		if snap := s.Snapshot(); snap.CurrentIndex != 0 {
			t.Errorf("after Prev, index = %d, want 0", snap.CurrentIndex)
		}
	})

	t.Run("prev at first card is a no-op", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSession(t, 3, Options{})

		s.Prev()
		if snap := s.Snapshot(); snap.CurrentIndex != 0 {
			t.Errorf("index = %d, want 0", snap.CurrentIndex)
		}
	})

	t.Run("next at last card does not complete", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSession(t, 2, Options{})

		s.Next()
		s.Next()
		snap := s.Snapshot()
		if snap.CurrentIndex != 1 {
			t.Errorf("index = %d, want 1", snap.CurrentIndex)
		}
		if snap.IsComplete {
			t.Error("manual navigation must not complete the session")
		}
	})

	t.Run("navigation resets flip state", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSession(t, 3, Options{})

		s.Flip()
		if !s.Snapshot().IsFlipped {
			t.Fatal("expected flipped after Flip")
		}
		s.Next()
		if s.Snapshot().IsFlipped {
			t.Error("Next must reset flip state")
		}
	})
}

func TestSessionFlip(t *testing.T) {
	t.Parallel()

	t.Run("toggles face", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSession(t, 1, Options{})

		s.Flip()
		if !s.Snapshot().IsFlipped {
			t.Error("expected flipped")
		}
		s.Flip()
		if s.Snapshot().IsFlipped {
			t.Error("expected unflipped after second Flip")
		}
	})

	t.Run("auto-advance fires at threshold and discards the flip", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSession(t, 2, Options{AutoAdvance: true, ClicksToAdvance: 3})

		s.Flip()
		s.Flip()
		snap := s.Snapshot()
		if snap.ClickCount != 2 || snap.CurrentIndex != 0 {
			t.Fatalf("before threshold: clicks=%d index=%d", snap.ClickCount, snap.CurrentIndex)
		}

		s.Flip()
		snap = s.Snapshot()
		if snap.CurrentIndex != 1 {
			t.Errorf("index = %d, want 1 after auto-advance", snap.CurrentIndex)
		}
		if snap.IsFlipped {
			t.Error("the advancing flip must be discarded, not applied")
		}
		if snap.ClickCount != 0 {
			t.Errorf("click count = %d, want 0 after advance", snap.ClickCount)
		}
	})

	t.Run("auto-advance past last card completes the session", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSession(t, 1, Options{AutoAdvance: true, ClicksToAdvance: 2})

		s.Flip()
		s.Flip()
		snap := s.Snapshot()
		if !snap.IsComplete {
			t.Error("expected session complete")
		}
		if snap.CurrentIndex != 0 {
			t.Errorf("index = %d, want 0 (no increment past the end)", snap.CurrentIndex)
		}
		if snap.State != StateComplete {
			t.Errorf("state = %q, want %q", snap.State, StateComplete)
		}
	})

	t.Run("disabled auto-advance never advances", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSession(t, 2, Options{AutoAdvance: false, ClicksToAdvance: 2})

		for i := 0; i < 10; i++ {
			s.Flip()
		}
		if snap := s.Snapshot(); snap.CurrentIndex != 0 {
			t.Errorf("index = %d, want 0", snap.CurrentIndex)
		}
	})
}

func TestSessionEmptyDueSet(t *testing.T) {
	t.Parallel()

	s, mutator := newTestSession(t, 0, Options{})
	ctx := context.Background()

	s.Flip()
	s.Next()
	s.Prev()
	s.Shuffle()
	if err := s.SetMemorizationStatus(ctx, domain.MemorizationStatusMemorized); err != nil {
		t.Errorf("SetMemorizationStatus on empty set: %v", err)
	}
	if err := s.Rate(ctx, domain.ReviewRatingGood); err != nil {
		t.Errorf("Rate on empty set: %v", err)
	}

	snap := s.Snapshot()
	if snap.CurrentIndex != 0 || snap.IsFlipped || snap.IsComplete {
		t.Errorf("empty session mutated: %+v", snap)
	}
	if snap.CurrentCard != nil {
		t.Error("expected nil current card")
	}
	if mutator.count() != 0 {
		t.Errorf("expected no writes, got %d", mutator.count())
	}
}

func TestSessionMemorizationStatus(t *testing.T) {
	t.Parallel()

	t.Run("updates card and stats and mirrors the write", func(t *testing.T) {
		t.Parallel()
		s, mutator := newTestSession(t, 2, Options{})
		ctx := context.Background()

		if err := s.SetMemorizationStatus(ctx, domain.MemorizationStatusMemorized); err != nil {
			t.Fatalf("SetMemorizationStatus: %v", err)
		}

		card := s.CurrentCard()
		if card.MemorizationStatus != domain.MemorizationStatusMemorized {
			t.Errorf("card status = %q", card.MemorizationStatus)
		}

		snap := s.Snapshot()
		if snap.Stats.CardsStudied != 1 || snap.Stats.CorrectCount != 1 {
			t.Errorf("stats = %+v", snap.Stats)
		}

		if mutator.count() != 1 {
			t.Fatalf("expected 1 write, got %d", mutator.count())
		}
		if got := mutator.patches[0].MemorizationStatus; got == nil || *got != domain.MemorizationStatusMemorized {
			t.Error("patch missing memorization status")
		}
	})

	t.Run("not memorized counts as again", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSession(t, 2, Options{})

		if err := s.SetMemorizationStatus(context.Background(), domain.MemorizationStatusNotMemorized); err != nil {
			t.Fatalf("SetMemorizationStatus: %v", err)
		}
		snap := s.Snapshot()
		if snap.Stats.AgainCount != 1 || snap.Stats.CorrectCount != 0 {
			t.Errorf("stats = %+v", snap.Stats)
		}
	})

	t.Run("repeated marks double-count", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSession(t, 1, Options{})
		ctx := context.Background()

		_ = s.SetMemorizationStatus(ctx, domain.MemorizationStatusMemorized)
		_ = s.SetMemorizationStatus(ctx, domain.MemorizationStatusMemorized)
		if snap := s.Snapshot(); snap.Stats.CardsStudied != 2 {
			t.Errorf("CardsStudied = %d, want 2", snap.Stats.CardsStudied)
		}
	})

	t.Run("write failure keeps in-memory change and returns the error", func(t *testing.T) {
		t.Parallel()
		s, mutator := newTestSession(t, 1, Options{})
		mutator.err = errors.New("db down")

		err := s.SetMemorizationStatus(context.Background(), domain.MemorizationStatusMemorized)
		if err == nil {
			t.Fatal("expected error")
		}
		if s.CurrentCard().MemorizationStatus != domain.MemorizationStatusMemorized {
			t.Error("in-memory change must survive the failed write")
		}
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSession(t, 1, Options{})

		err := s.SetMemorizationStatus(context.Background(), domain.MemorizationStatus("bogus"))
		if !errors.Is(err, domain.ErrInvalidMemorizationStatus) {
			t.Errorf("expected ErrInvalidMemorizationStatus, got %v", err)
		}
	})
}

func TestSessionDifficultyLevel(t *testing.T) {
	t.Parallel()

	t.Run("first override snapshots the original", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSession(t, 1, Options{})
		ctx := context.Background()

		// seed an author-set difficulty directly
		s.cards[0].DifficultyLevel = domain.DifficultyLevelMedium

		if err := s.SetDifficultyLevel(ctx, domain.DifficultyLevelHard); err != nil {
			t.Fatalf("SetDifficultyLevel: %v", err)
		}
		got := s.CurrentCard()
		if got.DifficultyLevel != domain.DifficultyLevelHard {
			t.Errorf("difficulty = %q", got.DifficultyLevel)
		}
		if got.OriginalDifficultyLevel != domain.DifficultyLevelMedium {
			t.Errorf("original = %q, want medium", got.OriginalDifficultyLevel)
		}

		// second override must not clobber the snapshot
		if err := s.SetDifficultyLevel(ctx, domain.DifficultyLevelEasy); err != nil {
			t.Fatalf("SetDifficultyLevel: %v", err)
		}
		got = s.CurrentCard()
		if got.OriginalDifficultyLevel != domain.DifficultyLevelMedium {
			t.Errorf("original after second override = %q, want medium", got.OriginalDifficultyLevel)
		}
	})

	t.Run("no snapshot when prior difficulty is unset", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSession(t, 1, Options{})

		if err := s.SetDifficultyLevel(context.Background(), domain.DifficultyLevelHard); err != nil {
			t.Fatalf("SetDifficultyLevel: %v", err)
		}
		got := s.CurrentCard()
		if got.OriginalDifficultyLevel != domain.DifficultyLevelUnset {
			t.Errorf("original = %q, want unset", got.OriginalDifficultyLevel)
		}
	})
}

func TestSessionRate(t *testing.T) {
	t.Parallel()

	t.Run("good schedules the card and advances", func(t *testing.T) {
		t.Parallel()
		s, mutator := newTestSession(t, 2, Options{})
		first := s.CurrentCard()

		if err := s.Rate(context.Background(), domain.ReviewRatingGood); err != nil {
			t.Fatalf("Rate: %v", err)
		}

		snap := s.Snapshot()
		if snap.CurrentIndex != 1 {
			t.Errorf("index = %d, want 1", snap.CurrentIndex)
		}
		if snap.Stats.CorrectCount != 1 {
			t.Errorf("stats = %+v", snap.Stats)
		}

		rated := s.cards[0]
		if rated.Repetitions != 1 || rated.Interval != 1 {
			t.Errorf("card schedule = reps %d interval %d, want 1/1", rated.Repetitions, rated.Interval)
		}
		want := mustDate(t, "2025-06-16")
		if !rated.NextReviewDate.Equal(want) {
			t.Errorf("next review = %s, want %s", rated.NextReviewDate, want)
		}

		if mutator.count() != 1 || mutator.ids[0] != first.ID {
			t.Error("expected one mirrored write for the rated card")
		}
	})

	t.Run("again resets and counts", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSession(t, 2, Options{})
		s.cards[0].Repetitions = 4
		s.cards[0].Interval = 15

		if err := s.Rate(context.Background(), domain.ReviewRatingAgain); err != nil {
			t.Fatalf("Rate: %v", err)
		}
		if s.cards[0].Repetitions != 0 || s.cards[0].Interval != 1 {
			t.Errorf("schedule = reps %d interval %d, want 0/1",
				s.cards[0].Repetitions, s.cards[0].Interval)
		}
		if snap := s.Snapshot(); snap.Stats.AgainCount != 1 {
			t.Errorf("stats = %+v", snap.Stats)
		}
	})

	t.Run("rating the last card completes the session", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSession(t, 1, Options{})

		if err := s.Rate(context.Background(), domain.ReviewRatingEasy); err != nil {
			t.Fatalf("Rate: %v", err)
		}
		if s.State() != StateComplete {
			t.Errorf("state = %q, want complete", s.State())
		}
	})

	t.Run("invalid rating rejected", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSession(t, 1, Options{})

		err := s.Rate(context.Background(), domain.ReviewRating("meh"))
		if !errors.Is(err, srs.ErrInvalidRating) {
			t.Errorf("expected ErrInvalidRating, got %v", err)
		}
	})

	t.Run("write failure still advances", func(t *testing.T) {
		t.Parallel()
		s, mutator := newTestSession(t, 2, Options{})
		mutator.err = errors.New("db down")

		err := s.Rate(context.Background(), domain.ReviewRatingGood)
		if err == nil {
			t.Fatal("expected error")
		}
		if snap := s.Snapshot(); snap.CurrentIndex != 1 {
			t.Errorf("index = %d, want 1", snap.CurrentIndex)
		}
	})
}

func TestSessionShuffle(t *testing.T) {
	t.Parallel()

	t.Run("shuffle reorders and reset restores", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSession(t, 10, Options{Rand: rand.New(rand.NewSource(42))})
		natural := make([]uuid.UUID, len(s.cards))
		for i, c := range s.cards {
			natural[i] = c.ID
		}

		s.Next()
		s.Shuffle()
		snap := s.Snapshot()
		if snap.CurrentIndex != 0 {
			t.Errorf("index = %d, want 0 after shuffle", snap.CurrentIndex)
		}
		if !snap.IsShuffled {
			t.Error("expected shuffled")
		}

		shuffled := make([]uuid.UUID, 0, len(natural))
		for range natural {
			shuffled = append(shuffled, s.CurrentCard().ID)
			s.Next()
		}
		same := true
		for i := range natural {
			if natural[i] != shuffled[i] {
				same = false
				break
			}
		}
		if same {
			t.Error("shuffle with seed 42 left the order untouched")
		}

		s.ResetOrder()
		snap = s.Snapshot()
		if snap.IsShuffled || snap.CurrentIndex != 0 {
			t.Errorf("after ResetOrder: %+v", snap)
		}
		if s.CurrentCard().ID != natural[0] {
			t.Error("ResetOrder did not restore natural order")
		}
	})

	t.Run("shuffle preserves the card set", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSession(t, 5, Options{Rand: rand.New(rand.NewSource(7))})
		s.Shuffle()

		seen := make(map[uuid.UUID]bool)
		for range s.cards {
			seen[s.CurrentCard().ID] = true
			s.Next()
		}
		if len(seen) != 5 {
			t.Errorf("traversal visited %d distinct cards, want 5", len(seen))
		}
	})
}

func TestSessionResetAll(t *testing.T) {
	t.Parallel()

	t.Run("restores status and difficulty across the due-set", func(t *testing.T) {
		t.Parallel()
		s, mutator := newTestSession(t, 3, Options{})
		ctx := context.Background()

		s.cards[0].DifficultyLevel = domain.DifficultyLevelMedium
		_ = s.SetMemorizationStatus(ctx, domain.MemorizationStatusMemorized)
		_ = s.SetDifficultyLevel(ctx, domain.DifficultyLevelSuperHard)
		s.Next()
		_ = s.SetMemorizationStatus(ctx, domain.MemorizationStatusNotMemorized)

		writesBefore := mutator.count()
		if err := s.ResetAll(ctx); err != nil {
			t.Fatalf("ResetAll: %v", err)
		}

		if s.cards[0].MemorizationStatus != domain.MemorizationStatusUnset {
			t.Error("card 0 status not reset")
		}
		if s.cards[0].DifficultyLevel != domain.DifficultyLevelMedium {
			t.Errorf("card 0 difficulty = %q, want restored medium", s.cards[0].DifficultyLevel)
		}
		if s.cards[1].MemorizationStatus != domain.MemorizationStatusUnset {
			t.Error("card 1 status not reset")
		}

		snap := s.Snapshot()
		if snap.Stats.CardsStudied != 0 || snap.CurrentIndex != 0 || snap.IsComplete {
			t.Errorf("session state after reset: %+v", snap)
		}

		// untouched card 2 produces no write
		if got := mutator.count() - writesBefore; got != 2 {
			t.Errorf("reset wrote %d patches, want 2", got)
		}
	})

	t.Run("continues past failed writes and joins the errors", func(t *testing.T) {
		t.Parallel()
		s, mutator := newTestSession(t, 2, Options{})
		ctx := context.Background()

		_ = s.SetMemorizationStatus(ctx, domain.MemorizationStatusMemorized)
		s.Next()
		_ = s.SetMemorizationStatus(ctx, domain.MemorizationStatusMemorized)

		mutator.err = errors.New("db down")
		err := s.ResetAll(ctx)
		if err == nil {
			t.Fatal("expected joined errors")
		}

		// in-memory reset still applied to both
		for i, card := range s.cards {
			if card.MemorizationStatus != domain.MemorizationStatusUnset {
				t.Errorf("card %d not reset in memory", i)
			}
		}
	})
}

func TestSessionStart(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, 1, Options{AutoAdvance: true, ClicksToAdvance: 1})
	s.Flip()
	if s.State() != StateComplete {
		t.Fatal("expected complete")
	}

	s.Start()
	snap := s.Snapshot()
	if snap.IsComplete || snap.CurrentIndex != 0 || snap.IsFlipped || snap.ClickCount != 0 {
		t.Errorf("Start did not reset the session: %+v", snap)
	}
	if snap.State != StateStudying {
		t.Errorf("state = %q, want studying", snap.State)
	}
}

func TestSessionCompleteBlocksOperations(t *testing.T) {
	t.Parallel()

	s, mutator := newTestSession(t, 1, Options{AutoAdvance: true, ClicksToAdvance: 1})
	s.Flip()
	if s.State() != StateComplete {
		t.Fatal("expected complete")
	}

	s.Flip()
	s.Next()
	s.Prev()
	if err := s.Rate(context.Background(), domain.ReviewRatingGood); err != nil {
		t.Errorf("Rate after completion: %v", err)
	}

	if mutator.count() != 0 {
		t.Errorf("completed session produced %d writes", mutator.count())
	}
	if snap := s.Snapshot(); snap.IsFlipped || !snap.IsComplete {
		t.Errorf("completed session mutated: %+v", snap)
	}
}

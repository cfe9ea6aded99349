package study

import (
	"testing"
	"time"

	"github.com/kotoba-app/kotoba-api/internal/domain"
)

func mustDate(t *testing.T, s string) domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func newTestCard(t *testing.T, front string, levels []string) *domain.Flashcard {
	t.Helper()
	card, err := domain.NewFlashcard(front, front+"-back", levels)
	if err != nil {
		t.Fatalf("NewFlashcard: %v", err)
	}
	return card
}

func TestFiltersMatches(t *testing.T) {
	t.Parallel()

	card := newTestCard(t, "水", []string{"N5"})
	card.MemorizationStatus = domain.MemorizationStatusMemorized
	card.DifficultyLevel = domain.DifficultyLevelHard

	testCases := []struct {
		name    string
		filters Filters
		want    bool
	}{
		{
			name:    "empty filters match everything",
			filters: Filters{},
			want:    true,
		},
		{
			name: "all wildcard matches everything",
			filters: Filters{
				JLPTLevel:          FilterAll,
				MemorizationStatus: FilterAll,
				DifficultyLevel:    FilterAll,
			},
			want: true,
		},
		{
			name:    "matching JLPT level",
			filters: Filters{JLPTLevel: "N5"},
			want:    true,
		},
		{
			name:    "non-matching JLPT level",
			filters: Filters{JLPTLevel: "N1"},
			want:    false,
		},
		{
			name:    "matching memorization status",
			filters: Filters{MemorizationStatus: "memorized"},
			want:    true,
		},
		{
			name:    "non-matching memorization status",
			filters: Filters{MemorizationStatus: "not_memorized"},
			want:    false,
		},
		{
			name:    "matching difficulty",
			filters: Filters{DifficultyLevel: "hard"},
			want:    true,
		},
		{
			name: "AND composition requires all active filters to match",
			filters: Filters{
				JLPTLevel:          "N5",
				MemorizationStatus: "memorized",
				DifficultyLevel:    "easy",
			},
			want: false,
		},
		{
			name: "AND composition with all matching",
			filters: Filters{
				JLPTLevel:          "N5",
				MemorizationStatus: "memorized",
				DifficultyLevel:    "hard",
			},
			want: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.filters.Matches(card); got != tc.want {
				t.Errorf("Matches() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDueCards(t *testing.T) {
	t.Parallel()

	today := mustDate(t, "2025-06-15")

	// never reviewed, due by definition regardless of date
	fresh := newTestCard(t, "fresh", []string{"N5"})
	fresh.NextReviewDate = mustDate(t, "2025-07-01")

	// reviewed, scheduled in the past
	overdue := newTestCard(t, "overdue", []string{"N4"})
	overdue.Repetitions = 3
	overdue.Interval = 6
	overdue.NextReviewDate = mustDate(t, "2025-06-10")

	// reviewed, scheduled exactly today
	dueToday := newTestCard(t, "due-today", []string{"N5"})
	dueToday.Repetitions = 1
	dueToday.Interval = 1
	dueToday.NextReviewDate = today

	// reviewed, scheduled in the future
	future := newTestCard(t, "future", []string{"N5"})
	future.Repetitions = 2
	future.Interval = 6
	future.NextReviewDate = mustDate(t, "2025-06-20")

	cards := []*domain.Flashcard{fresh, overdue, dueToday, future}

	t.Run("no filters", func(t *testing.T) {
		t.Parallel()
		due := DueCards(cards, Filters{}, today)
		if len(due) != 3 {
			t.Fatalf("expected 3 due cards, got %d", len(due))
		}
		// order preserved
		if due[0] != fresh || due[1] != overdue || due[2] != dueToday {
			t.Error("due-set does not preserve input order")
		}
	})

	t.Run("filtered by level", func(t *testing.T) {
		t.Parallel()
		due := DueCards(cards, Filters{JLPTLevel: "N5"}, today)
		if len(due) != 2 {
			t.Fatalf("expected 2 due cards, got %d", len(due))
		}
		if due[0] != fresh || due[1] != dueToday {
			t.Error("unexpected cards in filtered due-set")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		due := DueCards(nil, Filters{}, today)
		if len(due) != 0 {
			t.Errorf("expected empty due-set, got %d cards", len(due))
		}
	})

	t.Run("fresh card ignores future schedule", func(t *testing.T) {
		t.Parallel()
		farPast := domain.DateOf(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
		due := DueCards([]*domain.Flashcard{fresh}, Filters{}, farPast)
		if len(due) != 1 {
			t.Error("card with zero repetitions should always be due")
		}
	})
}

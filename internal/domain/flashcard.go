package domain

import (
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ReviewRating represents the learner's self-assessment of a recall attempt.
type ReviewRating string

// Possible review rating values
const (
	ReviewRatingAgain ReviewRating = "again"
	ReviewRatingHard  ReviewRating = "hard"
	ReviewRatingGood  ReviewRating = "good"
	ReviewRatingEasy  ReviewRating = "easy"
)

// IsValid reports whether the rating is one of the four known values.
func (r ReviewRating) IsValid() bool {
	switch r {
	case ReviewRatingAgain, ReviewRatingHard, ReviewRatingGood, ReviewRatingEasy:
		return true
	}
	return false
}

// MemorizationStatus is the learner-set recall status of a card. It is
// independent of the SM-2 interval math: the simplified study flow toggles
// this status without touching the review schedule.
type MemorizationStatus string

const (
	MemorizationStatusMemorized    MemorizationStatus = "memorized"
	MemorizationStatusNotMemorized MemorizationStatus = "not_memorized"
	MemorizationStatusUnset        MemorizationStatus = "unset"
)

// IsValid reports whether the status is a known value.
func (s MemorizationStatus) IsValid() bool {
	switch s {
	case MemorizationStatusMemorized, MemorizationStatusNotMemorized, MemorizationStatusUnset:
		return true
	}
	return false
}

// DifficultyLevel is the author- or learner-assigned difficulty of a card.
type DifficultyLevel string

const (
	DifficultyLevelEasy      DifficultyLevel = "easy"
	DifficultyLevelMedium    DifficultyLevel = "medium"
	DifficultyLevelHard      DifficultyLevel = "hard"
	DifficultyLevelSuperHard DifficultyLevel = "super_hard"
	DifficultyLevelUnset     DifficultyLevel = "unset"
)

// IsValid reports whether the level is a known value.
func (l DifficultyLevel) IsValid() bool {
	switch l {
	case DifficultyLevelEasy, DifficultyLevelMedium, DifficultyLevelHard,
		DifficultyLevelSuperHard, DifficultyLevelUnset:
		return true
	}
	return false
}

// SM-2 scheduling bounds shared by the domain and the scheduler.
const (
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 3.0
	DefaultEaseFactor = 2.5
)

// Flashcard-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardFrontEmpty is returned when a card's front text is empty.
	ErrCardFrontEmpty = errors.New("card front cannot be empty")

	// ErrCardBackEmpty is returned when a card's back text is empty.
	ErrCardBackEmpty = errors.New("card back cannot be empty")

	// ErrInvalidEaseFactor is returned when the ease factor is outside [1.3, 3.0].
	ErrInvalidEaseFactor = errors.New("ease factor must be between 1.3 and 3.0")

	// ErrInvalidInterval is returned when the interval is negative.
	ErrInvalidInterval = errors.New("interval must be greater than or equal to 0")

	// ErrInvalidRepetitions is returned when the repetition count is negative.
	ErrInvalidRepetitions = errors.New("repetitions must be greater than or equal to 0")

	// ErrInvalidMemorizationStatus is returned for an unknown memorization status.
	ErrInvalidMemorizationStatus = errors.New("invalid memorization status")

	// ErrInvalidDifficultyLevel is returned for an unknown difficulty level.
	ErrInvalidDifficultyLevel = errors.New("invalid difficulty level")

	// ErrInvalidReviewRating is returned for an unknown review rating.
	ErrInvalidReviewRating = errors.New("invalid review rating")
)

// Flashcard is a single vocabulary card together with its review schedule.
//
// The scheduling fields move in lockstep: Repetitions and Interval both reset
// on a failed review and both grow on success, and EaseFactor always stays
// within [MinEaseFactor, MaxEaseFactor]. OriginalDifficultyLevel preserves
// the difficulty assigned by the content author so a later reset can restore
// it after the learner has overridden it.
type Flashcard struct {
	ID                      uuid.UUID          `json:"id"`
	Front                   string             `json:"front"`
	Back                    string             `json:"back"`
	Reading                 string             `json:"reading,omitempty"`
	JLPTLevels              []string           `json:"jlpt_levels"`
	EaseFactor              float64            `json:"ease_factor"`
	Interval                int                `json:"interval"`
	Repetitions             int                `json:"repetitions"`
	NextReviewDate          Date               `json:"next_review_date"`
	MemorizationStatus      MemorizationStatus `json:"memorization_status"`
	DifficultyLevel         DifficultyLevel    `json:"difficulty_level"`
	OriginalDifficultyLevel DifficultyLevel    `json:"original_difficulty_level"`
	CreatedAt               time.Time          `json:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at"`
}

// NewFlashcard creates a new card with default scheduling state. New cards
// are due immediately: NextReviewDate is initialized to today so a card with
// zero repetitions always appears in the due-set.
func NewFlashcard(front, back string, jlptLevels []string) (*Flashcard, error) {
	now := time.Now().UTC()
	card := &Flashcard{
		ID:                      uuid.New(),
		Front:                   front,
		Back:                    back,
		JLPTLevels:              jlptLevels,
		EaseFactor:              DefaultEaseFactor,
		Interval:                0,
		Repetitions:             0,
		NextReviewDate:          DateOf(now),
		MemorizationStatus:      MemorizationStatusUnset,
		DifficultyLevel:         DifficultyLevelUnset,
		OriginalDifficultyLevel: DifficultyLevelUnset,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Flashcard has valid data.
// Returns an error if any field fails validation.
func (c *Flashcard) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.Front == "" {
		return ErrCardFrontEmpty
	}

	if c.Back == "" {
		return ErrCardBackEmpty
	}

	if c.EaseFactor < MinEaseFactor || c.EaseFactor > MaxEaseFactor {
		return ErrInvalidEaseFactor
	}

	if c.Interval < 0 {
		return ErrInvalidInterval
	}

	if c.Repetitions < 0 {
		return ErrInvalidRepetitions
	}

	if !c.MemorizationStatus.IsValid() {
		return ErrInvalidMemorizationStatus
	}

	if !c.DifficultyLevel.IsValid() {
		return ErrInvalidDifficultyLevel
	}

	return nil
}

// IsDue reports whether the card is due for review on the given date.
// A card that has never been reviewed (Repetitions == 0) is due by definition.
func (c *Flashcard) IsDue(today Date) bool {
	if c.Repetitions == 0 {
		return true
	}
	return !c.NextReviewDate.After(today)
}

// HasJLPTLevel reports whether the card is tagged with the given level.
func (c *Flashcard) HasJLPTLevel(level string) bool {
	return slices.Contains(c.JLPTLevels, level)
}

// Clone returns a deep copy of the card.
func (c *Flashcard) Clone() *Flashcard {
	clone := *c
	clone.JLPTLevels = slices.Clone(c.JLPTLevels)
	return &clone
}

// flashcardAlias prevents UnmarshalJSON from recursing.
type flashcardAlias Flashcard

// UnmarshalJSON decodes a card and normalizes legacy records on the way in.
// Older exports carry a singular "jlpt_level" string instead of the canonical
// "jlpt_levels" array, and may omit the status enums entirely. Both shapes
// are converted here, once at ingestion, so nothing downstream ever branches
// on the legacy form.
func (c *Flashcard) UnmarshalJSON(data []byte) error {
	aux := struct {
		*flashcardAlias
		LegacyJLPTLevel string `json:"jlpt_level"`
	}{flashcardAlias: (*flashcardAlias)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if len(c.JLPTLevels) == 0 && aux.LegacyJLPTLevel != "" {
		c.JLPTLevels = []string{aux.LegacyJLPTLevel}
	}
	if c.MemorizationStatus == "" {
		c.MemorizationStatus = MemorizationStatusUnset
	}
	if c.DifficultyLevel == "" {
		c.DifficultyLevel = DifficultyLevelUnset
	}
	if c.OriginalDifficultyLevel == "" {
		c.OriginalDifficultyLevel = DifficultyLevelUnset
	}

	return nil
}

// CardPatch describes a partial update to a Flashcard. Nil fields are left
// untouched. This is the shape pushed through the persistence port: the
// engine mutates its in-memory card and mirrors the changed fields out.
type CardPatch struct {
	EaseFactor              *float64            `json:"ease_factor,omitempty"`
	Interval                *int                `json:"interval,omitempty"`
	Repetitions             *int                `json:"repetitions,omitempty"`
	NextReviewDate          *Date               `json:"next_review_date,omitempty"`
	MemorizationStatus      *MemorizationStatus `json:"memorization_status,omitempty"`
	DifficultyLevel         *DifficultyLevel    `json:"difficulty_level,omitempty"`
	OriginalDifficultyLevel *DifficultyLevel    `json:"original_difficulty_level,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p CardPatch) IsEmpty() bool {
	return p.EaseFactor == nil &&
		p.Interval == nil &&
		p.Repetitions == nil &&
		p.NextReviewDate == nil &&
		p.MemorizationStatus == nil &&
		p.DifficultyLevel == nil &&
		p.OriginalDifficultyLevel == nil
}

// Apply copies the patch's non-nil fields onto the card and bumps UpdatedAt.
func (p CardPatch) Apply(c *Flashcard) {
	if p.EaseFactor != nil {
		c.EaseFactor = *p.EaseFactor
	}
	if p.Interval != nil {
		c.Interval = *p.Interval
	}
	if p.Repetitions != nil {
		c.Repetitions = *p.Repetitions
	}
	if p.NextReviewDate != nil {
		c.NextReviewDate = *p.NextReviewDate
	}
	if p.MemorizationStatus != nil {
		c.MemorizationStatus = *p.MemorizationStatus
	}
	if p.DifficultyLevel != nil {
		c.DifficultyLevel = *p.DifficultyLevel
	}
	if p.OriginalDifficultyLevel != nil {
		c.OriginalDifficultyLevel = *p.OriginalDifficultyLevel
	}
	c.UpdatedAt = time.Now().UTC()
}

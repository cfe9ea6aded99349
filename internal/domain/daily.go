package domain

import (
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Valid daily quota sizes. The default sits in the middle of the range.
var ValidDailyTargets = []int{5, 10, 15, 20}

// DefaultDailyTarget is the quota used when the learner has not picked one.
const DefaultDailyTarget = 10

// DailyHistoryLimit caps how many past sessions are retained. Oldest entries
// are dropped first once the cap is reached.
const DailyHistoryLimit = 30

// Daily-words validation errors
var (
	// ErrInvalidDailyTarget is returned when the target is not one of ValidDailyTargets.
	ErrInvalidDailyTarget = errors.New("daily target must be one of 5, 10, 15, or 20")

	// ErrDailySessionDateEmpty is returned when a session has no date.
	ErrDailySessionDateEmpty = errors.New("daily session date cannot be empty")

	// ErrLearnedNotSubset is returned when learned word IDs are not a subset of the day's words.
	ErrLearnedNotSubset = errors.New("learned word IDs must be a subset of the day's word IDs")
)

// DailyWordsSession is one calendar day's learning quota: the fixed subset
// of cards chosen for the day and the learner's progress through it.
//
// Invariants: LearnedWordIDs is always a duplicate-free subset of WordIDs,
// CompletedWords equals len(LearnedWordIDs), and IsCompleted never un-sets
// within a day once true.
type DailyWordsSession struct {
	Date           Date        `json:"date"`
	TargetWords    int         `json:"targetWords"`
	WordIDs        []uuid.UUID `json:"wordIds"`
	LearnedWordIDs []uuid.UUID `json:"learnedWordIds"`
	CompletedWords int         `json:"completedWords"`
	IsCompleted    bool        `json:"isCompleted"`
	CompletedAt    time.Time   `json:"completedAt,omitempty"`
}

// NewDailyWordsSession creates a session for the given day over the chosen
// word subset.
func NewDailyWordsSession(date Date, targetWords int, wordIDs []uuid.UUID) (*DailyWordsSession, error) {
	if !slices.Contains(ValidDailyTargets, targetWords) {
		return nil, ErrInvalidDailyTarget
	}
	if date.IsZero() {
		return nil, ErrDailySessionDateEmpty
	}

	return &DailyWordsSession{
		Date:           date,
		TargetWords:    targetWords,
		WordIDs:        slices.Clone(wordIDs),
		LearnedWordIDs: []uuid.UUID{},
	}, nil
}

// Validate checks the session's invariants.
func (s *DailyWordsSession) Validate() error {
	if s.Date.IsZero() {
		return ErrDailySessionDateEmpty
	}
	if !slices.Contains(ValidDailyTargets, s.TargetWords) {
		return ErrInvalidDailyTarget
	}
	seen := make(map[uuid.UUID]struct{}, len(s.LearnedWordIDs))
	for _, id := range s.LearnedWordIDs {
		if _, dup := seen[id]; dup {
			return ErrLearnedNotSubset
		}
		seen[id] = struct{}{}
		if !slices.Contains(s.WordIDs, id) {
			return ErrLearnedNotSubset
		}
	}
	return nil
}

// HasWord reports whether id is part of the day's word subset.
func (s *DailyWordsSession) HasWord(id uuid.UUID) bool {
	return slices.Contains(s.WordIDs, id)
}

// HasLearned reports whether id has already been marked learned today.
func (s *DailyWordsSession) HasLearned(id uuid.UUID) bool {
	return slices.Contains(s.LearnedWordIDs, id)
}

// Clone returns a deep copy of the session.
func (s *DailyWordsSession) Clone() *DailyWordsSession {
	clone := *s
	clone.WordIDs = slices.Clone(s.WordIDs)
	clone.LearnedWordIDs = slices.Clone(s.LearnedWordIDs)
	return &clone
}

// dailySessionAlias prevents UnmarshalJSON from recursing.
type dailySessionAlias DailyWordsSession

// UnmarshalJSON decodes a session while tolerating older persisted records:
// records written before learned tracking existed have no "learnedWordIds"
// (defaults to empty), and the oldest records name the day's subset
// "todayWords" instead of "wordIds".
func (s *DailyWordsSession) UnmarshalJSON(data []byte) error {
	aux := struct {
		*dailySessionAlias
		LegacyTodayWords []uuid.UUID `json:"todayWords"`
	}{dailySessionAlias: (*dailySessionAlias)(s)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if s.WordIDs == nil {
		s.WordIDs = aux.LegacyTodayWords
	}
	if s.WordIDs == nil {
		s.WordIDs = []uuid.UUID{}
	}
	if s.LearnedWordIDs == nil {
		s.LearnedWordIDs = []uuid.UUID{}
	}
	s.CompletedWords = len(s.LearnedWordIDs)

	return nil
}

// DailyWordsState is the process-wide daily-words progress record: today's
// session, a bounded history of past sessions, and the streak counters.
type DailyWordsState struct {
	CurrentSession            *DailyWordsSession  `json:"currentSession"`
	History                   []DailyWordsSession `json:"history"`
	Streak                    int                 `json:"streak"`
	LongestStreak             int                 `json:"longestStreak"`
	NotificationDismissedDate Date                `json:"notificationDismissedDate"`
}

// NewDailyWordsState returns an empty progress record.
func NewDailyWordsState() *DailyWordsState {
	return &DailyWordsState{
		History: []DailyWordsSession{},
	}
}

// Normalize repairs a freshly deserialized state: nil slices become empty
// and counters are recomputed from the learned sets. Called once after load
// so the rest of the engine never checks for nil.
func (st *DailyWordsState) Normalize() {
	if st.History == nil {
		st.History = []DailyWordsSession{}
	}
	for i := range st.History {
		if st.History[i].WordIDs == nil {
			st.History[i].WordIDs = []uuid.UUID{}
		}
		if st.History[i].LearnedWordIDs == nil {
			st.History[i].LearnedWordIDs = []uuid.UUID{}
		}
		st.History[i].CompletedWords = len(st.History[i].LearnedWordIDs)
	}
	if st.CurrentSession != nil {
		if st.CurrentSession.WordIDs == nil {
			st.CurrentSession.WordIDs = []uuid.UUID{}
		}
		if st.CurrentSession.LearnedWordIDs == nil {
			st.CurrentSession.LearnedWordIDs = []uuid.UUID{}
		}
		st.CurrentSession.CompletedWords = len(st.CurrentSession.LearnedWordIDs)
	}
}

// Clone returns a deep copy of the state.
func (st *DailyWordsState) Clone() *DailyWordsState {
	clone := &DailyWordsState{
		Streak:                    st.Streak,
		LongestStreak:             st.LongestStreak,
		NotificationDismissedDate: st.NotificationDismissedDate,
		History:                   make([]DailyWordsSession, 0, len(st.History)),
	}
	for _, sess := range st.History {
		clone.History = append(clone.History, *sess.Clone())
	}
	if st.CurrentSession != nil {
		clone.CurrentSession = st.CurrentSession.Clone()
	}
	return clone
}

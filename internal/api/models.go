package api

import (
	"time"

	"github.com/kotoba-app/kotoba-api/internal/domain"
	"github.com/kotoba-app/kotoba-api/internal/study"
)

// CreateCardRequest is the payload for creating a flashcard.
type CreateCardRequest struct {
	Front      string   `json:"front"      validate:"required"`
	Back       string   `json:"back"       validate:"required"`
	Reading    string   `json:"reading"`
	JLPTLevels []string `json:"jlpt_levels"`
}

// BatchCreateCardsRequest is the payload for importing several cards in a
// single atomic request.
type BatchCreateCardsRequest struct {
	Cards []CreateCardRequest `json:"cards" validate:"required,min=1,dive"`
}

// CreateSessionRequest is the payload for starting a study session. Each
// filter defaults to the "all" wildcard when omitted.
type CreateSessionRequest struct {
	JLPTLevel          string `json:"jlpt_level"`
	MemorizationStatus string `json:"memorization_status" validate:"omitempty,oneof=all memorized not_memorized unset"`
	DifficultyLevel    string `json:"difficulty_level"    validate:"omitempty,oneof=all easy medium hard super_hard unset"`
}

// RateCardRequest is the payload for rating the current card.
type RateCardRequest struct {
	Rating string `json:"rating" validate:"required,oneof=again hard good easy"`
}

// SetStatusRequest is the payload for marking the current card.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=memorized not_memorized unset"`
}

// SetDifficultyRequest is the payload for overriding the current card's
// difficulty.
type SetDifficultyRequest struct {
	Level string `json:"level" validate:"required,oneof=easy medium hard super_hard unset"`
}

// SetTargetRequest is the payload for changing the daily quota size.
type SetTargetRequest struct {
	TargetWords int `json:"target_words" validate:"required,oneof=5 10 15 20"`
}

// CardResponse represents the response data for a card.
type CardResponse struct {
	ID                      string    `json:"id"`
	Front                   string    `json:"front"`
	Back                    string    `json:"back"`
	Reading                 string    `json:"reading,omitempty"`
	JLPTLevels              []string  `json:"jlpt_levels"`
	EaseFactor              float64   `json:"ease_factor"`
	Interval                int       `json:"interval"`
	Repetitions             int       `json:"repetitions"`
	NextReviewDate          string    `json:"next_review_date"`
	MemorizationStatus      string    `json:"memorization_status"`
	DifficultyLevel         string    `json:"difficulty_level"`
	OriginalDifficultyLevel string    `json:"original_difficulty_level"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// NewCardResponse converts a domain card into its response shape.
func NewCardResponse(card *domain.Flashcard) CardResponse {
	return CardResponse{
		ID:                      card.ID.String(),
		Front:                   card.Front,
		Back:                    card.Back,
		Reading:                 card.Reading,
		JLPTLevels:              card.JLPTLevels,
		EaseFactor:              card.EaseFactor,
		Interval:                card.Interval,
		Repetitions:             card.Repetitions,
		NextReviewDate:          card.NextReviewDate.String(),
		MemorizationStatus:      string(card.MemorizationStatus),
		DifficultyLevel:         string(card.DifficultyLevel),
		OriginalDifficultyLevel: string(card.OriginalDifficultyLevel),
		CreatedAt:               card.CreatedAt,
		UpdatedAt:               card.UpdatedAt,
	}
}

// SessionResponse represents the response data for a study session.
type SessionResponse struct {
	ID           string        `json:"id"`
	State        string        `json:"state"`
	CurrentIndex int           `json:"current_index"`
	IsFlipped    bool          `json:"is_flipped"`
	IsShuffled   bool          `json:"is_shuffled"`
	ClickCount   int           `json:"click_count"`
	IsComplete   bool          `json:"is_complete"`
	Stats        study.Stats   `json:"stats"`
	CurrentCard  *CardResponse `json:"current_card,omitempty"`
}

// NewSessionResponse converts a session snapshot into its response shape.
func NewSessionResponse(snap study.Snapshot) SessionResponse {
	resp := SessionResponse{
		ID:           snap.ID.String(),
		State:        string(snap.State),
		CurrentIndex: snap.CurrentIndex,
		IsFlipped:    snap.IsFlipped,
		IsShuffled:   snap.IsShuffled,
		ClickCount:   snap.ClickCount,
		IsComplete:   snap.IsComplete,
		Stats:        snap.Stats,
	}
	if snap.CurrentCard != nil {
		card := NewCardResponse(snap.CurrentCard)
		resp.CurrentCard = &card
	}
	return resp
}

// DailySessionResponse represents one day's quota progress.
type DailySessionResponse struct {
	Date           string   `json:"date"`
	TargetWords    int      `json:"target_words"`
	WordIDs        []string `json:"word_ids"`
	LearnedWordIDs []string `json:"learned_word_ids"`
	CompletedWords int      `json:"completed_words"`
	IsCompleted    bool     `json:"is_completed"`
	CompletedAt    string   `json:"completed_at,omitempty"`
}

// DailyStateResponse represents the whole daily-words progress record.
type DailyStateResponse struct {
	CurrentSession            *DailySessionResponse  `json:"current_session"`
	History                   []DailySessionResponse `json:"history"`
	Streak                    int                    `json:"streak"`
	LongestStreak             int                    `json:"longest_streak"`
	NotificationDismissedDate string                 `json:"notification_dismissed_date,omitempty"`
}

// NewDailyStateResponse converts the tracker state into its response shape.
func NewDailyStateResponse(state *domain.DailyWordsState) DailyStateResponse {
	resp := DailyStateResponse{
		History:       make([]DailySessionResponse, 0, len(state.History)),
		Streak:        state.Streak,
		LongestStreak: state.LongestStreak,
	}
	if !state.NotificationDismissedDate.IsZero() {
		resp.NotificationDismissedDate = state.NotificationDismissedDate.String()
	}
	if state.CurrentSession != nil {
		sess := newDailySessionResponse(state.CurrentSession)
		resp.CurrentSession = &sess
	}
	for i := range state.History {
		resp.History = append(resp.History, newDailySessionResponse(&state.History[i]))
	}
	return resp
}

func newDailySessionResponse(sess *domain.DailyWordsSession) DailySessionResponse {
	resp := DailySessionResponse{
		Date:           sess.Date.String(),
		TargetWords:    sess.TargetWords,
		WordIDs:        make([]string, 0, len(sess.WordIDs)),
		LearnedWordIDs: make([]string, 0, len(sess.LearnedWordIDs)),
		CompletedWords: sess.CompletedWords,
		IsCompleted:    sess.IsCompleted,
	}
	for _, id := range sess.WordIDs {
		resp.WordIDs = append(resp.WordIDs, id.String())
	}
	for _, id := range sess.LearnedWordIDs {
		resp.LearnedWordIDs = append(resp.LearnedWordIDs, id.String())
	}
	if !sess.CompletedAt.IsZero() {
		resp.CompletedAt = sess.CompletedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/kotoba-app/kotoba-api/internal/domain"
	"github.com/kotoba-app/kotoba-api/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// cardColumns is the canonical select list, kept in one place so every
// query scans the same shape. "interval" is a reserved word in PostgreSQL,
// so the column is named review_interval.
const cardColumns = `id, front, back, reading, jlpt_levels, ease_factor,
	review_interval, repetitions, next_review_date, memorization_status,
	difficulty_level, original_difficulty_level, created_at, updated_at`

// Create implements store.CardStore.Create
// Returns store.ErrDuplicate if a card with the same ID already exists.
// Returns validation errors wrapped in store.ErrInvalidEntity if the card is invalid.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Flashcard) error {
	if card == nil {
		return fmt.Errorf("%w: card cannot be nil", store.ErrInvalidEntity)
	}
	if err := card.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	levels, err := json.Marshal(card.JLPTLevels)
	if err != nil {
		return fmt.Errorf("%w: failed to encode jlpt levels: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = s.db.ExecContext(ctx, query,
		card.ID,
		card.Front,
		card.Back,
		card.Reading,
		levels,
		card.EaseFactor,
		card.Interval,
		card.Repetitions,
		card.NextReviewDate,
		card.MemorizationStatus,
		card.DifficultyLevel,
		card.OriginalDifficultyLevel,
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		s.logger.Error("failed to create card",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// CreateBatch implements store.CardStore.CreateBatch
// When the store is bound to a plain connection the inserts run in one
// transaction, so a failing card rolls back the whole batch. When the store
// is already bound to a transaction, that transaction provides atomicity.
func (s *PostgresCardStore) CreateBatch(ctx context.Context, cards []*domain.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}

	if db, ok := s.db.(*sql.DB); ok {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return s.WithTx(tx).CreateBatch(ctx, cards)
		})
	}

	for _, card := range cards {
		if err := s.Create(ctx, card); err != nil {
			return err
		}
	}
	return nil
}

// GetByID implements store.CardStore.GetByID
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if IsNotFoundError(err) {
			return nil, store.ErrCardNotFound
		}
		return nil, MapError(err)
	}
	return card, nil
}

// List implements store.CardStore.List
// Cards are returned oldest first so the due-set selector and the daily
// tracker see a stable order across calls.
func (s *PostgresCardStore) List(ctx context.Context) ([]*domain.Flashcard, error) {
	query := `SELECT ` + cardColumns + ` FROM cards ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	cards := make([]*domain.Flashcard, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, MapError(err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return cards, nil
}

// Update implements store.CardStore.Update
// Only the patch's non-nil fields are written; updated_at always advances.
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) Update(ctx context.Context, id uuid.UUID, patch domain.CardPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	set := make([]string, 0, 8)
	args := make([]any, 0, 9)
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.EaseFactor != nil {
		add("ease_factor", *patch.EaseFactor)
	}
	if patch.Interval != nil {
		add("review_interval", *patch.Interval)
	}
	if patch.Repetitions != nil {
		add("repetitions", *patch.Repetitions)
	}
	if patch.NextReviewDate != nil {
		add("next_review_date", *patch.NextReviewDate)
	}
	if patch.MemorizationStatus != nil {
		add("memorization_status", *patch.MemorizationStatus)
	}
	if patch.DifficultyLevel != nil {
		add("difficulty_level", *patch.DifficultyLevel)
	}
	if patch.OriginalDifficultyLevel != nil {
		add("original_difficulty_level", *patch.OriginalDifficultyLevel)
	}
	set = append(set, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE cards SET %s WHERE id = $%d",
		strings.Join(set, ", "), len(args))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to update card",
			slog.String("card_id", id.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, "card"); err != nil {
		return store.ErrCardNotFound
	}
	return nil
}

// Delete implements store.CardStore.Delete
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, "card"); err != nil {
		return store.ErrCardNotFound
	}
	return nil
}

// WithTx implements store.CardStore.WithTx
// It returns a new store bound to the given transaction.
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanCard.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (*domain.Flashcard, error) {
	var (
		card   domain.Flashcard
		levels []byte
	)
	err := row.Scan(
		&card.ID,
		&card.Front,
		&card.Back,
		&card.Reading,
		&levels,
		&card.EaseFactor,
		&card.Interval,
		&card.Repetitions,
		&card.NextReviewDate,
		&card.MemorizationStatus,
		&card.DifficultyLevel,
		&card.OriginalDifficultyLevel,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(levels) > 0 {
		if err := json.Unmarshal(levels, &card.JLPTLevels); err != nil {
			return nil, fmt.Errorf("failed to decode jlpt levels: %w", err)
		}
	}
	if card.JLPTLevels == nil {
		card.JLPTLevels = []string{}
	}
	return &card, nil
}

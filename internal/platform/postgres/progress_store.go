package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kotoba-app/kotoba-api/internal/domain"
	"github.com/kotoba-app/kotoba-api/internal/store"
)

// PostgresProgressStore implements the store.ProgressStore interface.
// The daily-words state is persisted as one JSONB row under a fixed key,
// matching the plain key-value contract the tracker expects.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the
// ProgressStore interface. If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// Load implements store.ProgressStore.Load
// Returns store.ErrProgressNotFound when nothing has been saved yet and
// store.ErrProgressCorrupt when the stored blob no longer decodes; both are
// cold-start conditions for the tracker, not failures.
func (s *PostgresProgressStore) Load(ctx context.Context) (*domain.DailyWordsState, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM daily_progress WHERE key = $1`,
		store.DailyWordsKey,
	).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		return nil, MapError(err)
	}

	var state domain.DailyWordsState
	if err := json.Unmarshal(blob, &state); err != nil {
		s.logger.Warn("stored daily progress does not decode",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", store.ErrProgressCorrupt, err)
	}
	state.Normalize()
	return &state, nil
}

// Save implements store.ProgressStore.Save
// The whole state replaces any previous record (last write wins).
func (s *PostgresProgressStore) Save(ctx context.Context, state *domain.DailyWordsState) error {
	if state == nil {
		return fmt.Errorf("%w: state cannot be nil", store.ErrInvalidEntity)
	}

	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: failed to encode state: %v", store.ErrInvalidEntity, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO daily_progress (key, state, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET state = $2, updated_at = now()`,
		store.DailyWordsKey, blob,
	)
	if err != nil {
		s.logger.Error("failed to save daily progress",
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

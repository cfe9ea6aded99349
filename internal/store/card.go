package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/kotoba-app/kotoba-api/internal/domain"
)

// CardStore defines the interface for flashcard persistence.
//
// The engine treats the store as an external collaborator: its in-memory
// session state is the source of truth while studying, and writes through
// Update are a best-effort mirror with read-after-write consistency assumed
// on the next List.
type CardStore interface {
	// Create saves a new card to the store.
	// Returns ErrDuplicate if a card with the same ID already exists.
	// Returns validation errors wrapped in ErrInvalidEntity if the card is invalid.
	Create(ctx context.Context, card *domain.Flashcard) error

	// CreateBatch saves several new cards as a single atomic unit:
	// either every card is created or none are. Individual failures are
	// reported the same way as Create.
	CreateBatch(ctx context.Context, cards []*domain.Flashcard) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error)

	// List retrieves the full card collection in a stable order
	// (oldest first). The due-set selector and the daily tracker both
	// consume this and narrow it in memory.
	List(ctx context.Context) ([]*domain.Flashcard, error)

	// Update applies a partial update to an existing card. Only the
	// patch's non-nil fields are written.
	// Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, id uuid.UUID, patch domain.CardPatch) error

	// Delete removes a card from the store by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new CardStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller,
	// typically through RunInTransaction.
	WithTx(tx *sql.Tx) CardStore
}

package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/domain/gamification"
)

// SetStore defines the interface for flashcard set persistence. Sets are
// always read and written together with their cards.
type SetStore interface {
	// Create saves a validated set and its cards.
	Create(ctx context.Context, set *domain.FlashcardSet) error

	// GetByID retrieves a set with its cards ordered by position.
	// Returns ErrSetNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.FlashcardSet, error)

	// ListByUser returns the user's sets, default set first, then by creation time.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.FlashcardSet, error)

	// Update saves title and visibility and replaces all cards.
	Update(ctx context.Context, set *domain.FlashcardSet) error

	// Delete removes a set and its cards. Returns ErrSetNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error

	// Stats counts the user's own sets and cards, excluding the default set.
	Stats(ctx context.Context, userID uuid.UUID) (gamification.SetStats, error)

	// WithTx returns a SetStore that runs its statements in tx.
	WithTx(tx *sql.Tx) SetStore
}

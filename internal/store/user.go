package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
)

// LeaderboardRow is one user's public score.
type LeaderboardRow struct {
	UserID   uuid.UUID
	Username string
	Points   int
}

// UserStore defines the interface for user and ledger persistence.
type UserStore interface {
	// Create saves a new user with an empty ledger, hashing the plaintext
	// Password. Returns ErrUsernameExists if the username is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID. Returns ErrUserNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by exact username. Returns ErrUserNotFound if absent.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Update saves the username and, when Password is set, a new hash.
	// Returns ErrUserNotFound or ErrUsernameExists.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes the user together with their sets and ledger.
	Delete(ctx context.Context, id uuid.UUID) error

	// GetLedger loads the user's gamification ledger.
	GetLedger(ctx context.Context, id uuid.UUID) (*domain.Ledger, error)

	// SaveLedger overwrites the user's gamification ledger.
	SaveLedger(ctx context.Context, id uuid.UUID, ledger *domain.Ledger) error

	// Leaderboard lists every user's points.
	Leaderboard(ctx context.Context) ([]LeaderboardRow, error)

	// WithTx returns a UserStore that runs its statements in tx.
	WithTx(tx *sql.Tx) UserStore
}

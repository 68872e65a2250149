package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// UserStore implements store.UserStore in memory.
type UserStore struct {
	db         *DB
	bcryptCost int
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates a UserStore over db hashing passwords at bcryptCost.
func NewUserStore(db *DB, bcryptCost int) *UserStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	return &UserStore{db: db, bcryptCost: bcryptCost}
}

// Create implements store.UserStore.
func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if user.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = string(hash)
		user.Password = ""
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[user.ID]; ok {
		return store.ErrDuplicate
	}
	if s.usernameTakenLocked(user.Username, uuid.Nil) {
		return store.ErrUsernameExists
	}
	s.db.users[user.ID] = &userRecord{user: *user}
	return nil
}

// GetByID implements store.UserStore.
func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	rec, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	u := rec.user
	return &u, nil
}

// GetByUsername implements store.UserStore. Usernames compare case-insensitively.
func (s *UserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, rec := range s.db.users {
		if strings.EqualFold(rec.user.Username, username) {
			u := rec.user
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// Update implements store.UserStore.
func (s *UserStore) Update(_ context.Context, user *domain.User) error {
	if err := domain.ValidateUsername(user.Username); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	var hash string
	if user.Password != "" {
		if err := domain.ValidatePassword(user.Password); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		b, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		hash = string(b)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.users[user.ID]
	if !ok {
		return store.ErrUserNotFound
	}
	if s.usernameTakenLocked(user.Username, user.ID) {
		return store.ErrUsernameExists
	}
	rec.user.Username = user.Username
	if hash != "" {
		rec.user.HashedPassword = hash
		user.HashedPassword = hash
		user.Password = ""
	}
	rec.user.UpdatedAt = time.Now().UTC()
	user.UpdatedAt = rec.user.UpdatedAt
	return nil
}

// Delete implements store.UserStore. The user's sets go with them.
func (s *UserStore) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(s.db.users, id)
	for setID, set := range s.db.sets {
		if set.UserID == id {
			delete(s.db.sets, setID)
		}
	}
	return nil
}

// GetLedger implements store.UserStore.
func (s *UserStore) GetLedger(_ context.Context, id uuid.UUID) (*domain.Ledger, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	rec, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	l := cloneLedger(rec.ledger)
	return &l, nil
}

// SaveLedger implements store.UserStore.
func (s *UserStore) SaveLedger(_ context.Context, id uuid.UUID, ledger *domain.Ledger) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	rec.ledger = cloneLedger(*ledger)
	return nil
}

// Leaderboard implements store.UserStore. Rows come back in the same order
// as the SQL store: points descending, then username.
func (s *UserStore) Leaderboard(_ context.Context) ([]store.LeaderboardRow, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	rows := make([]store.LeaderboardRow, 0, len(s.db.users))
	for _, rec := range s.db.users {
		rows = append(rows, store.LeaderboardRow{
			UserID:   rec.user.ID,
			Username: rec.user.Username,
			Points:   rec.ledger.Points,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		return rows[i].Username < rows[j].Username
	})
	return rows, nil
}

// WithTx returns s; memory transactions are handled by Transactor.
func (s *UserStore) WithTx(_ *sql.Tx) store.UserStore {
	return s
}

func (s *UserStore) usernameTakenLocked(username string, except uuid.UUID) bool {
	for id, rec := range s.db.users {
		if id != except && strings.EqualFold(rec.user.Username, username) {
			return true
		}
	}
	return false
}

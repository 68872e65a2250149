package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/domain/gamification"
	"github.com/phrazzld/studyace/internal/store"
)

// SetStore implements store.SetStore in memory.
type SetStore struct {
	db *DB
}

var _ store.SetStore = (*SetStore)(nil)

// NewSetStore creates a SetStore over db.
func NewSetStore(db *DB) *SetStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	return &SetStore{db: db}
}

// Create implements store.SetStore.
func (s *SetStore) Create(_ context.Context, set *domain.FlashcardSet) error {
	if err := set.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[set.UserID]; !ok {
		return fmt.Errorf("%w: owner does not exist", store.ErrInvalidEntity)
	}
	if _, ok := s.db.sets[set.ID]; ok {
		return store.ErrDuplicate
	}
	s.db.sets[set.ID] = cloneSet(set)
	return nil
}

// GetByID implements store.SetStore.
func (s *SetStore) GetByID(_ context.Context, id uuid.UUID) (*domain.FlashcardSet, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	set, ok := s.db.sets[id]
	if !ok {
		return nil, store.ErrSetNotFound
	}
	return cloneSet(set), nil
}

// ListByUser implements store.SetStore.
func (s *SetStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.FlashcardSet, error) {
	s.db.mu.RLock()
	var out []*domain.FlashcardSet
	for _, set := range s.db.sets {
		if set.UserID == userID {
			out = append(out, cloneSet(set))
		}
	}
	s.db.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsDefault != b.IsDefault {
			return a.IsDefault
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return out, nil
}

// Update implements store.SetStore.
func (s *SetStore) Update(_ context.Context, set *domain.FlashcardSet) error {
	if err := set.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	existing, ok := s.db.sets[set.ID]
	if !ok {
		return store.ErrSetNotFound
	}
	set.UpdatedAt = time.Now().UTC()
	updated := cloneSet(set)
	updated.UserID = existing.UserID
	updated.IsDefault = existing.IsDefault
	updated.CreatedAt = existing.CreatedAt
	s.db.sets[set.ID] = updated
	return nil
}

// Delete implements store.SetStore.
func (s *SetStore) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.sets[id]; !ok {
		return store.ErrSetNotFound
	}
	delete(s.db.sets, id)
	return nil
}

// Stats implements store.SetStore.
func (s *SetStore) Stats(_ context.Context, userID uuid.UUID) (gamification.SetStats, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var stats gamification.SetStats
	for _, set := range s.db.sets {
		if set.UserID != userID || set.IsDefault {
			continue
		}
		stats.Sets++
		stats.Cards += len(set.Cards)
	}
	return stats, nil
}

// WithTx returns s; memory transactions are handled by Transactor.
func (s *SetStore) WithTx(_ *sql.Tx) store.SetStore {
	return s
}

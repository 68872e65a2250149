package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/domain/gamification"
	"github.com/phrazzld/studyace/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockSetStore is a mock of store.SetStore for use with testify/mock.
type MockSetStore struct {
	mock.Mock
}

var _ store.SetStore = (*MockSetStore)(nil)

// Create is a mock implementation of store.SetStore.Create
func (m *MockSetStore) Create(ctx context.Context, set *domain.FlashcardSet) error {
	return m.Called(ctx, set).Error(0)
}

// GetByID is a mock implementation of store.SetStore.GetByID
func (m *MockSetStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.FlashcardSet, error) {
	args := m.Called(ctx, id)
	if set, ok := args.Get(0).(*domain.FlashcardSet); ok {
		return set, args.Error(1)
	}
	return nil, args.Error(1)
}

// ListByUser is a mock implementation of store.SetStore.ListByUser
func (m *MockSetStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.FlashcardSet, error) {
	args := m.Called(ctx, userID)
	if sets, ok := args.Get(0).([]*domain.FlashcardSet); ok {
		return sets, args.Error(1)
	}
	return nil, args.Error(1)
}

// Update is a mock implementation of store.SetStore.Update
func (m *MockSetStore) Update(ctx context.Context, set *domain.FlashcardSet) error {
	return m.Called(ctx, set).Error(0)
}

// Delete is a mock implementation of store.SetStore.Delete
func (m *MockSetStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// Stats is a mock implementation of store.SetStore.Stats
func (m *MockSetStore) Stats(ctx context.Context, userID uuid.UUID) (gamification.SetStats, error) {
	args := m.Called(ctx, userID)
	stats, _ := args.Get(0).(gamification.SetStats)
	return stats, args.Error(1)
}

// WithTx is a mock implementation of store.SetStore.WithTx
func (m *MockSetStore) WithTx(tx *sql.Tx) store.SetStore {
	args := m.Called(tx)
	if ret, ok := args.Get(0).(store.SetStore); ok {
		return ret
	}
	return m
}

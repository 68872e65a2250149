//go:build integration

package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/domain/practice"
	"github.com/phrazzld/studyace/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_Integration(t *testing.T) {
	addr := os.Getenv("STUDYACE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("STUDYACE_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	rdb, err := Connect(ctx, addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	s := NewSessionStore(rdb, time.Minute, nil)
	sessionID := uuid.NewString()
	key := store.NewSessionKey(domain.AnonymousActor(sessionID), domain.DisciplineClassic, uuid.New())

	_, err = s.GetSession(ctx, key)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	state := &practice.SessionState{Discipline: domain.DisciplineClassic, SetID: key.SetID, Order: []int{1, 0}}
	require.NoError(t, s.SaveSession(ctx, key, state))
	got, err := s.GetSession(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, state.Order, got.Order)

	ttl, err := rdb.TTL(ctx, sessionKey(key)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, s.SaveLedger(ctx, sessionID, &domain.Ledger{Points: 12}))
	ledger, err := s.GetLedger(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 12, ledger.Points)

	require.NoError(t, s.DeleteSession(ctx, key))
	require.NoError(t, s.DeleteLedger(ctx, sessionID))
	_, err = s.GetLedger(ctx, sessionID)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

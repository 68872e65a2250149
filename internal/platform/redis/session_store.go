// Package redis implements store.SessionStore on Redis so that practice
// progress and anonymous ledgers survive restarts and are shared between
// server replicas.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/domain/practice"
	"github.com/phrazzld/studyace/internal/store"
)

const keyPrefix = "studyace:"

// SessionStore implements store.SessionStore with JSON values and a TTL
// refreshed on every write.
type SessionStore struct {
	rdb    goredis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

var _ store.SessionStore = (*SessionStore)(nil)

// Connect dials addr and verifies the connection with a ping.
func Connect(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewSessionStore creates a SessionStore over rdb.
func NewSessionStore(rdb goredis.Cmdable, ttl time.Duration, logger *slog.Logger) *SessionStore {
	if rdb == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("redis client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "redis_session_store")),
	}
}

// GetSession implements store.SessionStore.
func (s *SessionStore) GetSession(ctx context.Context, key store.SessionKey) (*practice.SessionState, error) {
	var state practice.SessionState
	if err := s.get(ctx, sessionKey(key), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveSession implements store.SessionStore.
func (s *SessionStore) SaveSession(ctx context.Context, key store.SessionKey, state *practice.SessionState) error {
	return s.set(ctx, sessionKey(key), state)
}

// DeleteSession implements store.SessionStore.
func (s *SessionStore) DeleteSession(ctx context.Context, key store.SessionKey) error {
	return s.rdb.Del(ctx, sessionKey(key)).Err()
}

// GetLedger implements store.SessionStore.
func (s *SessionStore) GetLedger(ctx context.Context, sessionID string) (*domain.Ledger, error) {
	var ledger domain.Ledger
	if err := s.get(ctx, ledgerKey(sessionID), &ledger); err != nil {
		return nil, err
	}
	return &ledger, nil
}

// SaveLedger implements store.SessionStore.
func (s *SessionStore) SaveLedger(ctx context.Context, sessionID string, ledger *domain.Ledger) error {
	return s.set(ctx, ledgerKey(sessionID), ledger)
}

// DeleteLedger implements store.SessionStore.
func (s *SessionStore) DeleteLedger(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, ledgerKey(sessionID)).Err()
}

func (s *SessionStore) get(ctx context.Context, key string, v any) error {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return store.ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("redis get: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Warn("discarding undecodable session entry",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return store.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func sessionKey(k store.SessionKey) string {
	return keyPrefix + "session:" + k.String()
}

func ledgerKey(sessionID string) string {
	return keyPrefix + "ledger:" + sessionID
}

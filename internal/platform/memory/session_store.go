package memory

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/domain/practice"
	"github.com/phrazzld/studyace/internal/store"
)

type sessionEntry struct {
	data    []byte
	expires time.Time
}

// SessionStore implements store.SessionStore in memory. Entries are stored
// JSON-encoded and expire ttl after their last write.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]sessionEntry
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

var _ store.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore whose entries live for ttl.
func NewSessionStore(ttl time.Duration, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		entries: make(map[string]sessionEntry),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger.With(slog.String("component", "memory_session_store")),
	}
}

// GetSession implements store.SessionStore.
func (s *SessionStore) GetSession(_ context.Context, key store.SessionKey) (*practice.SessionState, error) {
	var state practice.SessionState
	if err := s.get(sessionPrefix+key.String(), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveSession implements store.SessionStore.
func (s *SessionStore) SaveSession(_ context.Context, key store.SessionKey, state *practice.SessionState) error {
	return s.put(sessionPrefix+key.String(), state)
}

// DeleteSession implements store.SessionStore.
func (s *SessionStore) DeleteSession(_ context.Context, key store.SessionKey) error {
	s.delete(sessionPrefix + key.String())
	return nil
}

// GetLedger implements store.SessionStore.
func (s *SessionStore) GetLedger(_ context.Context, sessionID string) (*domain.Ledger, error) {
	var ledger domain.Ledger
	if err := s.get(ledgerPrefix+sessionID, &ledger); err != nil {
		return nil, err
	}
	return &ledger, nil
}

// SaveLedger implements store.SessionStore.
func (s *SessionStore) SaveLedger(_ context.Context, sessionID string, ledger *domain.Ledger) error {
	return s.put(ledgerPrefix+sessionID, ledger)
}

// DeleteLedger implements store.SessionStore.
func (s *SessionStore) DeleteLedger(_ context.Context, sessionID string) error {
	s.delete(ledgerPrefix + sessionID)
	return nil
}

// Cleanup removes expired entries and returns how many were dropped.
func (s *SessionStore) Cleanup() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if now.After(entry.expires) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// RunJanitor calls Cleanup every interval until ctx is done.
func (s *SessionStore) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Cleanup(); n > 0 {
				s.logger.Debug("removed expired session entries", slog.Int("count", n))
			}
		}
	}
}

const (
	sessionPrefix = "session:"
	ledgerPrefix  = "ledger:"
)

func (s *SessionStore) get(key string, v any) error {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || s.now().After(entry.expires) {
		return store.ErrSessionNotFound
	}
	return json.Unmarshal(entry.data, v)
}

func (s *SessionStore) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = sessionEntry{data: data, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *SessionStore) delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

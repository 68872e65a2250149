package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/domain/practice"
)

// SessionKey addresses one practice run.
type SessionKey struct {
	Actor      string
	Discipline domain.Discipline
	SetID      uuid.UUID
}

// NewSessionKey builds the key for actor practising setID under d.
func NewSessionKey(actor domain.Actor, d domain.Discipline, setID uuid.UUID) SessionKey {
	return SessionKey{Actor: actor.Key(), Discipline: d, SetID: setID}
}

// String renders the key for logs and key-value backends.
func (k SessionKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Actor, k.Discipline, k.SetID)
}

// SessionStore keeps ephemeral per-session data. Entries may expire at any
// time; a missing entry reads as ErrSessionNotFound.
type SessionStore interface {
	GetSession(ctx context.Context, key SessionKey) (*practice.SessionState, error)
	SaveSession(ctx context.Context, key SessionKey, state *practice.SessionState) error
	DeleteSession(ctx context.Context, key SessionKey) error

	// GetLedger loads the ledger of an anonymous session.
	GetLedger(ctx context.Context, sessionID string) (*domain.Ledger, error)
	SaveLedger(ctx context.Context, sessionID string, ledger *domain.Ledger) error
	DeleteLedger(ctx context.Context, sessionID string) error
}

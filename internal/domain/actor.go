package domain

import "github.com/google/uuid"

// Actor identifies who is practising: a registered user, or an anonymous
// browser session identified by an opaque session ID.
type Actor struct {
	UserID    uuid.UUID
	SessionID string
}

// UserActor returns an Actor for a registered user.
func UserActor(id uuid.UUID) Actor {
	return Actor{UserID: id}
}

// AnonymousActor returns an Actor for an anonymous session.
func AnonymousActor(sessionID string) Actor {
	return Actor{SessionID: sessionID}
}

// Authenticated reports whether the actor is a registered user.
func (a Actor) Authenticated() bool {
	return a.UserID != uuid.Nil
}

// Valid reports whether the actor carries an identity at all.
func (a Actor) Valid() bool {
	return a.Authenticated() || a.SessionID != ""
}

// Key is a stable string identity used to namespace session storage.
func (a Actor) Key() string {
	if a.Authenticated() {
		return "user:" + a.UserID.String()
	}
	return "anon:" + a.SessionID
}

package middleware

import (
	"net/http"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/phrazzld/studyace/internal/api/shared"
)

// sessionIDLength is the nanoid length of issued session IDs.
const sessionIDLength = 21

// SessionMiddleware gives every browser an opaque session ID kept in a
// cookie. The ID identifies anonymous practice and, at login, which
// anonymous challenge progress to carry over.
type SessionMiddleware struct {
	cookieName string
	maxAge     time.Duration
	secure     bool
	newID      func() (string, error)
}

// NewSessionMiddleware creates a SessionMiddleware issuing cookies named
// cookieName that live for maxAge.
func NewSessionMiddleware(cookieName string, maxAge time.Duration, secure bool) *SessionMiddleware {
	if cookieName == "" {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("cookieName cannot be empty")
	}
	return &SessionMiddleware{
		cookieName: cookieName,
		maxAge:     maxAge,
		secure:     secure,
		newID: func() (string, error) {
			return gonanoid.New(sessionIDLength)
		},
	}
}

// Handle reads the session cookie, issuing a fresh one when it is missing or
// malformed, and stores the ID in the request context.
func (m *SessionMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		if c, err := r.Cookie(m.cookieName); err == nil && validSessionID(c.Value) {
			sessionID = c.Value
		} else {
			id, err := m.newID()
			if err != nil {
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
					"Failed to start session", err)
				return
			}
			sessionID = id
			http.SetCookie(w, &http.Cookie{
				Name:     m.cookieName,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   int(m.maxAge.Seconds()),
				HttpOnly: true,
				Secure:   m.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(shared.WithSessionID(r.Context(), sessionID)))
	})
}

// GetSessionID extracts the anonymous session ID from the request context.
func GetSessionID(r *http.Request) string {
	return shared.SessionIDFromContext(r.Context())
}

func validSessionID(id string) bool {
	if len(id) != sessionIDLength {
		return false
	}
	for _, c := range id {
		if !isNanoidRune(c) {
			return false
		}
	}
	return true
}

func isNanoidRune(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '_' || c == '-'
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/mocks"
	"github.com/phrazzld/studyace/internal/service/auth"
	"github.com/stretchr/testify/assert"
)

// echoUser responds 200 with the context's user ID, or "anonymous".
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if id, ok := GetUserID(r); ok {
		_, _ = w.Write([]byte(id.String()))
		return
	}
	_, _ = w.Write([]byte("anonymous"))
})

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	jwt := mocks.NewMockJWTService()
	expired := mocks.NewMockJWTService()
	expired.ValidateTokenFn = func(context.Context, string) (*auth.Claims, error) {
		return nil, auth.ErrExpiredToken
	}
	broken := mocks.NewMockJWTService()
	broken.ValidateTokenFn = func(context.Context, string) (*auth.Claims, error) {
		return nil, errors.New("key store offline")
	}

	tests := []struct {
		name         string
		jwt          auth.JWTService
		header       string
		optional     bool
		wantStatus   int
		wantContains string
	}{
		{"valid token", jwt, "Bearer " + mocks.AccessToken(userID), false, http.StatusOK, userID.String()},
		{"missing header", jwt, "", false, http.StatusUnauthorized, "Authorization header required"},
		{"missing header optional", jwt, "", true, http.StatusOK, "anonymous"},
		{"not bearer", jwt, "Basic abc", false, http.StatusUnauthorized, "Invalid authorization format"},
		{"bad token optional", jwt, "Bearer junk", true, http.StatusUnauthorized, "Invalid token"},
		{"refresh token as access", jwt, "Bearer " + mocks.RefreshToken(userID), false, http.StatusUnauthorized, "Invalid token"},
		{"expired", expired, "Bearer x", false, http.StatusUnauthorized, "Token expired"},
		{"validator failure", broken, "Bearer x", true, http.StatusInternalServerError, "Authentication error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mw := NewAuthMiddleware(tt.jwt)
			handler := mw.Authenticate(echoUser)
			if tt.optional {
				handler = mw.Optional(echoUser)
			}

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantContains)
		})
	}
}

func TestNewAuthMiddleware_PanicsOnNil(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewAuthMiddleware(nil) })
}

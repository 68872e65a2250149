package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/api/shared"
	"github.com/phrazzld/studyace/internal/platform/logger"
	"github.com/phrazzld/studyace/internal/service/account"
	"github.com/phrazzld/studyace/internal/service/auth"
	"github.com/phrazzld/studyace/internal/store"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	accounts      account.Service
	jwtService    auth.JWTService
	tokenLifetime time.Duration
	timeFunc      func() time.Time
}

// NewAuthHandler creates a new AuthHandler. tokenLifetime is reported back to
// clients as the access token expiry.
func NewAuthHandler(
	accounts account.Service,
	jwtService auth.JWTService,
	tokenLifetime time.Duration,
) *AuthHandler {
	if accounts == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("accounts cannot be nil")
	}
	if jwtService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("jwtService cannot be nil")
	}
	return &AuthHandler{
		accounts:      accounts,
		jwtService:    jwtService,
		tokenLifetime: tokenLifetime,
		timeFunc:      time.Now,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	resp, ok := h.issueTokens(w, r, user.ID)
	if !ok {
		return
	}
	resp.Username = user.Username
	shared.RespondWithJSON(w, r, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login. Today's challenge progress made in the
// caller's anonymous session is carried over to the account.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sessionID := shared.SessionIDFromContext(r.Context())
	user, err := h.accounts.Authenticate(r.Context(), req.Username, req.Password, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	resp, ok := h.issueTokens(w, r, user.ID)
	if !ok {
		return
	}
	resp.Username = user.Username
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// RefreshToken handles POST /api/auth/refresh, exchanging a valid refresh
// token for a new token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	// A deleted account keeps no valid session.
	if _, err := h.accounts.GetUser(r.Context(), claims.UserID); err != nil {
		if store.IsNotFoundError(err) {
			err = auth.ErrInvalidRefreshToken
		}
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	resp, ok := h.issueTokens(w, r, claims.UserID)
	if !ok {
		return
	}

	log.Debug("token refreshed", slog.String("user_id", claims.UserID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, RefreshTokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    resp.ExpiresAt,
	})
}

func (h *AuthHandler) issueTokens(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (AuthResponse, bool) {
	accessToken, err := h.jwtService.GenerateToken(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate authentication token")
		return AuthResponse{}, false
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate refresh token")
		return AuthResponse{}, false
	}

	return AuthResponse{
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    h.timeFunc().Add(h.tokenLifetime).UTC().Format(time.RFC3339),
	}, true
}

package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/api/shared"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/service/account"
)

// defaultLeaderboardLimit caps the leaderboard when no limit is given.
const defaultLeaderboardLimit = 50

// AccountHandler serves the signed-in user's profile, dashboard and the
// leaderboard.
type AccountHandler struct {
	accounts account.Service
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts account.Service) *AccountHandler {
	if accounts == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("accounts cannot be nil")
	}
	return &AccountHandler{accounts: accounts}
}

// Dashboard handles GET /api/me.
func (h *AccountHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	dash, err := h.accounts.Dashboard(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load dashboard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, dash)
}

// ChangeUsername handles PUT /api/me/username.
func (h *AccountHandler) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req ChangeUsernameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.accounts.ChangeUsername(r.Context(), userID, req.Username); err != nil {
		HandleAPIError(w, r, err, "Failed to change username")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword handles PUT /api/me/password.
func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		HandleAPIError(w, r, err, "Failed to change password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAccount handles DELETE /api/me.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req DeleteAccountRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.accounts.Delete(r.Context(), userID, req.Password); err != nil {
		HandleAPIError(w, r, err, "Failed to delete account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Leaderboard handles GET /api/leaderboard?limit=. Signed-in callers also get
// their own standing.
func (h *AccountHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := getQueryInt(r, "limit", defaultLeaderboardLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	viewer, _ := getUserIDFromContext(r)
	board, err := h.accounts.Leaderboard(r.Context(), viewer, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load leaderboard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, board)
}

func (h *AccountHandler) requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, false
	}
	return userID, true
}

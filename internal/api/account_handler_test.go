package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/phrazzld/studyace/internal/api/shared"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/domain/gamification"
	"github.com/phrazzld/studyace/internal/service/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	user := a.register(t, "ada")

	t.Run("requires a token", func(t *testing.T) {
		w := a.do(t, request{method: http.MethodGet, path: "/api/me"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Authorization header required", decodeBody[shared.ErrorResponse](t, w).Error)
	})

	t.Run("fresh account", func(t *testing.T) {
		w := a.do(t, request{method: http.MethodGet, path: "/api/me", userID: user.ID})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		dash := decodeBody[account.Dashboard](t, w)
		assert.Equal(t, "ada", dash.Username)
		assert.Equal(t, 0, dash.Points)
		assert.Equal(t, 1, dash.Streak)
		assert.Equal(t, gamification.Levels[0].Name, dash.Level)
		require.NotNil(t, dash.NextLevel)
		assert.Equal(t, dash.NextLevel.MinPoints, dash.PointsToNextLevel)
		assert.Empty(t, dash.Achievements, "the default set does not count")
		assert.Equal(t, domain.DailyChallengeGoal, dash.Challenge.Goal)
	})
}

func TestChangeUsername(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	ada := a.register(t, "ada")
	a.register(t, "grace")

	tests := []struct {
		name       string
		username   string
		wantStatus int
	}{
		{"renamed", "countess", http.StatusNoContent},
		{"taken", "grace", http.StatusConflict},
		{"blank", "", http.StatusBadRequest},
		{"contains whitespace", "ada l", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(t, request{
				method: http.MethodPut,
				path:   "/api/me/username",
				body:   ChangeUsernameRequest{Username: tt.username},
				userID: ada.ID,
			})
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}

	user, err := a.accounts.GetUser(context.Background(), ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "countess", user.Username)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	user := a.register(t, "ada")

	w := a.do(t, request{
		method: http.MethodPut,
		path:   "/api/me/password",
		body:   ChangePasswordRequest{CurrentPassword: "wrong-password", NewPassword: "new-password"},
		userID: user.ID,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, request{
		method: http.MethodPut,
		path:   "/api/me/password",
		body:   ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "new-password"},
		userID: user.ID,
	})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = a.do(t, request{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   LoginRequest{Username: "ada", Password: "new-password"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteAccount(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	user := a.register(t, "ada")

	w := a.do(t, request{
		method: http.MethodDelete,
		path:   "/api/me",
		body:   DeleteAccountRequest{Password: "nope-nope"},
		userID: user.ID,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, request{
		method: http.MethodDelete,
		path:   "/api/me",
		body:   DeleteAccountRequest{Password: "password123"},
		userID: user.ID,
	})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	sets, err := a.sets.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, sets)

	w = a.do(t, request{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   LoginRequest{Username: "ada", Password: "password123"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLeaderboard(t *testing.T) {
	t.Parallel()
	a := newTestAPI(t)
	ctx := context.Background()

	points := map[string]int{"ada": 90, "grace": 90, "linus": 50, "ken": 10}
	ids := make(map[string]*domain.User)
	for name, p := range points {
		u := a.register(t, name)
		ids[name] = u
		require.NoError(t, a.users.SaveLedger(ctx, u.ID, &domain.Ledger{Points: p}))
	}

	t.Run("anonymous viewer", func(t *testing.T) {
		w := a.do(t, request{method: http.MethodGet, path: "/api/leaderboard"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		board := decodeBody[account.Leaderboard](t, w)
		assert.Equal(t, 4, board.Total)
		assert.Nil(t, board.Viewer)
		ranks := make([]int, 0, len(board.Standings))
		for _, s := range board.Standings {
			ranks = append(ranks, s.Rank)
		}
		assert.Equal(t, []int{1, 1, 3, 4}, ranks)
	})

	t.Run("limit keeps the viewer's own standing", func(t *testing.T) {
		w := a.do(t, request{method: http.MethodGet, path: "/api/leaderboard?limit=2", userID: ids["ken"].ID})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		board := decodeBody[account.Leaderboard](t, w)
		assert.Len(t, board.Standings, 2)
		require.NotNil(t, board.Viewer)
		assert.Equal(t, 4, board.Viewer.Rank)
		assert.Equal(t, "ken", board.Viewer.DisplayName)
	})

	t.Run("bad limit", func(t *testing.T) {
		w := a.do(t, request{method: http.MethodGet, path: "/api/leaderboard?limit=-1"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// Package account manages registered users: registration, credential
// checks, profile changes, the dashboard view of a user's ledger and the
// leaderboard.
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/domain/gamification"
)

// Dashboard is a user's engagement overview.
type Dashboard struct {
	UserID            uuid.UUID             `json:"user_id"`
	Username          string                `json:"username"`
	Points            int                   `json:"points"`
	Streak            int                   `json:"streak"`
	Level             string                `json:"level"`
	NextLevel         *gamification.Level   `json:"next_level,omitempty"`
	PointsToNextLevel int                   `json:"points_to_next_level,omitempty"`
	Badges            []string              `json:"badges"`
	Achievements      []string              `json:"achievements"`
	LatestAchievement string                `json:"latest_achievement,omitempty"`
	Challenge         domain.DailyChallenge `json:"challenge"`
}

// Leaderboard is the ranked list of users plus the viewer's own row.
type Leaderboard struct {
	Standings []gamification.Standing `json:"standings"`
	// Viewer is nil for anonymous viewers.
	Viewer *gamification.Standing `json:"viewer,omitempty"`
	Total  int                    `json:"total"`
}

// Service defines the account operations.
type Service interface {
	// Register creates a user and seeds their default flashcard set.
	// Returns store.ErrUsernameExists when the name is taken and a
	// domain.ErrValidation wrapped error for invalid input.
	Register(ctx context.Context, username, password string) (*domain.User, error)

	// Authenticate checks credentials. When anonymousSessionID names a
	// session with progress on today's challenge, that progress is carried
	// into the user's ledger. Returns ErrInvalidCredentials on any mismatch.
	Authenticate(ctx context.Context, username, password, anonymousSessionID string) (*domain.User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// Dashboard records activity for today and returns the user's overview.
	Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error)

	// ChangeUsername renames a user.
	ChangeUsername(ctx context.Context, userID uuid.UUID, username string) error

	// ChangePassword replaces the password after checking the current one.
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error

	// Delete removes the user with all their sets after checking password.
	Delete(ctx context.Context, userID uuid.UUID, password string) error

	// Leaderboard ranks every user. limit > 0 trims the returned standings;
	// the viewer's own row is always looked up in the full ranking.
	Leaderboard(ctx context.Context, viewer uuid.UUID, limit int) (*Leaderboard, error)
}

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ServiceError wraps errors from the account service with additional context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "register", "dashboard")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newError(operation, message string, err error) *ServiceError {
	return &ServiceError{Operation: operation, Message: message, Err: err}
}

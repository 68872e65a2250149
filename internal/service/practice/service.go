// Package practice runs practice sessions for users and anonymous visitors,
// persisting session progress and applying the gamification rewards that
// graded answers earn.
package practice

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
	engine "github.com/phrazzld/studyace/internal/domain/practice"
)

// Outcome is the result of one submitted answer together with the ledger
// changes it caused.
type Outcome struct {
	engine.Result

	// NewBadges lists badges first shown because of this answer.
	NewBadges []string `json:"new_badges,omitempty"`
	// NewAchievements lists achievements first shown because of this answer.
	NewAchievements []string `json:"new_achievements,omitempty"`
	TotalPoints     int      `json:"total_points"`
	Streak          int      `json:"streak"`
	Level           string   `json:"level"`
}

// Service drives practice for any actor, registered or anonymous.
type Service interface {
	// StartOrResume returns the current question of the actor's session over
	// setID in discipline d, starting a new session when none is live.
	//
	// Returns:
	//   - store.ErrSetNotFound when the set does not exist or is private to someone else
	//   - engine.ErrInsufficientCards when the set cannot support d
	//   - engine.ErrUnknownDiscipline for unsupported disciplines
	StartOrResume(ctx context.Context, actor domain.Actor, setID uuid.UUID, d domain.Discipline) (*engine.Question, error)

	// SubmitAnswer grades answer against the current question, applies the
	// rewards to the actor's ledger and advances the session. Finishing the
	// last question clears the session.
	//
	// Returns engine.ErrNoActiveSession when there is no live session for the
	// same set and discipline.
	SubmitAnswer(
		ctx context.Context,
		actor domain.Actor,
		setID uuid.UUID,
		d domain.Discipline,
		answer engine.Answer,
	) (*Outcome, error)

	// ChallengeStatus returns today's daily challenge for the actor.
	ChallengeStatus(ctx context.Context, actor domain.Actor) (domain.DailyChallenge, error)
}

// ErrMissingActor is returned when a request carries neither a user nor an
// anonymous session.
var ErrMissingActor = errors.New("no user or session for practice request")

// ServiceError wraps errors from the practice service with additional context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_or_resume", "submit_answer")
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

// NewStartOrResumeError returns a new ServiceError for the start_or_resume operation.
func NewStartOrResumeError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "start_or_resume", Message: message, Err: err}
}

// NewSubmitAnswerError returns a new ServiceError for the submit_answer operation.
func NewSubmitAnswerError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "submit_answer", Message: message, Err: err}
}

// NewChallengeStatusError returns a new ServiceError for the challenge_status operation.
func NewChallengeStatusError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "challenge_status", Message: message, Err: err}
}

package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the services.
const (
	TypeUserRegistered     = "user_registered"
	TypeAnswerGraded       = "answer_graded"
	TypeSessionCompleted   = "session_completed"
	TypeChallengeCompleted = "challenge_completed"
	TypeBadgeEarned        = "badge_earned"
)

// Event is a single notification. Payload holds the type-specific data
// serialized as JSON.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Actor     string          `json:"actor"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event of the given type for actor, serializing payload.
func NewEvent(eventType, actor string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Actor:     actor,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UserRegistered is the payload of TypeUserRegistered.
type UserRegistered struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// AnswerGraded is the payload of TypeAnswerGraded.
type AnswerGraded struct {
	SetID      uuid.UUID `json:"set_id"`
	Discipline string    `json:"discipline"`
	Verdict    string    `json:"verdict"`
	Points     int       `json:"points"`
}

// SessionCompleted is the payload of TypeSessionCompleted.
type SessionCompleted struct {
	SetID      uuid.UUID `json:"set_id"`
	Discipline string    `json:"discipline"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
}

// ChallengeCompleted is the payload of TypeChallengeCompleted.
type ChallengeCompleted struct {
	Date  string `json:"date"`
	Bonus int    `json:"bonus"`
}

// BadgeEarned is the payload of TypeBadgeEarned.
type BadgeEarned struct {
	Badge string `json:"badge"`
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}

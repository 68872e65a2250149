package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=32"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`

	// AccessToken is the JWT used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT used to obtain new access tokens
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the RFC 3339 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}

// ChangeUsernameRequest renames the signed-in user.
type ChangeUsernameRequest struct {
	Username string `json:"username" validate:"required,max=32"`
}

// ChangePasswordRequest replaces the signed-in user's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72"`
}

// DeleteAccountRequest confirms account deletion with the current password.
type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// CardRequest is one card row of a set payload. Rows missing a term or a
// definition are dropped by the service.
type CardRequest struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Tags       string `json:"tags,omitempty"`
}

// SetRequest defines the payload for creating or replacing a set.
type SetRequest struct {
	Title    string        `json:"title"     validate:"required,max=200"`
	IsPublic bool          `json:"is_public"`
	Cards    []CardRequest `json:"cards"     validate:"required,min=2"`
}

// AnswerRequest is a submitted practice answer. Choice is the 1-based option
// number for multiple choice.
type AnswerRequest struct {
	Answer string `json:"answer"`
	Choice int    `json:"choice,omitempty" validate:"gte=0"`
}

// CardResponse is the API view of a flashcard.
type CardResponse struct {
	ID         uuid.UUID `json:"id"`
	Position   int       `json:"position"`
	Term       string    `json:"term"`
	Definition string    `json:"definition"`
	Tags       []string  `json:"tags,omitempty"`
}

// SetResponse is the API view of a set with its cards.
type SetResponse struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Title     string         `json:"title"`
	IsDefault bool           `json:"is_default"`
	IsPublic  bool           `json:"is_public"`
	Cards     []CardResponse `json:"cards"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SetSummaryResponse is a set entry in a listing.
type SetSummaryResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	IsDefault bool      `json:"is_default"`
	IsPublic  bool      `json:"is_public"`
	CardCount int       `json:"card_count"`
	CreatedAt time.Time `json:"created_at"`
}

// TagsResponse lists the distinct tags of a set.
type TagsResponse struct {
	Tags []string `json:"tags"`
}

// CardsResponse lists cards matching a search or a tag.
type CardsResponse struct {
	Cards []CardResponse `json:"cards"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

func cardInputs(cards []CardRequest) []domain.CardInput {
	out := make([]domain.CardInput, 0, len(cards))
	for _, c := range cards {
		out = append(out, domain.CardInput{Term: c.Term, Definition: c.Definition, Tags: c.Tags})
	}
	return out
}

func cardToResponse(c domain.Flashcard) CardResponse {
	return CardResponse{
		ID:         c.ID,
		Position:   c.Position,
		Term:       c.Term,
		Definition: c.Definition,
		Tags:       c.TagList(),
	}
}

func cardsToResponse(cards []domain.Flashcard) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardToResponse(c))
	}
	return out
}

func setToResponse(set *domain.FlashcardSet) SetResponse {
	return SetResponse{
		ID:        set.ID,
		UserID:    set.UserID,
		Title:     set.Title,
		IsDefault: set.IsDefault,
		IsPublic:  set.IsPublic,
		Cards:     cardsToResponse(set.Cards),
		CreatedAt: set.CreatedAt,
		UpdatedAt: set.UpdatedAt,
	}
}

func setsToSummaries(sets []*domain.FlashcardSet) []SetSummaryResponse {
	out := make([]SetSummaryResponse, 0, len(sets))
	for _, s := range sets {
		out = append(out, SetSummaryResponse{
			ID:        s.ID,
			Title:     s.Title,
			IsDefault: s.IsDefault,
			IsPublic:  s.IsPublic,
			CardCount: len(s.Cards),
			CreatedAt: s.CreatedAt,
		})
	}
	return out
}

package mocks

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/service/auth"
)

const (
	accessPrefix  = "access."
	refreshPrefix = "refresh."
)

// MockJWTService implements auth.JWTService for testing. By default it issues
// readable tokens of the form "access.<user id>" and "refresh.<user id>" and
// validates them back, so handler tests can authenticate without signing
// keys. Any Fn field overrides the matching method.
type MockJWTService struct {
	GenerateTokenFn        func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn        func(ctx context.Context, tokenString string) (*auth.Claims, error)
	GenerateRefreshTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateRefreshTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Lifetime sets ExpiresAt on issued claims. Defaults to one hour.
	Lifetime time.Duration
}

var _ auth.JWTService = (*MockJWTService)(nil)

// NewMockJWTService returns a MockJWTService with default behavior.
func NewMockJWTService() *MockJWTService {
	return &MockJWTService{Lifetime: time.Hour}
}

// AccessToken returns the token the default GenerateToken issues for userID.
func AccessToken(userID uuid.UUID) string {
	return accessPrefix + userID.String()
}

// RefreshToken returns the token the default GenerateRefreshToken issues for userID.
func RefreshToken(userID uuid.UUID) string {
	return refreshPrefix + userID.String()
}

// GenerateToken implements auth.JWTService.
func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	return AccessToken(userID), nil
}

// ValidateToken implements auth.JWTService.
func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return m.decode(tokenString, accessPrefix, auth.TokenTypeAccess, auth.ErrInvalidToken)
}

// GenerateRefreshToken implements auth.JWTService.
func (m *MockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateRefreshTokenFn != nil {
		return m.GenerateRefreshTokenFn(ctx, userID)
	}
	return RefreshToken(userID), nil
}

// ValidateRefreshToken implements auth.JWTService.
func (m *MockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateRefreshTokenFn != nil {
		return m.ValidateRefreshTokenFn(ctx, tokenString)
	}
	return m.decode(tokenString, refreshPrefix, auth.TokenTypeRefresh, auth.ErrInvalidRefreshToken)
}

func (m *MockJWTService) decode(token, prefix, tokenType string, invalid error) (*auth.Claims, error) {
	if !strings.HasPrefix(token, prefix) {
		if strings.HasPrefix(token, accessPrefix) || strings.HasPrefix(token, refreshPrefix) {
			return nil, auth.ErrWrongTokenType
		}
		return nil, invalid
	}
	userID, err := uuid.Parse(strings.TrimPrefix(token, prefix))
	if err != nil {
		return nil, invalid
	}

	lifetime := m.Lifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	now := time.Now()
	return &auth.Claims{
		UserID:    userID,
		TokenType: tokenType,
		Subject:   userID.String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(lifetime),
		ID:        uuid.NewString(),
	}, nil
}

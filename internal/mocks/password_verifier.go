package mocks

import (
	"errors"

	"github.com/phrazzld/studyace/internal/service/auth"
)

// ErrPasswordMismatch is the default failure of a rejecting MockPasswordVerifier.
var ErrPasswordMismatch = errors.New("password mismatch")

// MockPasswordVerifier implements auth.PasswordVerifier without bcrypt.
type MockPasswordVerifier struct {
	// Accept makes every comparison succeed.
	Accept bool

	// CompareFn allows for custom comparison logic in tests
	CompareFn func(hashedPassword, password string) error

	// Calls records the plaintext passwords passed to Compare.
	Calls []string
}

var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)

// Compare implements auth.PasswordVerifier.
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.Calls = append(m.Calls, password)
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if m.Accept {
		return nil
	}
	return ErrPasswordMismatch
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/studyace/internal/api/shared"
	"github.com/phrazzld/studyace/internal/domain"
	engine "github.com/phrazzld/studyace/internal/domain/practice"
	"github.com/phrazzld/studyace/internal/interchange"
	"github.com/phrazzld/studyace/internal/service"
	"github.com/phrazzld/studyace/internal/service/account"
	"github.com/phrazzld/studyace/internal/service/auth"
	"github.com/phrazzld/studyace/internal/service/practice"
	"github.com/phrazzld/studyace/internal/store"
)

// userFacingErrors are domain errors whose own text is safe and useful to
// show to clients. The first match in the error chain wins.
var userFacingErrors = []error{
	domain.ErrEmptyUsername,
	domain.ErrUsernameTooLong,
	domain.ErrInvalidUsername,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
	domain.ErrEmptyPassword,
	domain.ErrEmptySetTitle,
	domain.ErrSetTitleTooLong,
	domain.ErrTooFewCards,
	domain.ErrEmptyTerm,
	domain.ErrEmptyDefinition,
	service.ErrMissingTitle,
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, account.ErrInvalidCredentials),
		errors.Is(err, practice.ErrMissingActor),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrUsernameExists),
		errors.Is(err, service.ErrDefaultSetProtected),
		errors.Is(err, engine.ErrNoActiveSession):
		return http.StatusConflict

	// The set exists but cannot support the requested discipline
	case errors.Is(err, engine.ErrInsufficientCards):
		return http.StatusUnprocessableEntity

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrUnknownDiscipline),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, interchange.ErrUnsupportedFormat),
		errors.Is(err, interchange.ErrMalformedDeck),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	for _, target := range userFacingErrors {
		if errors.Is(err, target) {
			return capitalize(target.Error())
		}
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return SanitizeValidationError(validationErrs)
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, account.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, practice.ErrMissingActor),
		errors.Is(err, domain.ErrUnauthorized):
		return "Authentication required"

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this set"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrSetNotFound):
		return "Set not found"

	case store.IsNotFoundError(err):
		return "Resource not found"

	// Conflict errors
	case errors.Is(err, store.ErrUsernameExists):
		return "Username already exists"

	case errors.Is(err, service.ErrDefaultSetProtected):
		return "The default set cannot be deleted"

	case errors.Is(err, engine.ErrNoActiveSession):
		return "No active practice session"

	case errors.Is(err, engine.ErrInsufficientCards):
		return "This set does not have enough cards for that practice mode"

	// Bad request errors
	case errors.Is(err, domain.ErrUnknownDiscipline):
		return "Unknown practice mode"

	case errors.Is(err, interchange.ErrUnsupportedFormat):
		return "Unsupported file format"

	case errors.Is(err, interchange.ErrMalformedDeck):
		return "Malformed deck file"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"

	case errors.Is(err, shared.ErrEmptyBody),
		errors.Is(err, domain.ErrInvalidFormat):
		return "Invalid request format"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message naming the first failing field.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		fe := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}

	// Fall back to a generic validation error message
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gte", "gt":
		return "too small"
	case "lte", "lt":
		return "too large"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the error response for err: the status code from
// MapErrorToStatusCode and a safe message. customMsg replaces the safe
// message for 5xx responses, where the generic text says little. Auth
// failures are logged at WARN.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, customMsg string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if customMsg != "" && status >= http.StatusInternalServerError {
		msg = customMsg
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err, opts...)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

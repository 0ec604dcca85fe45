package managers

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrInvalidOrExpiredResetCode = errors.New("invalid or expired reset token")
	ErrActivationCodeNotFound    = errors.New("activation code not found")
	ErrAlreadyActivated          = errors.New("account already activated")

	// ErrInvalidToken is returned for tokens with a bad signature, algorithm or payload.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ValidationError carries the user-facing messages of a rejected input.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

func newValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

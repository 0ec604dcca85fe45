// Package schemas defines the request and response bodies of the HTTP API.
package schemas

// Request fields are plain strings. Rule checks happen in the account manager so that
// every failure is reported in one list instead of stopping at the binder.

// RegistrationRequest is a struct that represents a registration request
type RegistrationRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// LoginRequest is a struct that represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ForgotPasswordRequest is a struct that represents a password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is a struct that represents the completion of a password reset
// ResetToken is the code sent by mail
type ResetPasswordRequest struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

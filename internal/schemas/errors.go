package schemas

// CustomError is the machine readable part of every error response.
type CustomError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	ValidationFailed = &CustomError{
		Code:    "ERR-001",
		Message: "Validation failed",
	}
	InvalidCredentials = &CustomError{
		Code:    "ERR-002",
		Message: "Invalid username or password",
	}
	InvalidOrExpiredResetToken = &CustomError{
		Code:    "ERR-003",
		Message: "Invalid or expired reset token",
	}
	ActivationCodeNotFound = &CustomError{
		Code:    "ERR-004",
		Message: "Activation code not found",
	}
	AlreadyActivated = &CustomError{
		Code:    "ERR-005",
		Message: "Account already activated",
	}
	NoTokenProvided = &CustomError{
		Code:    "ERR-006",
		Message: "Unauthorized - No token provided",
	}
	InvalidToken = &CustomError{
		Code:    "ERR-007",
		Message: "Unauthorized - Invalid token",
	}
	InvalidJSON = &CustomError{
		Code:    "ERR-008",
		Message: "Invalid JSON format",
	}
	InternalServerError = &CustomError{
		Code:    "ERR-009",
		Message: "Internal server error",
	}
	RouteNotFound = &CustomError{
		Code:    "ERR-010",
		Message: "Not found",
	}
)

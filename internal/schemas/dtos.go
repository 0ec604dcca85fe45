package schemas

// ErrorDTO is a struct that represents an error response
// Error is the custom error, see CustomError
// Errors holds the individual messages of a failed validation
type ErrorDTO struct {
	Error  CustomError `json:"error"`
	Errors []string    `json:"errors,omitempty"`
}

// MessageDTO is a struct that represents a plain success response
type MessageDTO struct {
	Message string `json:"message"`
}

// MeDTO wraps the decoded claims of the authenticated session
type MeDTO struct {
	User interface{} `json:"user"`
}

// HealthDTO reports the state of the storage backend
type HealthDTO struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

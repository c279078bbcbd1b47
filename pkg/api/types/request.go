package types

import "strings"

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// Validate checks that text is present. Length bounds are enforced by the
// analysis service.
func (r *AnalyzeRequest) Validate() error {
	if r.Text == "" {
		return &ValidationError{Field: "text", Message: "text is required"}
	}
	return nil
}

// CredentialsRequest is the body of the register and login endpoints.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both fields are present.
func (r *CredentialsRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if r.Password == "" {
		return &ValidationError{Field: "password", Message: "password is required"}
	}
	return nil
}

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

package types

import "net/http"

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	// Error contains the error details.
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains detailed error information.
type ErrorDetail struct {
	// Message is a human-readable error message.
	Message string `json:"message"`

	// Type categorizes the error and selects the HTTP status.
	Type string `json:"type"`

	// Param names the request field that caused the error, if any.
	Param string `json:"param,omitempty"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`
}

// Error types.
const (
	// ErrorTypeInvalidRequest indicates a client-side error (400).
	ErrorTypeInvalidRequest = "invalid_request_error"

	// ErrorTypeAuthentication indicates a missing or unknown credential (401).
	ErrorTypeAuthentication = "authentication_error"

	// ErrorTypeNotFound indicates a resource was not found (404).
	ErrorTypeNotFound = "not_found"

	// ErrorTypeRequestTooLarge indicates the body exceeded the limit (413).
	ErrorTypeRequestTooLarge = "request_too_large"

	// ErrorTypeRateLimitExceeded indicates too many requests in the window (429).
	ErrorTypeRateLimitExceeded = "rate_limit_exceeded"

	// ErrorTypeQuotaExceeded indicates the account's request quota is spent (429).
	ErrorTypeQuotaExceeded = "quota_exceeded"

	// ErrorTypeServerError indicates an internal server error (500).
	ErrorTypeServerError = "server_error"

	// ErrorTypeServiceUnavailable indicates a dependency is unreachable (503).
	ErrorTypeServiceUnavailable = "service_unavailable"

	// ErrorTypeTimeout indicates the request deadline passed (504).
	ErrorTypeTimeout = "timeout"
)

// Error codes.
const (
	CodeMissingField       = "missing_field"
	CodeInvalidValue       = "invalid_value"
	CodeInvalidJSON        = "invalid_json"
	CodeRequestTooLarge    = "request_too_large"
	CodeInvalidAPIKey      = "invalid_api_key"
	CodeInvalidCredentials = "invalid_credentials"
	CodeDuplicateEmail     = "email_taken"
	CodeUnsupportedFormat  = "unsupported_format"
	CodeRateLimited        = "rate_limit_exceeded"
	CodeQuotaExceeded      = "quota_exceeded"
	CodeInternalError      = "internal_error"
	CodeStorageUnavailable = "storage_unavailable"
	CodeRequestTimeout     = "request_timeout"
)

// NewErrorResponse creates a new error response with the given details.
func NewErrorResponse(message, errorType, param, code string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    errorType,
			Param:   param,
			Code:    code,
		},
	}
}

// NewInvalidRequestError creates an error response for invalid requests (400).
func NewInvalidRequestError(message, param, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeInvalidRequest, param, code)
}

// NewServerError creates an error response for internal server errors (500).
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServerError, "", CodeInternalError)
}

// HTTPStatusCode returns the HTTP status code for the error type.
func (e *ErrorDetail) HTTPStatusCode() int {
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeAuthentication:
		return http.StatusUnauthorized
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeRequestTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrorTypeRateLimitExceeded, ErrorTypeQuotaExceeded:
		return http.StatusTooManyRequests
	case ErrorTypeServiceUnavailable:
		return http.StatusServiceUnavailable
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"mercator-hq/feedback/pkg/analysis"
	"mercator-hq/feedback/pkg/analytics"
	"mercator-hq/feedback/pkg/api/types"
	"mercator-hq/feedback/pkg/limits"
	"mercator-hq/feedback/pkg/security/auth"
	"mercator-hq/feedback/pkg/storage"
)

// RequestError is a malformed request detected while decoding the body.
type RequestError struct {
	Message string
	Code    string
	Param   string

	// TooLarge marks a body over the configured limit (413).
	TooLarge bool
}

func (e *RequestError) Error() string {
	return e.Message
}

// ToErrorResponse converts the error to its API body.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	if e.TooLarge {
		return types.NewErrorResponse(e.Message, types.ErrorTypeRequestTooLarge, e.Param, e.Code)
	}
	return types.NewInvalidRequestError(e.Message, e.Param, e.Code)
}

// HandleError maps an error from any layer to its API error body. The
// HTTP status follows from the body's type (ErrorDetail.HTTPStatusCode).
//
// Internal details of 5xx errors are never exposed.
func HandleError(err error) *types.ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	var valErr *types.ValidationError
	if errors.As(err, &valErr) {
		return types.NewInvalidRequestError(valErr.Message, valErr.Field, types.CodeMissingField)
	}

	var limitErr *limits.LimitError
	if errors.As(err, &limitErr) {
		return handleLimitError(limitErr)
	}

	switch {
	case errors.Is(err, analysis.ErrInvalidInput):
		return types.NewInvalidRequestError(err.Error(), "text", types.CodeInvalidValue)

	case errors.Is(err, limits.ErrUnauthenticated):
		return types.NewErrorResponse(
			"Invalid or missing API key",
			types.ErrorTypeAuthentication,
			"",
			types.CodeInvalidAPIKey,
		)

	case errors.Is(err, auth.ErrInvalidCredentials):
		return types.NewErrorResponse(
			"Invalid email or password",
			types.ErrorTypeAuthentication,
			"",
			types.CodeInvalidCredentials,
		)

	case errors.Is(err, auth.ErrInvalidEmail):
		return types.NewInvalidRequestError("Invalid email address", "email", types.CodeInvalidValue)

	case errors.Is(err, auth.ErrWeakPassword):
		return types.NewInvalidRequestError(err.Error(), "password", types.CodeInvalidValue)

	case errors.Is(err, storage.ErrDuplicateEmail):
		return types.NewInvalidRequestError("Email already registered", "email", types.CodeDuplicateEmail)

	case errors.Is(err, analytics.ErrUnsupportedFormat):
		return types.NewInvalidRequestError(err.Error(), "format", types.CodeUnsupportedFormat)

	// Bare sentinels, for example from a quota check without detail.
	case errors.Is(err, limits.ErrQuotaExceeded):
		return types.NewErrorResponse(quotaMessage, types.ErrorTypeQuotaExceeded, "", types.CodeQuotaExceeded)

	case errors.Is(err, limits.ErrRateLimited):
		return types.NewErrorResponse("Rate limit exceeded", types.ErrorTypeRateLimitExceeded, "", types.CodeRateLimited)

	case errors.Is(err, limits.ErrStorageFailure):
		return types.NewErrorResponse(
			"Service temporarily unavailable. Please try again later.",
			types.ErrorTypeServiceUnavailable,
			"",
			types.CodeStorageUnavailable,
		)

	case errors.Is(err, context.DeadlineExceeded):
		return types.NewErrorResponse(
			"Request timeout: the request took too long to complete",
			types.ErrorTypeTimeout,
			"",
			types.CodeRequestTimeout,
		)
	}

	// ErrPersistence and anything unclassified.
	return types.NewServerError("An internal error occurred. Please try again later.")
}

const quotaMessage = "Request limit reached. Upgrade your plan to continue."

func handleLimitError(err *limits.LimitError) *types.ErrorResponse {
	if errors.Is(err, limits.ErrQuotaExceeded) {
		return types.NewErrorResponse(
			fmt.Sprintf("%s (%d of %d requests used)", quotaMessage, err.Current, err.Limit),
			types.ErrorTypeQuotaExceeded,
			"",
			types.CodeQuotaExceeded,
		)
	}

	msg := fmt.Sprintf("Rate limit exceeded: %d requests allowed per window", err.Limit)
	if err.RetryAfter > 0 {
		secs := int(math.Ceil(err.RetryAfter.Seconds()))
		msg = fmt.Sprintf("%s. Try again in %d seconds.", msg, secs)
	}
	return types.NewErrorResponse(msg, types.ErrorTypeRateLimitExceeded, "", types.CodeRateLimited)
}

// WriteError maps err and writes it. It has the signature of
// auth.ErrorHandler so the authentication middleware reports admission
// failures the same way handlers do.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	resp := HandleError(err)
	status := resp.Error.HTTPStatusCode()

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	} else {
		slog.DebugContext(r.Context(), "request rejected",
			"path", r.URL.Path,
			"status", status,
			"type", resp.Error.Type,
			"error", err,
		)
	}

	if err := WriteErrorResponse(w, resp); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
	}
}

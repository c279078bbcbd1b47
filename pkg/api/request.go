package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"mercator-hq/feedback/pkg/api/types"
)

// Validator is implemented by request bodies that check their own fields.
type Validator interface {
	Validate() error
}

// DecodeJSON decodes a single JSON object from the request body into v and
// validates it when v implements Validator.
//
// The body size is bounded by middleware.BodyLimitMiddleware; exceeding it
// yields a RequestError with TooLarge set. Empty or malformed bodies yield
// a RequestError with code invalid_json.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return &RequestError{
				Message:  fmt.Sprintf("request body exceeds maximum size of %d bytes", maxErr.Limit),
				Code:     types.CodeRequestTooLarge,
				Param:    "body",
				TooLarge: true,
			}
		case errors.Is(err, io.EOF):
			return &RequestError{
				Message: "request body is empty",
				Code:    types.CodeInvalidJSON,
				Param:   "body",
			}
		default:
			return &RequestError{
				Message: fmt.Sprintf("invalid JSON: %v", err),
				Code:    types.CodeInvalidJSON,
				Param:   "body",
			}
		}
	}

	if val, ok := v.(Validator); ok {
		if err := val.Validate(); err != nil {
			return err
		}
	}

	return nil
}

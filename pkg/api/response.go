package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"mercator-hq/feedback/pkg/api/types"
)

// WriteJSONResponse writes v as JSON with the given status code.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	return nil
}

// WriteErrorResponse writes an error body with the status its type implies.
func WriteErrorResponse(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, errResp.Error.HTTPStatusCode(), errResp)
}

package handlers

import (
	"net/http"

	"mercator-hq/feedback/pkg/api"
	"mercator-hq/feedback/pkg/api/types"
)

// StatusHandler handles GET /api/status.
type StatusHandler struct{}

// NewStatusHandler creates a new status handler.
func NewStatusHandler() *StatusHandler {
	return &StatusHandler{}
}

// ServeHTTP implements http.Handler.
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = api.WriteJSONResponse(w, http.StatusOK, types.StatusResponse{
		Status:  "ok",
		Message: types.StatusMessage,
	})
}

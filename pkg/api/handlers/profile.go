package handlers

import (
	"log/slog"
	"net/http"

	"mercator-hq/feedback/pkg/api"
	"mercator-hq/feedback/pkg/api/types"
)

// ProfileHandler handles GET /api/user/profile.
type ProfileHandler struct{}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

// ServeHTTP implements http.Handler. The account was loaded by the
// authentication middleware, so no further lookup is needed.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	account, err := requireAccount(r)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	if err := api.WriteJSONResponse(w, http.StatusOK, types.NewProfileResponse(account)); err != nil {
		slog.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}

package handlers

import (
	"log/slog"
	"net/http"

	"mercator-hq/feedback/pkg/api"
	"mercator-hq/feedback/pkg/api/types"
)

// RegisterHandler handles POST /api/auth/register.
type RegisterHandler struct {
	accounts AccountService
}

// NewRegisterHandler creates a new register handler.
func NewRegisterHandler(accounts AccountService) *RegisterHandler {
	return &RegisterHandler{accounts: accounts}
}

// ServeHTTP implements http.Handler.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req types.CredentialsRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, r, err)
		return
	}

	account, err := h.accounts.Register(ctx, req.Email, req.Password)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	resp := types.RegisterResponse{
		Success:       true,
		ID:            account.ID,
		Email:         account.Email,
		APIKey:        account.APIKey,
		Plan:          account.Plan,
		RequestsLimit: account.RequestsLimit,
	}

	if err := api.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "error", err)
	}
}

// LoginHandler handles POST /api/auth/login.
type LoginHandler struct {
	accounts AccountService
}

// NewLoginHandler creates a new login handler.
func NewLoginHandler(accounts AccountService) *LoginHandler {
	return &LoginHandler{accounts: accounts}
}

// ServeHTTP implements http.Handler.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req types.CredentialsRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, r, err)
		return
	}

	account, err := h.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		api.WriteError(w, r, err)
		return
	}

	resp := types.LoginResponse{
		Success:         true,
		ProfileResponse: types.NewProfileResponse(account),
	}

	if err := api.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write response", "error", err)
	}
}

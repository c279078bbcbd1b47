package handlers

import (
	"net/http"

	"mercator-hq/feedback/pkg/limits"
	"mercator-hq/feedback/pkg/security/auth"
	"mercator-hq/feedback/pkg/storage"
)

// requireAccount returns the account stored by the authentication
// middleware. A route registered without the middleware fails closed.
func requireAccount(r *http.Request) (*storage.Account, error) {
	account, ok := auth.AccountFromContext(r.Context())
	if !ok {
		return nil, limits.ErrUnauthenticated
	}
	return account, nil
}

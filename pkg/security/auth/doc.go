/*
Package auth manages account credentials and authenticates API requests.

# Accounts

Accounts.Register creates an account with a bcrypt password hash, the
default plan ("free") and request limit (100), and a generated API key of the
form "sk_" + 40 hex characters. Accounts.Login verifies a password and
returns the account with its key.

# Middleware

APIKeyMiddleware extracts the credential, runs admission through an
Enforcer (quota gate, then rate limiter), and stores the account in the
request context:

	mw := auth.NewAPIKeyMiddleware(enforcer, auth.DefaultSources("X-API-Key"), api.HandleError)
	mux.Handle("POST /api/analyze", mw.Handle(analyzeHandler))

	func analyzeHandler(w http.ResponseWriter, r *http.Request) {
		account, _ := auth.AccountFromContext(r.Context())
		// ...
	}

The credential is read from X-API-Key, or from "Authorization: Bearer <key>"
when that header is absent.

# Security Considerations

  - API keys are never logged; use MaskAPIKey for display
  - Login does the same bcrypt work for unknown emails as for wrong passwords
*/
package auth

/*
Package security holds the credential and transport packages of the
feedback analyzer.

  - auth: account registration, login, API key issuance and the request
    authentication middleware
  - secrets: ${secret:name} resolution for provider API keys from a mounted
    directory or FEEDBACK_SECRET_* variables
  - tls: HTTPS termination with certificate hot reload

# Authentication

	accounts := auth.NewAccounts(store, auth.Config{DefaultPlan: "free", DefaultLimit: 100})
	mw := auth.NewAPIKeyMiddleware(enforcer, auth.DefaultSources("X-API-Key"), writeError)
	handler := mw.Handle(mux)

# TLS

	tlsConfig, reloader, err := tls.New(cfg.Server.TLS)
	if err != nil {
		return err
	}
	go reloader.Start(ctx)
*/
package security

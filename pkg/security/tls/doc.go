/*
Package tls provides HTTPS termination for the feedback API server.

# Server Configuration

	server:
	  tls:
	    enabled: true
	    cert_file: /etc/feedback/certs/server.crt
	    key_file: /etc/feedback/certs/server.key
	    min_version: "1.3"

New loads the key pair and returns a crypto/tls configuration whose
certificate is served by a CertificateReloader:

	tlsConfig, reloader, err := tls.New(cfg.Server.TLS)
	if err != nil {
		return err
	}
	go reloader.Start(ctx)

# Certificate Auto-Reload

The reloader polls the certificate and key files every reload_interval and
swaps in the new pair when either file changes, so renewed certificates are
served without a restart. A failed reload keeps the previous certificate.

Reloader.Check is registered as an optional readiness check that reports
certificates expiring within ExpiryWarningDays.
*/
package tls

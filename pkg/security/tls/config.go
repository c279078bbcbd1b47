package tls

import (
	"crypto/tls"
	"fmt"

	"mercator-hq/feedback/pkg/config"
)

// New loads the configured key pair and returns the server TLS
// configuration together with the reloader serving its certificate. The
// caller runs reloader.Start to pick up renewed certificates.
func New(cfg config.TLSConfig) (*tls.Config, *CertificateReloader, error) {
	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return nil, nil, fmt.Errorf("cert_file and key_file are required when tls is enabled")
	}

	reloader := NewCertificateReloader(cfg.CertFile, cfg.KeyFile, cfg.ReloadInterval)
	if err := reloader.reload(); err != nil {
		return nil, nil, fmt.Errorf("failed to load certificate: %w", err)
	}
	reloader.logCertificateInfo()

	// #nosec G402 - MinVersion is validated to be TLS 1.2 or 1.3
	tlsConfig := &tls.Config{
		MinVersion:     parseTLSVersion(cfg.MinVersion),
		GetCertificate: reloader.GetCertificateFunc(),
		NextProtos:     []string{"h2", "http/1.1"},
	}

	return tlsConfig, reloader, nil
}

// parseTLSVersion maps "1.2" and "1.3" to their constants. Anything else,
// including the empty string, yields TLS 1.2.
func parseTLSVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

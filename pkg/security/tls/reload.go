package tls

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

const defaultReloadInterval = 5 * time.Minute

// CertificateReloader serves a key pair from disk and reloads it when the
// files change, so renewed certificates are picked up without a restart.
type CertificateReloader struct {
	certFile string
	keyFile  string
	interval time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	cert     *tls.Certificate
	certTime time.Time
	keyTime  time.Time
}

// NewCertificateReloader creates a reloader polling every interval. A
// non-positive interval uses five minutes.
func NewCertificateReloader(certFile, keyFile string, interval time.Duration) *CertificateReloader {
	if interval <= 0 {
		interval = defaultReloadInterval
	}
	return &CertificateReloader{
		certFile: certFile,
		keyFile:  keyFile,
		interval: interval,
		now:      time.Now,
	}
}

// Start polls the certificate files until ctx is cancelled. The initial pair
// is loaded on the first call if New has not already done so.
func (r *CertificateReloader) Start(ctx context.Context) {
	if r.GetCertificate() == nil {
		if err := r.reload(); err != nil {
			slog.Error("failed to load certificate", "error", err, "cert_file", r.certFile)
		}
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.reloadIfChanged()
		case <-ctx.Done():
			return
		}
	}
}

// reloadIfChanged reloads the pair when either file is newer than the
// loaded copy. A failed reload keeps the current certificate.
func (r *CertificateReloader) reloadIfChanged() bool {
	if !r.needsReload() {
		return false
	}

	if err := r.reload(); err != nil {
		slog.Error("failed to reload certificate",
			"error", err,
			"cert_file", r.certFile,
			"key_file", r.keyFile,
		)
		return false
	}

	slog.Info("certificate reloaded", "cert_file", r.certFile)
	r.logCertificateInfo()
	return true
}

func (r *CertificateReloader) needsReload() bool {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return false
	}

	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return certInfo.ModTime().After(r.certTime) || keyInfo.ModTime().After(r.keyTime)
}

func (r *CertificateReloader) reload() error {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return err
	}

	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return err
	}

	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return err
	}

	if err := ValidateCertificate(&cert, r.now()); err != nil {
		return err
	}

	r.mu.Lock()
	r.cert = &cert
	r.certTime = certInfo.ModTime()
	r.keyTime = keyInfo.ModTime()
	r.mu.Unlock()

	return nil
}

// GetCertificate returns the current certificate.
func (r *CertificateReloader) GetCertificate() *tls.Certificate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert
}

// GetCertificateFunc returns a function for tls.Config.GetCertificate.
func (r *CertificateReloader) GetCertificateFunc() func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
		cert := r.GetCertificate()
		if cert == nil {
			return nil, fmt.Errorf("no certificate loaded")
		}
		return cert, nil
	}
}

// Check reports an error when no certificate is loaded or the loaded one
// expires within ExpiryWarningDays. It matches health.CheckFunc.
func (r *CertificateReloader) Check(ctx context.Context) error {
	x509Cert, err := leaf(r.GetCertificate())
	if err != nil {
		return err
	}

	now := r.now()
	if now.After(x509Cert.NotAfter) {
		return fmt.Errorf("certificate expired on %s", x509Cert.NotAfter.Format(time.RFC3339))
	}
	if days := DaysUntilExpiry(x509Cert, now); days < ExpiryWarningDays {
		return fmt.Errorf("certificate expires in %d day(s)", days)
	}
	return nil
}

func (r *CertificateReloader) logCertificateInfo() {
	x509Cert, err := leaf(r.GetCertificate())
	if err != nil {
		return
	}

	days := DaysUntilExpiry(x509Cert, r.now())
	if days < ExpiryWarningDays {
		slog.Warn("certificate expiring soon",
			"subject", x509Cert.Subject.CommonName,
			"expires_in_days", days,
			"expires_at", x509Cert.NotAfter.Format(time.RFC3339),
		)
		return
	}

	slog.Info("certificate loaded",
		"subject", x509Cert.Subject.CommonName,
		"issuer", x509Cert.Issuer.CommonName,
		"expires_in_days", days,
		"expires_at", x509Cert.NotAfter.Format(time.RFC3339),
	)
}

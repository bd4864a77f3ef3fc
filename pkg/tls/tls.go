// Package tls builds TLS configurations for the relay listener and for outbound
// calls to the prediction upstream.
//
// The listener always requires TLS 1.3. Client certificates are verified only when a
// CA bundle is configured, turning plain HTTPS into mutual TLS. Outbound configs trust
// the system roots unless a private CA bundle is given.
package tls

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// Config holds certificate file paths for the relay listener.
// CAFile is optional; when set, clients must present a certificate signed by it.
type Config struct {
	Enabled  bool
	CertFile string
	KeyFile  string
	CAFile   string
}

// MutualAuth reports whether client certificates are required.
func (c Config) MutualAuth() bool {
	return c.Enabled && c.CAFile != ""
}

// Validate checks that every configured file exists.
// Returns an error if TLS is enabled but the certificate or key is missing.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.CertFile == "" || c.KeyFile == "" {
		return errors.New("tls enabled but cert/key files not specified")
	}

	return statFiles(c.CertFile, c.KeyFile, c.CAFile)
}

var secureCipherSuites = []uint16{
	tls.TLS_AES_128_GCM_SHA256,
	tls.TLS_AES_256_GCM_SHA384,
	tls.TLS_CHACHA20_POLY1305_SHA256,
}

// NewServerTLSConfig creates the listener configuration.
//
// Parameters:
//   - certFile: server certificate (PEM)
//   - keyFile: server private key (PEM)
//   - caFile: optional CA bundle (PEM) for verifying client certificates
func NewServerTLSConfig(certFile, keyFile, caFile string) (*tls.Config, error) {
	if certFile == "" {
		return nil, errors.New("certificate file path cannot be empty")
	}
	if keyFile == "" {
		return nil, errors.New("key file path cannot be empty")
	}
	if err := statFiles(certFile, keyFile, caFile); err != nil {
		return nil, err
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load server certificate: %w", err)
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS13,
		CipherSuites: secureCipherSuites,
	}

	if caFile != "" {
		pool, err := loadCertPool(caFile)
		if err != nil {
			return nil, err
		}
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return cfg, nil
}

// NewClientTLSConfig creates the configuration for calls to the upstream.
// An empty caFile keeps the system roots. The upstream is a public host, so TLS 1.2
// is still accepted on this side.
func NewClientTLSConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}

	if err := statFiles(caFile); err != nil {
		return nil, err
	}
	pool, err := loadCertPool(caFile)
	if err != nil {
		return nil, err
	}
	cfg.RootCAs = pool
	return cfg, nil
}

func loadCertPool(caFile string) (*x509.CertPool, error) {
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("read CA certificate: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, errors.New("failed to parse CA certificate")
	}
	return pool, nil
}

func statFiles(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("tls file %q: %w", path, err)
		}
	}
	return nil
}

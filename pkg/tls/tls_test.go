package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	cryptotls "crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeSelfSigned writes a self-signed certificate and key to dir and returns their paths.
func writeSelfSigned(t *testing.T, dir string) (string, string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "fwirelay-test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		DNSNames:              []string{"localhost"},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}

	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	writePEM(t, certPath, "CERTIFICATE", der)
	writePEM(t, keyPath, "EC PRIVATE KEY", keyDER)
	return certPath, keyPath
}

func writePEM(t *testing.T, path, typ string, der []byte) {
	t.Helper()
	data := pem.EncodeToMemory(&pem.Block{Type: typ, Bytes: der})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestConfig_Validate(t *testing.T) {
	dir := t.TempDir()
	cert, key := writeSelfSigned(t, dir)

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "disabled", cfg: Config{}},
		{name: "cert and key", cfg: Config{Enabled: true, CertFile: cert, KeyFile: key}},
		{name: "with ca", cfg: Config{Enabled: true, CertFile: cert, KeyFile: key, CAFile: cert}},
		{name: "missing key", cfg: Config{Enabled: true, CertFile: cert}, wantErr: true},
		{name: "missing file", cfg: Config{Enabled: true, CertFile: cert, KeyFile: filepath.Join(dir, "nope.pem")}, wantErr: true},
		{name: "missing ca file", cfg: Config{Enabled: true, CertFile: cert, KeyFile: key, CAFile: filepath.Join(dir, "ca.pem")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewServerTLSConfig(t *testing.T) {
	cert, key := writeSelfSigned(t, t.TempDir())

	cfg, err := NewServerTLSConfig(cert, key, "")
	if err != nil {
		t.Fatalf("NewServerTLSConfig() error = %v", err)
	}
	if cfg.MinVersion != cryptotls.VersionTLS13 {
		t.Errorf("MinVersion = %x, want TLS 1.3", cfg.MinVersion)
	}
	if cfg.ClientAuth != cryptotls.NoClientCert {
		t.Errorf("ClientAuth = %v without CA, want NoClientCert", cfg.ClientAuth)
	}
	if len(cfg.Certificates) != 1 {
		t.Errorf("len(Certificates) = %d, want 1", len(cfg.Certificates))
	}

	mtls, err := NewServerTLSConfig(cert, key, cert)
	if err != nil {
		t.Fatalf("NewServerTLSConfig() with CA error = %v", err)
	}
	if mtls.ClientAuth != cryptotls.RequireAndVerifyClientCert {
		t.Errorf("ClientAuth = %v with CA, want RequireAndVerifyClientCert", mtls.ClientAuth)
	}
	if mtls.ClientCAs == nil {
		t.Error("ClientCAs not set")
	}
}

func TestNewServerTLSConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	cert, key := writeSelfSigned(t, dir)
	garbage := filepath.Join(dir, "garbage.pem")
	if err := os.WriteFile(garbage, []byte("not a pem"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name              string
		cert, key, caFile string
	}{
		{name: "empty cert", key: key},
		{name: "empty key", cert: cert},
		{name: "bad key pair", cert: cert, key: garbage},
		{name: "bad ca", cert: cert, key: key, caFile: garbage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewServerTLSConfig(tt.cert, tt.key, tt.caFile); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewClientTLSConfig(t *testing.T) {
	cert, _ := writeSelfSigned(t, t.TempDir())

	cfg, err := NewClientTLSConfig("")
	if err != nil {
		t.Fatalf("NewClientTLSConfig() error = %v", err)
	}
	if cfg.RootCAs != nil {
		t.Error("RootCAs should be nil to use system roots")
	}

	withCA, err := NewClientTLSConfig(cert)
	if err != nil {
		t.Fatalf("NewClientTLSConfig(ca) error = %v", err)
	}
	if withCA.RootCAs == nil {
		t.Error("RootCAs not set")
	}

	if _, err := NewClientTLSConfig("/does/not/exist.pem"); err == nil {
		t.Error("expected error for missing CA file")
	}
}

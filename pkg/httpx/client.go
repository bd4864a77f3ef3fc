package httpx

import (
	"fmt"
	"net/http"
	"time"

	fwitls "github.com/HatiCode/fwirelay/pkg/tls"
)

// NewClient creates an HTTP client for calling the upstream.
// caFile optionally replaces the system roots with a private CA bundle.
func NewClient(caFile string, timeout time.Duration) (*http.Client, error) {
	tlsConfig, err := fwitls.NewClientTLSConfig(caFile)
	if err != nil {
		return nil, fmt.Errorf("create TLS config: %w", err)
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
		TLSClientConfig:     tlsConfig,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

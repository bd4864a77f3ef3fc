// Command relay serves the prediction relay.
//
// The relay accepts JSON prediction requests on POST /api/predict and forwards them
// unchanged to the configured prediction service, returning its status and body.
// It keeps no state between requests.
//
// The relay serves an HTTP API on :8080 (configurable) providing:
//   - POST /api/predict - Relay a prediction request
//   - GET /healthz - Health check endpoint
//   - GET /metrics - Prometheus metrics endpoint
//
// When -grpc-listen is set, a gRPC server exposes grpc.health.v1.Health and server
// reflection on that address.
//
// Usage:
//
//	relay \
//	  -listen=:8080 \
//	  -upstream-url=https://fwi-model.example.com \
//	  -upstream-timeout=60s
//
// Environment variables:
//
//	CONFIG_FILE      - Optional config file (yaml, toml or json)
//	LISTEN           - HTTP listen address (default: :8080)
//	GRPC_LISTEN      - gRPC health listen address (default: disabled)
//	UPSTREAM_URL     - Prediction service base URL (API_BASE_URL is also read)
//	UPSTREAM_TIMEOUT - Timeout for one upstream call (default: 60s)
//	UPSTREAM_CA_FILE - CA bundle for the upstream (default: system roots)
//	ALLOWED_ORIGIN   - CORS allowed origin (default: *)
//	TLS_ENABLED      - Serve HTTPS (default: false)
//	TLS_CERT_FILE    - TLS certificate file
//	TLS_KEY_FILE     - TLS private key file
//	TLS_CA_FILE      - CA for client certificates (enables mutual TLS)
//	LOG_LEVEL        - Logging level: debug, info, warn, error (default: info)
//	LOG_FORMAT       - Logging format: text, json (default: text)
package main

import (
	cryptotls "crypto/tls"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/HatiCode/fwirelay/cmd/relay/config"
	"github.com/HatiCode/fwirelay/cmd/relay/metrics"
	"github.com/HatiCode/fwirelay/cmd/relay/router"
	"github.com/HatiCode/fwirelay/pkg/httpx"
	"github.com/HatiCode/fwirelay/pkg/logger"
	"github.com/HatiCode/fwirelay/pkg/relay"
	"github.com/HatiCode/fwirelay/pkg/tls"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
	slog.SetDefault(log)

	log.Info("starting fwi relay",
		"version", version,
		"listen", cfg.Listen,
		"grpc_listen", cfg.GRPCListen,
		"upstream_url", cfg.UpstreamURL,
		"upstream_timeout", cfg.UpstreamTimeout,
		"tls_enabled", cfg.TLS.Enabled,
		"mtls", cfg.TLS.MutualAuth(),
	)

	if err := run(cfg, log); err != nil {
		log.Error("relay failed", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func run(cfg *config.Config, log *slog.Logger) error {
	client, err := httpx.NewClient(cfg.UpstreamCAFile, cfg.UpstreamTimeout)
	if err != nil {
		return fmt.Errorf("create upstream client: %w", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	handler, err := relay.New(cfg.UpstreamURL, client, log, m)
	if err != nil {
		return fmt.Errorf("create relay: %w", err)
	}

	var serverTLS *cryptotls.Config
	if cfg.TLS.Enabled {
		serverTLS, err = tls.NewServerTLSConfig(cfg.TLS.CertFile, cfg.TLS.KeyFile, cfg.TLS.CAFile)
		if err != nil {
			return fmt.Errorf("create TLS config: %w", err)
		}
	}

	mux := router.SetupRoutes(handler, prometheus.DefaultGatherer, cfg.AllowedOrigin, log)
	httpServer := httpx.NewServer(cfg.Listen, mux, log)
	httpServer.SetWriteTimeout(cfg.WriteTimeout())
	if serverTLS != nil {
		httpServer.SetTLSConfig(serverTLS)
	}

	serverErr := make(chan error, 2)
	go func() {
		serverErr <- httpServer.Start()
	}()

	var grpcServer *grpc.Server
	var healthServer *health.Server
	if cfg.GRPCListen != "" {
		lis, err := net.Listen("tcp", cfg.GRPCListen)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", cfg.GRPCListen, err)
		}

		var opts []grpc.ServerOption
		if serverTLS != nil {
			opts = append(opts, grpc.Creds(credentials.NewTLS(serverTLS)))
		}
		grpcServer = grpc.NewServer(opts...)

		healthServer = health.NewServer()
		grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
		reflection.Register(grpcServer)

		go func() {
			log.Info("grpc server listening", "address", cfg.GRPCListen)
			if err := grpcServer.Serve(lis); err != nil {
				serverErr <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	var runErr error
	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig)
	case err := <-serverErr:
		runErr = err
	}

	log.Info("shutting down")
	if grpcServer != nil {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
	}
	if err := httpServer.Stop(10 * time.Second); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

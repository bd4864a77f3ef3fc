// Package httpx provides the HTTP server, JSON response helpers, middleware and
// outbound client shared by the relay and its callers.
package httpx

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server wraps http.Server with graceful shutdown.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a server listening on addr.
func NewServer(addr string, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			// Upstream cold starts can take most of a minute.
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
			ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		logger: logger,
	}
}

// SetWriteTimeout overrides the time allowed to produce a response.
// Must be called before Start.
func (s *Server) SetWriteTimeout(d time.Duration) {
	s.server.WriteTimeout = d
}

// SetTLSConfig switches the server to HTTPS. The config must carry its certificates.
// Must be called before Start.
func (s *Server) SetTLSConfig(config *tls.Config) {
	s.server.TLSConfig = config
}

// Start listens on the configured address and serves until Stop is called.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on ln, over TLS if a TLS config was set. It blocks until the
// server is stopped.
func (s *Server) Serve(ln net.Listener) error {
	if s.server.TLSConfig != nil {
		s.logger.Info("starting HTTPS server", "addr", ln.Addr().String())
		err := s.server.ServeTLS(ln, "", "")
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}

	s.logger.Info("starting HTTP server", "addr", ln.Addr().String())
	err := s.server.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server, waiting up to timeout for in-flight requests.
func (s *Server) Stop(timeout time.Duration) error {
	s.logger.Info("stopping HTTP server", "timeout", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

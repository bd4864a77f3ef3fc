// Package relay forwards prediction requests to the upstream model service.
//
// The relay is stateless. It checks only that the request body is JSON, forwards the
// bytes unchanged, and mirrors the upstream status and body back to the caller. Every
// failure is reported in the {"error": "<msg>"} envelope.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HatiCode/fwirelay/pkg/httpx"
)

// PredictPath is the path of the prediction endpoint, on both the relay and the upstream.
const PredictPath = "/api/predict"

// MaxRequestBytes bounds the accepted request body.
const MaxRequestBytes = 1 << 20

// MaxUpstreamBytes bounds the upstream response body.
const MaxUpstreamBytes = 10 << 20

// Fixed error messages returned to callers.
const (
	MsgInvalidRequest   = "Request body is not valid JSON."
	MsgRequestTooLarge  = "Request body too large."
	MsgInvalidUpstream  = "Invalid JSON response from backend."
	MsgUpstreamTooLarge = "Response from backend too large."
)

// Error reasons passed to Recorder.RecordError.
const (
	ReasonInvalidRequest   = "invalid_request"
	ReasonRequestTooLarge  = "request_too_large"
	ReasonTransport        = "transport"
	ReasonInvalidUpstream  = "invalid_upstream_json"
	ReasonUpstreamTooLarge = "upstream_too_large"
)

var errUpstreamTooLarge = errors.New("upstream response too large")

// Recorder receives per-request measurements. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveUpstream(status int, duration time.Duration)
	RecordError(reason string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveUpstream(int, time.Duration) {}
func (nopRecorder) RecordError(string)                 {}

// Handler relays POST requests to the upstream prediction endpoint.
type Handler struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
	recorder Recorder
}

// New creates a Handler forwarding to upstreamBase + PredictPath.
// A nil client uses http.DefaultClient and a nil recorder discards measurements.
func New(upstreamBase string, client *http.Client, logger *slog.Logger, recorder Recorder) (*Handler, error) {
	endpoint, err := Endpoint(upstreamBase)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Handler{
		endpoint: endpoint,
		client:   client,
		logger:   logger.With("component", "relay"),
		recorder: recorder,
	}, nil
}

// Endpoint validates base and returns the full upstream prediction URL.
func Endpoint(base string) (string, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return "", errors.New("upstream base URL cannot be empty")
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse upstream base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("upstream base URL %q must use http or https", base)
	}
	if u.Host == "" {
		return "", fmt.Errorf("upstream base URL %q has no host", base)
	}

	return base + PredictPath, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.recorder.RecordError(ReasonRequestTooLarge)
			httpx.WriteErrorMessage(w, http.StatusRequestEntityTooLarge, MsgRequestTooLarge)
			return
		}
		h.recorder.RecordError(ReasonInvalidRequest)
		httpx.WriteError(w, http.StatusInternalServerError, fmt.Errorf("read request body: %w", err))
		return
	}

	if !json.Valid(body) {
		h.recorder.RecordError(ReasonInvalidRequest)
		httpx.WriteErrorMessage(w, http.StatusInternalServerError, MsgInvalidRequest)
		return
	}

	// The upstream call outlives a disconnecting caller; the client timeout bounds it.
	status, upstream, err := h.forward(context.WithoutCancel(r.Context()), body)
	if errors.Is(err, errUpstreamTooLarge) {
		h.recorder.RecordError(ReasonUpstreamTooLarge)
		h.logger.Error("upstream response exceeds limit", "endpoint", h.endpoint, "limit", MaxUpstreamBytes)
		httpx.WriteErrorMessage(w, http.StatusInternalServerError, MsgUpstreamTooLarge)
		return
	}
	if err != nil {
		h.recorder.RecordError(ReasonTransport)
		h.logger.Error("upstream request failed", "endpoint", h.endpoint, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, err)
		return
	}

	if !bodyAllowed(status) {
		w.WriteHeader(status)
		return
	}

	if len(upstream) == 0 {
		upstream = []byte("{}")
	}
	if !json.Valid(upstream) {
		h.recorder.RecordError(ReasonInvalidUpstream)
		h.logger.Warn("upstream returned non-JSON body", "status", status, "bytes", len(upstream))
		httpx.WriteErrorMessage(w, status, MsgInvalidUpstream)
		return
	}

	if err := httpx.WriteRawJSON(w, status, upstream); err != nil {
		h.logger.Warn("failed to write response", "error", err)
	}
}

// forward performs exactly one POST to the upstream and returns its status and body.
func (h *Handler) forward(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxUpstreamBytes+1))
	h.recorder.ObserveUpstream(resp.StatusCode, time.Since(start))
	if err != nil {
		return 0, nil, fmt.Errorf("read upstream response: %w", err)
	}
	if len(data) > MaxUpstreamBytes {
		return 0, nil, errUpstreamTooLarge
	}

	h.logger.Debug("upstream responded", "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	return resp.StatusCode, data, nil
}

// bodyAllowed reports whether a response with status may carry a body.
func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status < 200:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}

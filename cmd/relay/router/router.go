// Package router configures HTTP routes for the relay.
//
// Routes configured:
//   - POST /api/predict - Relay a prediction request to the upstream
//   - OPTIONS (any path) - CORS preflight, answered with 204
//   - GET /healthz - Health check endpoint (returns 200 OK)
//   - GET /metrics - Prometheus metrics endpoint
//
// Unknown paths and methods get the JSON error envelope.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/HatiCode/fwirelay/pkg/httpx"
	"github.com/HatiCode/fwirelay/pkg/relay"
)

// SetupRoutes configures HTTP endpoints for the relay.
func SetupRoutes(predict http.Handler, gatherer prometheus.Gatherer, allowedOrigin string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(httpx.RecoveryMiddleware(logger))
	r.Use(httpx.LoggingMiddleware(logger, requestID))
	r.Use(httpx.CORSMiddleware(allowedOrigin))

	r.Get("/healthz", httpx.HealthHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Method(http.MethodPost, relay.PredictPath, predict)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteErrorMessage(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

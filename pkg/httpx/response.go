package httpx

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// ErrorResponse is the error envelope used by every endpoint: {"error":"<msg>"}.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON marshals v and writes it with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// WriteRawJSON writes an already encoded JSON document unchanged.
func WriteRawJSON(w http.ResponseWriter, status int, body []byte) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// WriteError writes err's message in the error envelope.
func WriteError(w http.ResponseWriter, status int, err error) {
	WriteErrorMessage(w, status, err.Error())
}

// WriteErrorMessage writes message in the error envelope.
func WriteErrorMessage(w http.ResponseWriter, status int, message string) {
	resp := ErrorResponse{
		Error: message,
	}
	if err := WriteJSON(w, status, resp); err != nil {
		slog.Error("failed to write error message", "error", err, "message", message)
	}
}

// HealthHandler always responds 200 OK.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("failed to write health response", "error", err)
		}
	}
}

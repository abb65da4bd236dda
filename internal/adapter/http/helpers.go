// Package http provides the REST surface: handlers, routing, and HTTP
// middleware for the GitHub integration service.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gitrello/github-integration/internal/domain"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// readJSON decodes a JSON request body with a size limit.
func readJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		}
		return v, false
	}
	return v, true
}

// readBody reads a raw request body with the same size limit as readJSON.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", "request body too large")
		return nil, false
	}
	return body, true
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses with
// stable machine-readable codes. Anything unmapped is reported as an
// internal error with the details kept server-side.
func writeDomainError(w http.ResponseWriter, err error) {
	var provErr *domain.ProviderError
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "not_authenticated", "authentication required")
	case errors.Is(err, domain.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "permission_denied", "permission denied")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already_exists", err.Error())
	case errors.As(err, &provErr):
		writeError(w, http.StatusInternalServerError, "provider_rejected", provErr.Message)
	case errors.Is(err, domain.ErrTransport):
		slog.Error("provider unreachable", "error", err)
		writeError(w, http.StatusInternalServerError, "transport_error", "provider unreachable")
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

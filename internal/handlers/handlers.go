// Package handlers contains the HTTP handlers for the booklab API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"booklab/internal/contextutil"
	"booklab/internal/llm"
	"booklab/internal/pdf"
	"booklab/internal/storage"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes v as a JSON response body.
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// idParam parses the named chi URL parameter as an int64 ID.
func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// handleError maps domain errors to HTTP status codes and responses.
//
// Provider configuration problems map to 409 so the client can surface
// the remediation text instead of a generic failure.
func handleError(ctx context.Context, w http.ResponseWriter, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "request failed", "error", err)

	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, storage.ErrIncompleteReorder), errors.Is(err, pdf.ErrNoChapters):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, llm.ErrNotConfigured), errors.Is(err, llm.ErrMissingCredential):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, llm.ErrProviderUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/domain"
)

// writeJSON writes v with status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeSuccess writes {"success":true, ...fields}
func writeSuccess(w http.ResponseWriter, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

// writeFailure writes {"success":false,"error":msg}
func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// writeError maps err onto the error taxonomy. Internal details are logged,
// never returned.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	if d, ok := domain.GetRetryAfter(err); ok && d > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(d.Seconds()+0.999)))
	}
	writeFailure(w, status, msg)
}

func classify(err error) (int, string) {
	status := http.StatusInternalServerError
	msg := "Internal server error"

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		status, msg = http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, domain.ErrInvalidPath):
		status, msg = http.StatusBadRequest, "Invalid path"
	case errors.Is(err, domain.ErrInvalidInput):
		status, msg = http.StatusBadRequest, "Bad request"
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrQuotaExceeded):
		status, msg = http.StatusForbidden, "Forbidden"
	case errors.Is(err, domain.ErrNotFound):
		status, msg = http.StatusNotFound, "Not found"
	case errors.Is(err, domain.ErrRateLimited):
		status, msg = http.StatusTooManyRequests, "Too many attempts"
	}

	if status != http.StatusInternalServerError {
		if m, ok := domain.UserMessage(err); ok {
			msg = m
		}
	}
	return status, msg
}

// decodeJSON reads a JSON request body into v. An empty body leaves v
// untouched when allowEmpty is set.
func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return domain.NewValidationError("Invalid request body")
	}
	return nil
}

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/yourorg/inventario/internal/domain"
	"github.com/yourorg/inventario/internal/service"
)

// ErrorResponse represents an error response body
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses with a short inline
// message. Internal details never leave the process; they are logged at
// the call site.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var (
		status  int
		message string
	)
	switch {
	case errors.Is(err, domain.ErrValidation):
		status, message = http.StatusBadRequest, "invalid input"
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, service.ErrNoRecoverySession):
		status, message = http.StatusUnauthorized, "recovery session required"
	case errors.Is(err, domain.ErrPermissionDenied):
		status, message = http.StatusForbidden, "permission denied"
	case errors.Is(err, domain.ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrDuplicate):
		status, message = http.StatusConflict, "already exists"
	case errors.Is(err, service.ErrThrottled):
		status, message = http.StatusTooManyRequests, "too many attempts"
	case errors.Is(err, domain.ErrStoreUnavailable):
		status, message = http.StatusServiceUnavailable, "backing store unavailable"
	default:
		status, message = http.StatusInternalServerError, "internal error"
	}
	if status >= 500 {
		log.Error("request failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, ErrorResponse{Error: message})
}

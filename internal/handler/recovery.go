package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/inventario/internal/service"
)

// RecoveryHandler drives the password-recovery flow over three endpoints:
// phrase verification, account listing and the password overwrite. The
// recovery session id returned by the first step authenticates the other
// two via the X-Recovery-Session header.
type RecoveryHandler struct {
	recoveryService *service.RecoveryService
	logger          *slog.Logger
}

// NewRecoveryHandler creates a new recovery handler
func NewRecoveryHandler(recoveryService *service.RecoveryService, logger *slog.Logger) *RecoveryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecoveryHandler{recoveryService: recoveryService, logger: logger}
}

// VerifyPhraseRequest is the awaiting-phrase step input
type VerifyPhraseRequest struct {
	TenantID string `json:"tenantId"`
	Phrase   string `json:"phrase"`
}

// ResetPasswordRequest is the awaiting-selection step input
type ResetPasswordRequest struct {
	Login       string `json:"login"`
	NewPassword string `json:"newPassword"`
}

// VerifyPhrase handles POST /api/recovery/verify
func (h *RecoveryHandler) VerifyPhrase(w http.ResponseWriter, r *http.Request) {
	var req VerifyPhraseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}
	if req.TenantID == "" || req.Phrase == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "tenantId and phrase required"})
		return
	}

	sessionID, err := h.recoveryService.VerifyPhrase(r.Context(), req.TenantID, req.Phrase)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"recoverySession": sessionID})
}

// Accounts handles GET /api/recovery/accounts
func (h *RecoveryHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.recoveryService.Accounts(r.Context(), r.Header.Get("X-Recovery-Session"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"accounts": accounts})
}

// ResetPassword handles POST /api/recovery/password
func (h *RecoveryHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}
	if req.Login == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "login required"})
		return
	}

	err := h.recoveryService.ResetPassword(r.Context(), r.Header.Get("X-Recovery-Session"), req.Login, req.NewPassword)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

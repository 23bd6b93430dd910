package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/inventario/internal/service"
)

// LoginRequest represents login credentials: the school's CIE code plus
// the account's login and password.
type LoginRequest struct {
	TenantID string `json:"tenantId"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginHandler handles user authentication
type LoginHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(authService *service.AuthService, logger *slog.Logger) *LoginHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginHandler{authService: authService, logger: logger}
}

// ServeHTTP handles POST /api/login
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode login request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	if req.TenantID == "" || req.Login == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "tenantId, login and password required"})
		return
	}

	result, err := h.authService.Login(r.Context(), req.TenantID, req.Login, req.Password)
	if err != nil {
		// Uniform message whatever actually failed, to prevent
		// tenant/login enumeration.
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

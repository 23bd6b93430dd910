package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/inventario/internal/service"
)

// RegisterTenantHandler handles tenant registration
type RegisterTenantHandler struct {
	tenantService *service.TenantService
	logger        *slog.Logger
}

// NewRegisterTenantHandler creates a new tenant registration handler
func NewRegisterTenantHandler(tenantService *service.TenantService, logger *slog.Logger) *RegisterTenantHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegisterTenantHandler{tenantService: tenantService, logger: logger}
}

// ServeHTTP handles POST /api/tenants
func (h *RegisterTenantHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var reg service.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		h.logger.Error("failed to decode registration", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return
	}

	if err := h.tenantService.Register(r.Context(), reg); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"tenantId": reg.TenantID,
		"name":     reg.Name,
	})
}

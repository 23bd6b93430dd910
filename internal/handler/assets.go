package handler

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/inventario/internal/domain"
	"github.com/yourorg/inventario/internal/security/middleware"
	"github.com/yourorg/inventario/internal/service"
)

// AssetRequest is the JSON shape of asset create/update bodies. The photo
// travels base64-encoded; an empty string means none (create) or keep the
// stored one (update).
type AssetRequest struct {
	Type        string `json:"type"`
	Model       string `json:"model"`
	Serial      string `json:"serial"`
	PropertyTag string `json:"propertyTag"`
	Invoice     string `json:"invoice"`
	Status      string `json:"status"`
	Problem     string `json:"problem"`
	PhotoBase64 string `json:"photoBase64,omitempty"`
}

// AssetsHandler handles the asset record lifecycle endpoints
type AssetsHandler struct {
	assetService *service.AssetService
	logger       *slog.Logger
}

// NewAssetsHandler creates a new assets handler
func NewAssetsHandler(assetService *service.AssetService, logger *slog.Logger) *AssetsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssetsHandler{assetService: assetService, logger: logger}
}

// Create handles POST /api/assets
func (h *AssetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentityFromContext(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing auth"})
		return
	}

	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	asset, err := h.assetService.Create(r.Context(), *identity, input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

// List handles GET /api/assets?q=
func (h *AssetsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentityFromContext(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing auth"})
		return
	}

	assets, err := h.assetService.List(r.Context(), *identity, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if assets == nil {
		assets = []*domain.Asset{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"assets": assets})
}

// Update handles PUT /api/assets/{serial}
func (h *AssetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentityFromContext(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing auth"})
		return
	}

	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	asset, err := h.assetService.Update(r.Context(), *identity, r.PathValue("serial"), input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// Delete handles DELETE /api/assets/{serial}
func (h *AssetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentityFromContext(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing auth"})
		return
	}

	if err := h.assetService.Delete(r.Context(), *identity, r.PathValue("serial")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *AssetsHandler) decodeInput(w http.ResponseWriter, r *http.Request) (service.AssetInput, bool) {
	var req AssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode asset request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request"})
		return service.AssetInput{}, false
	}

	input := service.AssetInput{
		Type:        req.Type,
		Model:       req.Model,
		Serial:      req.Serial,
		PropertyTag: req.PropertyTag,
		Invoice:     req.Invoice,
		Status:      req.Status,
		Problem:     req.Problem,
	}
	if req.PhotoBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.PhotoBase64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "photoBase64 is not valid base64"})
			return service.AssetInput{}, false
		}
		input.Photo = data
	}
	return input, true
}

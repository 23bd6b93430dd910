package handler

import (
	"log/slog"
	"net/http"

	"github.com/yourorg/inventario/internal/security/middleware"
	"github.com/yourorg/inventario/internal/service"
)

// ReportHandler serves the downloadable inventory PDF
type ReportHandler struct {
	assetService *service.AssetService
	logger       *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(assetService *service.AssetService, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{assetService: assetService, logger: logger}
}

// ServeHTTP handles GET /api/report?q=
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentityFromContext(r.Context())
	if identity == nil {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing auth"})
		return
	}

	doc, err := h.assetService.Report(r.Context(), *identity, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="relatorio.pdf"`)
	if _, err := w.Write(doc); err != nil {
		h.logger.Error("failed to write report", slog.String("error", err.Error()))
	}
}

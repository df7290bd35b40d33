package handlers

import (
	"net/http"

	"insafe-lab/internal/domain/models"
	"insafe-lab/internal/domain/services"
	"insafe-lab/pkg/logger"
)

// ReportsHandler handles community scam reports
type ReportsHandler struct {
	service *services.ReportService
	logger  *logger.Logger
}

// NewReportsHandler creates a new ReportsHandler
func NewReportsHandler(service *services.ReportService, log *logger.Logger) *ReportsHandler {
	return &ReportsHandler{
		service: service,
		logger:  log.WithComponent("reports-handler"),
	}
}

// Create handles POST /api/v1/reports
func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateReportRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rep, err := h.service.Create(r.Context(), req, clientIP(r))
	if err != nil {
		respondServiceError(w, h.logger, err, "create report")
		return
	}
	respondJSON(w, http.StatusCreated, rep)
}

// List handles GET /api/v1/reports?type=&limit=
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.List(r.Context(), r.URL.Query().Get("type"), queryLimit(r, 50))
	if err != nil {
		respondServiceError(w, h.logger, err, "list reports")
		return
	}
	respondJSON(w, http.StatusOK, reports)
}

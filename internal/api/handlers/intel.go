package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"insafe-lab/internal/domain/services"
	"insafe-lab/pkg/logger"
)

// IntelHandler serves phone-number threat intelligence
type IntelHandler struct {
	service *services.VerificationService
	logger  *logger.Logger
}

// NewIntelHandler creates a new IntelHandler. service may be nil when
// verification is disabled.
func NewIntelHandler(service *services.VerificationService, log *logger.Logger) *IntelHandler {
	return &IntelHandler{
		service: service,
		logger:  log.WithComponent("intel-handler"),
	}
}

// Phone handles GET /api/v1/intel/phone/{number}
func (h *IntelHandler) Phone(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		respondError(w, http.StatusServiceUnavailable, "phone verification is disabled")
		return
	}

	analysis, err := h.service.LookupPhone(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		respondServiceError(w, h.logger, err, "look up phone number")
		return
	}
	respondJSON(w, http.StatusOK, analysis)
}

// Status handles GET /api/v1/intel/status
func (h *IntelHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		respondJSON(w, http.StatusOK, map[string]any{"isActive": false, "sourcesCount": 0})
		return
	}
	respondJSON(w, http.StatusOK, h.service.Status())
}

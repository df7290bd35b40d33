package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"insafe-lab/internal/domain/services"
	"insafe-lab/pkg/logger"
)

// AdminHandler handles admin endpoints
type AdminHandler struct {
	scheduler *services.Scheduler
	logger    *logger.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(sched *services.Scheduler, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		scheduler: sched,
		logger:    log.WithComponent("admin"),
	}
}

// Jobs handles GET /api/v1/admin/jobs
func (h *AdminHandler) Jobs(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		respondError(w, http.StatusServiceUnavailable, "scheduler is not running")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"stats":   h.scheduler.Stats(),
		"pending": h.scheduler.ListPendingJobs(),
	})
}

// RunJob handles POST /api/v1/admin/jobs/{name}/run
func (h *AdminHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		respondError(w, http.StatusServiceUnavailable, "scheduler is not running")
		return
	}

	name := chi.URLParam(r, "name")
	h.logger.Info().Str("job", name).Msg("triggering job")

	job, err := h.scheduler.RunNow(r.Context(), name)
	if err != nil {
		respondServiceError(w, h.logger, err, "run job")
		return
	}
	respondJSON(w, http.StatusOK, job)
}

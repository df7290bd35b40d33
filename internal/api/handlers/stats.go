package handlers

import (
	"net/http"

	"insafe-lab/internal/domain/services"
	"insafe-lab/pkg/logger"
)

// StatsHandler handles the dashboard statistics endpoint
type StatsHandler struct {
	scans    *services.ScanService
	learning *services.LearningService
	logger   *logger.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(scans *services.ScanService, learning *services.LearningService, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		scans:    scans,
		learning: learning,
		logger:   log.WithComponent("stats-handler"),
	}
}

// Get handles GET /api/v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.scans.Stats(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Learning handles GET /api/v1/stats/learning - a compact learning summary
func (h *StatsHandler) Learning(w http.ResponseWriter, r *http.Request) {
	if h.learning == nil {
		respondError(w, http.StatusServiceUnavailable, "learning is not configured")
		return
	}
	st := h.learning.Status()
	respondJSON(w, http.StatusOK, map[string]any{
		"averageAccuracy":   st.AverageAccuracy,
		"totalTrainingData": st.TotalTrainingData,
		"retrainCount":      st.RetrainCount,
		"lastTrainingTime":  st.LastTrainingTime,
	})
}

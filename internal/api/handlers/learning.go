package handlers

import (
	"net/http"

	"insafe-lab/internal/domain/models"
	"insafe-lab/internal/domain/services"
	"insafe-lab/pkg/logger"
)

// LearningHandler exposes the adaptive learning engine
type LearningHandler struct {
	service *services.LearningService
	logger  *logger.Logger
}

// NewLearningHandler creates a new LearningHandler
func NewLearningHandler(service *services.LearningService, log *logger.Logger) *LearningHandler {
	return &LearningHandler{
		service: service,
		logger:  log.WithComponent("learning-handler"),
	}
}

// PredictRequest is the body of POST /ai/predict
type PredictRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
	Type    string `json:"type" validate:"required"`
}

// FeedbackRequest is the body of POST /ai/feedback
type FeedbackRequest struct {
	ExampleID        string `json:"exampleId" validate:"required"`
	Feedback         string `json:"feedback" validate:"required,oneof=correct incorrect"`
	CorrectedVerdict string `json:"correctedVerdict,omitempty" validate:"omitempty,oneof=safe suspicious dangerous"`
}

// Status handles GET /api/v1/ai/status
func (h *LearningHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Status())
}

// Learn handles POST /api/v1/ai/learn
func (h *LearningHandler) Learn(w http.ResponseWriter, r *http.Request) {
	var obs models.Observation
	if !decodeAndValidate(w, r, &obs) {
		return
	}
	ct, err := models.ParseContentType(string(obs.ContentType))
	if err != nil {
		respondServiceError(w, h.logger, err, "learn")
		return
	}
	obs.ContentType = ct
	obs.ExampleID = ""

	res := h.service.Learn(obs)
	if !res.Success {
		respondJSON(w, http.StatusUnprocessableEntity, res)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Predict handles POST /api/v1/ai/predict
func (h *LearningHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ct, err := models.ParseContentType(req.Type)
	if err != nil {
		respondServiceError(w, h.logger, err, "predict")
		return
	}

	pred, err := h.service.Predict(req.Content, ct)
	if err != nil {
		respondServiceError(w, h.logger, err, "predict")
		return
	}
	respondJSON(w, http.StatusOK, pred)
}

// Feedback handles POST /api/v1/ai/feedback
func (h *LearningHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	err := h.service.Feedback(req.ExampleID, models.Feedback(req.Feedback), models.Verdict(req.CorrectedVerdict))
	if err != nil {
		respondServiceError(w, h.logger, err, "apply feedback")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"exampleId": req.ExampleID,
	})
}

// Retrain handles POST /api/v1/ai/retrain
func (h *LearningHandler) Retrain(w http.ResponseWriter, r *http.Request) {
	if !h.service.Retrain() {
		respondError(w, http.StatusConflict, "retraining already in progress")
		return
	}
	h.logger.Info().Msg("manual retrain completed")
	respondJSON(w, http.StatusOK, h.service.Status())
}

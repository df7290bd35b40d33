package handlers

import (
	"net/http"
	"strings"

	"insafe-lab/internal/domain/models"
	"insafe-lab/internal/domain/services"
	"insafe-lab/pkg/logger"
)

// PatternsHandler handles the pattern catalog endpoints
type PatternsHandler struct {
	service *services.PatternService
	logger  *logger.Logger
}

// NewPatternsHandler creates a new PatternsHandler
func NewPatternsHandler(service *services.PatternService, log *logger.Logger) *PatternsHandler {
	return &PatternsHandler{
		service: service,
		logger:  log.WithComponent("patterns-handler"),
	}
}

// AddPatternRequest is the body of POST /patterns
type AddPatternRequest struct {
	Category    string `json:"category" validate:"required"`
	Pattern     string `json:"pattern" validate:"required,max=512"`
	IsRegex     bool   `json:"isRegex"`
	Weight      int    `json:"weight" validate:"omitempty,gte=1,lte=100"`
	Description string `json:"description" validate:"max=512"`
}

// List handles GET /api/v1/patterns?category=
func (h *PatternsHandler) List(w http.ResponseWriter, r *http.Request) {
	patterns, err := h.service.List(r.URL.Query().Get("category"))
	if err != nil {
		respondServiceError(w, h.logger, err, "list patterns")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"patterns": patterns,
		"total":    len(patterns),
	})
}

// Add handles POST /api/v1/patterns
func (h *PatternsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddPatternRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	added, err := h.service.Add(r.Context(), models.ScamPattern{
		Category:    models.PatternCategory(strings.ToLower(strings.TrimSpace(req.Category))),
		Pattern:     req.Pattern,
		IsRegex:     req.IsRegex,
		Weight:      req.Weight,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "add pattern")
		return
	}
	respondJSON(w, http.StatusCreated, added)
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"insafe-lab/internal/domain/models"
	"insafe-lab/internal/domain/services"
	"insafe-lab/internal/streaming"
	"insafe-lab/pkg/logger"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Handlers holds all API handlers
type Handlers struct {
	Health    *HealthHandler
	Scan      *ScanHandler
	Learning  *LearningHandler
	Patterns  *PatternsHandler
	Reports   *ReportsHandler
	Intel     *IntelHandler
	Stats     *StatsHandler
	Admin     *AdminHandler
	Streaming *StreamingHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Scans        *services.ScanService
	Learning     *services.LearningService
	Patterns     *services.PatternService
	Reports      *services.ReportService
	Verification *services.VerificationService
	Scheduler    *services.Scheduler
	WSHub        *streaming.WebSocketHub
	EventBus     *streaming.EventBus
	Checks       map[string]Pinger
	Version      string
	Logger       *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.Checks, deps.Version, deps.Logger),
		Scan:      NewScanHandler(deps.Scans, deps.Logger),
		Learning:  NewLearningHandler(deps.Learning, deps.Logger),
		Patterns:  NewPatternsHandler(deps.Patterns, deps.Logger),
		Reports:   NewReportsHandler(deps.Reports, deps.Logger),
		Intel:     NewIntelHandler(deps.Verification, deps.Logger),
		Stats:     NewStatsHandler(deps.Scans, deps.Learning, deps.Logger),
		Admin:     NewAdminHandler(deps.Scheduler, deps.Logger),
		Streaming: NewStreamingHandler(deps.WSHub, deps.EventBus, deps.Logger),
	}
}

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError maps domain errors onto HTTP status codes
func respondServiceError(w http.ResponseWriter, log *logger.Logger, err error, action string) {
	switch {
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrUnknownContentType):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrExampleNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	default:
		log.Error().Err(err).Msg("failed to " + action)
		respondError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// It writes the 400 response itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			respondJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:  validationSummary(verrs),
				Fields: validationFields(verrs),
			})
			return false
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func validationFields(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = validationMessage(fe)
	}
	return out
}

func validationSummary(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, validationMessage(fe))
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// queryLimit parses ?limit=, falling back to def for missing or bad values
func queryLimit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// clientIP returns the caller address. RealIP middleware has already
// rewritten RemoteAddr from the forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

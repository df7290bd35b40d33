package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"insafe-lab/internal/domain/models"
	"insafe-lab/internal/domain/services"
	"insafe-lab/pkg/logger"
)

// ScanHandler handles the content scanning endpoints
type ScanHandler struct {
	service *services.ScanService
	logger  *logger.Logger
}

// NewScanHandler creates a new ScanHandler
func NewScanHandler(service *services.ScanService, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		service: service,
		logger:  log.WithComponent("scan-handler"),
	}
}

// ScanURLRequest is the body of POST /scan/url
type ScanURLRequest struct {
	URL string `json:"url" validate:"required,max=2048"`
}

// ScanSMSRequest is the body of POST /scan/sms
type ScanSMSRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

// ScanQRRequest is the body of POST /scan/qr
type ScanQRRequest struct {
	DecodedText string `json:"decodedText" validate:"required,max=10000"`
}

// ScanAPKRequest is the body of POST /scan/apk
type ScanAPKRequest struct {
	AppName          string `json:"appName" validate:"required,max=256"`
	ExtractedStrings string `json:"extractedStrings" validate:"max=9000"`
}

// ScanCallRequest is the body of POST /scan/call
type ScanCallRequest struct {
	Transcript string `json:"transcript" validate:"required,max=10000"`
}

// ScanPhoneRequest is the body of POST /scan/phone
type ScanPhoneRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,max=32"`
}

// URL handles POST /api/v1/scan/url
func (h *ScanHandler) URL(w http.ResponseWriter, r *http.Request) {
	var req ScanURLRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.scan(w, r, services.ScanRequest{Type: models.ContentTypeURL, Content: req.URL})
}

// SMS handles POST /api/v1/scan/sms
func (h *ScanHandler) SMS(w http.ResponseWriter, r *http.Request) {
	var req ScanSMSRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.scan(w, r, services.ScanRequest{Type: models.ContentTypeSMS, Content: req.Text})
}

// QR handles POST /api/v1/scan/qr
func (h *ScanHandler) QR(w http.ResponseWriter, r *http.Request) {
	var req ScanQRRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.scan(w, r, services.ScanRequest{Type: models.ContentTypeQR, Content: req.DecodedText})
}

// APK handles POST /api/v1/scan/apk. The app name is stored; the extracted
// strings are what the classifier sees.
func (h *ScanHandler) APK(w http.ResponseWriter, r *http.Request) {
	var req ScanAPKRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.scan(w, r, services.ScanRequest{
		Type:           models.ContentTypeAPK,
		Content:        services.APKContent(req.AppName, req.ExtractedStrings),
		StoredContent:  req.AppName,
		ClassifierText: req.ExtractedStrings,
	})
}

// Call handles POST /api/v1/scan/call
func (h *ScanHandler) Call(w http.ResponseWriter, r *http.Request) {
	var req ScanCallRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.scan(w, r, services.ScanRequest{Type: models.ContentTypeCall, Content: req.Transcript})
}

// Phone handles POST /api/v1/scan/phone
func (h *ScanHandler) Phone(w http.ResponseWriter, r *http.Request) {
	var req ScanPhoneRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	h.scan(w, r, services.ScanRequest{Type: models.ContentTypePhone, Content: req.PhoneNumber})
}

func (h *ScanHandler) scan(w http.ResponseWriter, r *http.Request, req services.ScanRequest) {
	req.IPAddress = clientIP(r)

	result, err := h.service.Scan(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.logger, err, "scan content")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Get handles GET /api/v1/scans/{id}
func (h *ScanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid scan id")
		return
	}

	scan, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get scan")
		return
	}
	respondJSON(w, http.StatusOK, scan)
}

// Recent handles GET /api/v1/scans/recent
func (h *ScanHandler) Recent(w http.ResponseWriter, r *http.Request) {
	scans, err := h.service.Recent(r.Context(), queryLimit(r, 10))
	if err != nil {
		respondServiceError(w, h.logger, err, "list recent scans")
		return
	}
	respondJSON(w, http.StatusOK, scans)
}

// List handles GET /api/v1/scans?type=&limit=
func (h *ScanHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 50)
	scanType := r.URL.Query().Get("type")
	if scanType == "" {
		scans, err := h.service.Recent(r.Context(), limit)
		if err != nil {
			respondServiceError(w, h.logger, err, "list scans")
			return
		}
		respondJSON(w, http.StatusOK, scans)
		return
	}

	scans, err := h.service.ByType(r.Context(), scanType, limit)
	if err != nil {
		respondServiceError(w, h.logger, err, "list scans")
		return
	}
	respondJSON(w, http.StatusOK, scans)
}

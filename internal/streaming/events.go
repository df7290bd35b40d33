package streaming

import (
	"time"

	"github.com/google/uuid"

	"insafe-lab/internal/domain/models"
)

// EventType represents the type of scan event
type EventType string

const (
	EventTypeScanCompleted  EventType = "scan_completed"
	EventTypeModelRetrained EventType = "model_retrained"
	EventTypeReportCreated  EventType = "report_created"
)

// Event is a real-time notification about scoring activity
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	// Scan details
	ScanID      int64          `json:"scanId,omitempty"`
	ContentType string         `json:"contentType,omitempty"`
	Verdict     models.Verdict `json:"verdict,omitempty"`
	Confidence  int            `json:"confidence,omitempty"`
	RiskFactors []string       `json:"riskFactors,omitempty"`

	// Report details
	ReportID   int64             `json:"reportId,omitempty"`
	ReportType models.ReportType `json:"reportType,omitempty"`

	// Learning details
	RetrainCount    int     `json:"retrainCount,omitempty"`
	AverageAccuracy float64 `json:"averageAccuracy,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewScanEvent creates a scan_completed event. Content is never included.
func NewScanEvent(res *models.ScanResult) *Event {
	return &Event{
		ID:          uuid.New().String(),
		Type:        EventTypeScanCompleted,
		Timestamp:   time.Now().UTC(),
		ScanID:      res.ID,
		ContentType: res.Type,
		Verdict:     res.Verdict,
		Confidence:  res.Confidence,
		RiskFactors: res.RiskFactors,
	}
}

// NewRetrainEvent creates a model_retrained event from a status snapshot
func NewRetrainEvent(status models.LearningStatus) *Event {
	return &Event{
		ID:              uuid.New().String(),
		Type:            EventTypeModelRetrained,
		Timestamp:       time.Now().UTC(),
		RetrainCount:    status.RetrainCount,
		AverageAccuracy: status.AverageAccuracy,
		Metadata:        map[string]any{"totalTrainingData": status.TotalTrainingData},
	}
}

// NewReportEvent creates a report_created event
func NewReportEvent(rep *models.Report) *Event {
	return &Event{
		ID:         uuid.New().String(),
		Type:       EventTypeReportCreated,
		Timestamp:  time.Now().UTC(),
		ReportID:   rep.ID,
		ReportType: rep.Type,
	}
}

// Subscription represents a client's subscription preferences
type Subscription struct {
	// Filter by event types (empty = all)
	Types []EventType `json:"types,omitempty"`

	// Filter scan events by content type (empty = all)
	ContentTypes []string `json:"contentTypes,omitempty"`

	// Drop scan events with a safe verdict
	ThreatsOnly bool `json:"threatsOnly,omitempty"`
}

// Matches checks if an event matches the subscription filters
func (s *Subscription) Matches(event *Event) bool {
	if len(s.Types) > 0 && !contains(s.Types, event.Type) {
		return false
	}

	if event.Type != EventTypeScanCompleted {
		return true
	}

	if len(s.ContentTypes) > 0 && !contains(s.ContentTypes, event.ContentType) {
		return false
	}

	if s.ThreatsOnly && !event.Verdict.IsThreat() {
		return false
	}

	return true
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

package models

import "time"

// Scan is a persisted scoring result. JSON field names are part of the
// public contract consumed by the dashboard.
type Scan struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	Content     string    `json:"content"`
	Verdict     Verdict   `json:"verdict"`
	Confidence  int       `json:"confidence"`
	RiskFactors []string  `json:"riskFactors"`
	Timestamp   time.Time `json:"timestamp"`
	IPAddress   *string   `json:"ipAddress"`
}

// ScanTypePhoneIntel marks scans produced by the phone intelligence lookup
const ScanTypePhoneIntel = "phone-intel"

// ScanStats summarizes the scan history
type ScanStats struct {
	TotalScans   int `json:"totalScans"`
	ScamsBlocked int `json:"scamsBlocked"`
	TodayScans   int `json:"todayScans"`
	Accuracy     int `json:"accuracy"` // percent of scans that were flagged
}

// ScanResult is returned to API callers after scoring and persisting content
type ScanResult struct {
	Scan
	LearningID      string                `json:"learningId,omitempty"`
	MatchedPatterns []ScamPattern         `json:"matchedPatterns,omitempty"`
	Signals         []Signal              `json:"signals,omitempty"`
	Verification    []*VerificationSignal `json:"verification,omitempty"`
}

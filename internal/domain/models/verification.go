package models

import "time"

// VerificationSignal is the result of checking content against one external source
type VerificationSignal struct {
	Source      string    `json:"source"`
	Matched     bool      `json:"matched"`
	Confidence  int       `json:"confidence"`
	FraudType   string    `json:"fraudType"`
	ReportCount int       `json:"reportCount"`
	Verified    bool      `json:"verified"`
	LastSeen    time.Time `json:"lastSeen"`
	Details     string    `json:"details"`
}

// ThreatAnalysis aggregates verification signals for a phone number
type ThreatAnalysis struct {
	PhoneNumber string                `json:"phoneNumber"`
	RiskLevel   Verdict               `json:"riskLevel"`
	Confidence  int                   `json:"confidence"`
	Sources     []*VerificationSignal `json:"sources"`
	LastChecked time.Time             `json:"lastChecked"`
}

// VerificationSourceStatus describes one configured verification source
type VerificationSourceStatus struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Priority int       `json:"priority"`
	LastSync time.Time `json:"lastSync"`
	IsActive bool      `json:"isActive"`
}

// VerificationStatus is the status of the verification service
type VerificationStatus struct {
	IsActive      bool                       `json:"isActive"`
	SourcesCount  int                        `json:"sourcesCount"`
	ActiveSources int                        `json:"activeSources"`
	LastUpdate    time.Time                  `json:"lastUpdate"`
	Sources       []VerificationSourceStatus `json:"sources"`
}

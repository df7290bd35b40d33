package models

import "time"

// ReportType classifies a community report by fraud family
type ReportType string

const (
	ReportTypeLoanFraud  ReportType = "loan_fraud"
	ReportTypeRummyScam  ReportType = "rummy_scam"
	ReportTypePhishing   ReportType = "phishing"
	ReportTypeUPIFraud   ReportType = "upi_fraud"
	ReportTypeLottery    ReportType = "lottery"
	ReportTypeFakeCall   ReportType = "fake_call"
	ReportTypeInvestment ReportType = "investment"
	ReportTypeOther      ReportType = "other"
)

// Report is a user-submitted community report of a scam
type Report struct {
	ID          int64      `json:"id"`
	Type        ReportType `json:"type"`
	Content     string     `json:"content"`
	Description *string    `json:"description"`
	ReporterIP  *string    `json:"reporterIp"`
	Verified    bool       `json:"verified"`
	Timestamp   time.Time  `json:"timestamp"`
}

// CreateReportRequest is the body of POST /reports
type CreateReportRequest struct {
	Type        ReportType `json:"type" validate:"required,max=64"`
	Content     string     `json:"content" validate:"required,max=10000"`
	Description string     `json:"description,omitempty" validate:"max=2000"`
}

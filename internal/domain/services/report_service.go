package services

import (
	"context"
	"fmt"
	"strings"

	"insafe-lab/internal/domain/models"
	"insafe-lab/pkg/logger"
)

// ReportService accepts and lists community scam reports
type ReportService struct {
	reports   ReportStore
	publisher EventPublisher
	metrics   *Metrics
	logger    *logger.Logger
}

// NewReportService creates a report service. publisher and metrics may be nil.
func NewReportService(reports ReportStore, publisher EventPublisher, metrics *Metrics, log *logger.Logger) *ReportService {
	return &ReportService{
		reports:   reports,
		publisher: publisher,
		metrics:   metrics,
		logger:    log.WithComponent("reports"),
	}
}

// Create stores a report. Reports always start unverified.
func (s *ReportService) Create(ctx context.Context, req models.CreateReportRequest, reporterIP string) (*models.Report, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: report content is required", models.ErrInvalidInput)
	}
	typ := models.ReportType(strings.ToLower(strings.TrimSpace(string(req.Type))))
	if typ == "" {
		return nil, fmt.Errorf("%w: report type is required", models.ErrInvalidInput)
	}

	rep := &models.Report{Type: typ, Content: content}
	if d := strings.TrimSpace(req.Description); d != "" {
		rep.Description = &d
	}
	if reporterIP != "" {
		rep.ReporterIP = &reporterIP
	}

	rep, err := s.reports.Create(ctx, rep)
	if err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	s.metrics.ObserveReport(rep.Type)
	if s.publisher != nil {
		if err := s.publisher.PublishReport(ctx, rep); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish report event")
		}
	}

	s.logger.Info().Int64("report_id", rep.ID).Str("type", string(rep.Type)).Msg("report received")
	return rep, nil
}

// List returns the newest reports, optionally of one type
func (s *ReportService) List(ctx context.Context, reportType string, limit int) ([]*models.Report, error) {
	reportType = strings.ToLower(strings.TrimSpace(reportType))
	if reportType == "" {
		return s.reports.List(ctx, limit)
	}
	return s.reports.ListByType(ctx, models.ReportType(reportType), limit)
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"insafe-lab/internal/domain/models"
	"insafe-lab/internal/domain/services/ai"
	"insafe-lab/pkg/logger"
)

// ScanRequest is one piece of content submitted for scoring
type ScanRequest struct {
	Type    models.ContentType
	Content string // text fed to the scorer

	// StoredContent is persisted in place of Content when set, e.g. the app
	// name for apk scans
	StoredContent string

	// ClassifierText is sent to the classifier in place of Content when set
	ClassifierText string

	IPAddress string
}

// ScanService scores content, records the result and feeds learning
type ScanService struct {
	detector   *ai.Detector
	scans      ScanStore
	classifier *Classifier
	verifier   *VerificationService
	learning   *LearningService
	publisher  EventPublisher
	counter    ScanCounter
	metrics    *Metrics
	logger     *logger.Logger
}

// ScanServiceDeps groups the optional collaborators of ScanService
type ScanServiceDeps struct {
	Classifier *Classifier
	Verifier   *VerificationService
	Learning   *LearningService
	Publisher  EventPublisher
	Counter    ScanCounter
	Metrics    *Metrics
}

// NewScanService creates a scan service. Every dependency in deps may be nil.
func NewScanService(detector *ai.Detector, scans ScanStore, deps ScanServiceDeps, log *logger.Logger) *ScanService {
	return &ScanService{
		detector:   detector,
		scans:      scans,
		classifier: deps.Classifier,
		verifier:   deps.Verifier,
		learning:   deps.Learning,
		publisher:  deps.Publisher,
		counter:    deps.Counter,
		metrics:    deps.Metrics,
		logger:     log.WithComponent("scan-service"),
	}
}

// Scan validates, scores and stores content. Storage, streaming and
// external signal failures are logged and never fail the scan.
func (s *ScanService) Scan(ctx context.Context, req ScanRequest) (*models.ScanResult, error) {
	if err := ValidateContent(req.Type, req.Content); err != nil {
		return nil, err
	}
	start := time.Now()
	log := s.logger.WithContentType(string(req.Type))

	policy := s.detector.Policy()
	var external []models.Signal
	var verification []*models.VerificationSignal

	if s.classifier.Enabled() && policy.Selects(models.SignalExternal) {
		text := req.ClassifierText
		if text == "" {
			text = req.Content
		}
		external = append(external, s.classifier.Signal(ctx, text, req.Type))
	}
	if s.verifier != nil && req.Type == models.ContentTypePhone && policy.Selects(models.SignalVerification) {
		sig, sources := s.verifier.Signal(ctx, req.Content)
		external = append(external, sig)
		verification = sources
	}

	det, err := s.detector.ScoreContent(req.Content, req.Type, external...)
	if err != nil {
		return nil, err
	}

	stored := req.StoredContent
	if stored == "" {
		stored = req.Content
	}
	scan := &models.Scan{
		Type:        string(req.Type),
		Content:     stored,
		Verdict:     det.Verdict,
		Confidence:  det.Confidence,
		RiskFactors: det.RiskFactors,
	}
	if req.IPAddress != "" {
		ip := req.IPAddress
		scan.IPAddress = &ip
	}
	if _, err := s.scans.Create(ctx, scan); err != nil {
		log.Warn().Err(err).Msg("failed to store scan, returning unsaved result")
		scan.ID = 0
		scan.Timestamp = time.Now().UTC()
	}

	res := &models.ScanResult{
		Scan:            *scan,
		MatchedPatterns: det.MatchedPatterns,
		Signals:         det.Signals,
		Verification:    verification,
	}
	if res.RiskFactors == nil {
		res.RiskFactors = []string{}
	}

	if s.learning != nil {
		res.LearningID = s.learning.LearnAsync(models.Observation{
			ContentType: req.Type,
			Content:     req.Content,
			Verdict:     det.Verdict,
			Confidence:  det.Confidence,
		})
	}

	s.metrics.ObserveScan(req.Type, det, time.Since(start))
	s.afterScan(ctx, res)

	log.Info().
		Int64("scan_id", res.ID).
		Str("verdict", string(res.Verdict)).
		Int("confidence", res.Confidence).
		Int("risk_factors", len(res.RiskFactors)).
		Dur("duration", time.Since(start)).
		Msg("scan completed")

	return res, nil
}

func (s *ScanService) afterScan(ctx context.Context, res *models.ScanResult) {
	if s.counter != nil {
		if _, err := s.counter.IncrScanCounter(ctx, res.Type); err != nil {
			s.logger.Debug().Err(err).Msg("failed to bump scan counter")
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishScan(ctx, res); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish scan event")
		}
	}
}

// Get returns one stored scan
func (s *ScanService) Get(ctx context.Context, id int64) (*models.Scan, error) {
	return s.scans.GetByID(ctx, id)
}

// Recent returns the newest scans
func (s *ScanService) Recent(ctx context.Context, limit int) ([]*models.Scan, error) {
	return s.scans.Recent(ctx, limit)
}

// ByType returns the newest scans of one type. Besides the content types,
// phone-intel lookups can be listed.
func (s *ScanService) ByType(ctx context.Context, scanType string, limit int) ([]*models.Scan, error) {
	scanType = strings.ToLower(strings.TrimSpace(scanType))
	if scanType != models.ScanTypePhoneIntel {
		ct, err := models.ParseContentType(scanType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
		}
		scanType = string(ct)
	}
	return s.scans.ListByType(ctx, scanType, limit)
}

// Stats summarizes the scan history
func (s *ScanService) Stats(ctx context.Context) (*models.ScanStats, error) {
	return s.scans.Stats(ctx)
}

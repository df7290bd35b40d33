package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"insafe-lab/internal/domain/models"
	"insafe-lab/internal/domain/services/ai"
	"insafe-lab/pkg/logger"
)

// LearningService exposes the adaptive learning engine to the API and runs
// background learning for completed scans
type LearningService struct {
	detector  *ai.Detector
	publisher EventPublisher
	metrics   *Metrics
	enabled   bool
	logger    *logger.Logger

	wg sync.WaitGroup
}

// NewLearningService creates the service and hooks retrain notifications.
// publisher and metrics may be nil.
func NewLearningService(detector *ai.Detector, enabled bool, publisher EventPublisher, metrics *Metrics, log *logger.Logger) *LearningService {
	s := &LearningService{
		detector:  detector,
		publisher: publisher,
		metrics:   metrics,
		enabled:   enabled,
		logger:    log.WithComponent("learning"),
	}
	detector.Engine().OnRetrain(s.retrained)
	return s
}

func (s *LearningService) retrained(status models.LearningStatus) {
	s.metrics.ObserveRetrain(status)
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.publisher.PublishRetrain(ctx, status); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish retrain event")
	}
}

// Enabled reports whether scans feed the learning engine
func (s *LearningService) Enabled() bool {
	return s.enabled
}

// Learn records an observation synchronously
func (s *LearningService) Learn(obs models.Observation) models.LearningResult {
	res := s.detector.LearnFromOutcome(obs)
	s.metrics.ObserveLearn(obs.ContentType, res.Success)
	if !res.Success {
		s.logger.Warn().
			Str("content_type", string(obs.ContentType)).
			Str("reason", res.Message).
			Msg("learning rejected observation")
	}
	return res
}

// LearnAsync records an observation in the background. The example id is
// assigned up front and returned immediately.
func (s *LearningService) LearnAsync(obs models.Observation) string {
	if !s.enabled {
		return ""
	}
	if obs.ExampleID == "" {
		obs.ExampleID = uuid.New().String()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Learn(obs)
	}()
	return obs.ExampleID
}

// Wait blocks until every background learn has finished
func (s *LearningService) Wait() {
	s.wg.Wait()
}

// Feedback applies user feedback to a learned example
func (s *LearningService) Feedback(exampleID string, fb models.Feedback, corrected models.Verdict) error {
	return s.detector.SubmitFeedback(exampleID, fb, corrected)
}

// Predict returns the learned signal for content
func (s *LearningService) Predict(content string, ct models.ContentType) (models.Prediction, error) {
	if err := ValidateContent(ct, content); err != nil {
		return models.Prediction{}, err
	}
	return s.detector.Predict(content, ct), nil
}

// Status reports the learning engine state
func (s *LearningService) Status() models.LearningStatus {
	return s.detector.GetModelStatus()
}

// Retrain forces a retraining pass. It returns false when one is already running.
func (s *LearningService) Retrain() bool {
	return s.detector.Engine().Retrain()
}

// RetrainIfDue retrains when enough examples have accumulated
func (s *LearningService) RetrainIfDue() bool {
	return s.detector.Engine().RetrainIfDue()
}

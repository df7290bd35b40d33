package ai

import (
	"fmt"

	"insafe-lab/internal/domain/models"
	"insafe-lab/pkg/logger"
)

// DetectorConfig holds the settings for the scoring core
type DetectorConfig struct {
	Scorer   ScorerConfig
	Learning LearningConfig
	Policy   Policy
}

// DefaultDetectorConfig returns a deterministic detector blending rule and external signals
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		Scorer:   ScorerConfig{Deterministic: true, KnownScammers: []string{"+919876543210", "+911234567890"}},
		Learning: DefaultLearningConfig(),
		Policy:   DefaultPolicy(),
	}
}

// Detector is the entry point to the scoring core: catalog, rule scorer,
// learning engine and blend policy
type Detector struct {
	logger  *logger.Logger
	catalog *Catalog
	scorer  *Scorer
	engine  *LearningEngine
	policy  Policy
}

// NewDetector wires a detector from its configuration
func NewDetector(cfg DetectorConfig, log *logger.Logger) *Detector {
	catalog := NewCatalog(log)
	return &Detector{
		logger:  log.WithComponent("detector"),
		catalog: catalog,
		scorer:  NewScorer(catalog, cfg.Scorer),
		engine:  NewLearningEngine(cfg.Learning, log),
		policy:  cfg.Policy,
	}
}

// ScoreContent scores content of type ct. External signals (classifier,
// verification) are blended when the policy selects them and they are available.
func (d *Detector) ScoreContent(content string, ct models.ContentType, external ...models.Signal) (models.DetectionResult, error) {
	if !ct.IsValid() {
		return models.DetectionResult{}, fmt.Errorf("%w: %q", models.ErrUnknownContentType, ct)
	}

	rule := d.scorer.Score(content, ct)
	signals := []models.Signal{{Kind: models.SignalRule, Confidence: rule.Confidence, Available: true}}
	factors := rule.RiskFactors

	var insights []string
	if d.policy.Selects(models.SignalLearned) {
		pred := d.engine.Predict(content, ct)
		signals = append(signals, models.Signal{Kind: models.SignalLearned, Confidence: pred.Confidence, Available: true})
		factors = mergeUnique(factors, pred.RiskFactors)
		insights = pred.Insights
	}
	signals = append(signals, external...)

	confidence := d.policy.Blend(signals)
	result := models.DetectionResult{
		Verdict:         d.policy.Verdict(confidence),
		Confidence:      confidence,
		RiskFactors:     factors,
		MatchedPatterns: rule.MatchedPatterns,
		Signals:         signals,
		Insights:        insights,
	}

	d.logger.Debug().
		Str("content_type", string(ct)).
		Int("rule_confidence", rule.Confidence).
		Int("confidence", confidence).
		Str("verdict", string(result.Verdict)).
		Int("risk_factors", len(factors)).
		Msg("content scored")

	return result, nil
}

// LearnFromOutcome feeds a scored outcome to the learning engine
func (d *Detector) LearnFromOutcome(obs models.Observation) models.LearningResult {
	return d.engine.Learn(obs)
}

// GetModelStatus reports the learning engine state
func (d *Detector) GetModelStatus() models.LearningStatus {
	return d.engine.Status()
}

// SubmitFeedback attaches user feedback to a previously learned example
func (d *Detector) SubmitFeedback(exampleID string, fb models.Feedback, corrected models.Verdict) error {
	return d.engine.Feedback(exampleID, fb, corrected)
}

// Predict returns the learned signal alone
func (d *Detector) Predict(content string, ct models.ContentType) models.Prediction {
	return d.engine.Predict(content, ct)
}

func (d *Detector) Catalog() *Catalog { return d.catalog }

func (d *Detector) Engine() *LearningEngine { return d.engine }

func (d *Detector) Policy() Policy { return d.policy }

// mergeUnique appends the members of extra not already in base
func mergeUnique(base, extra []string) []string {
	if len(extra) == 0 {
		return base
	}
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, s := range base {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	for _, s := range extra {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

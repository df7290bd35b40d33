package ai

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"insafe-lab/internal/domain/models"
	"insafe-lab/pkg/logger"
)

// LearningConfig tunes the learning engine
type LearningConfig struct {
	RetrainEvery int // retrain after every N examples across all types
	Window       int // most recent examples per type considered by retraining
	MinSamples   int // per-type minimum within the window
	MaxExamples  int // cap on the training log, 0 keeps everything
}

// DefaultLearningConfig returns the stock learning parameters
func DefaultLearningConfig() LearningConfig {
	return LearningConfig{
		RetrainEvery: 10,
		Window:       50,
		MinSamples:   10,
	}
}

// LearningEngine keeps one adaptive model per content type plus the shared
// training log. Safe for concurrent use.
type LearningEngine struct {
	logger *logger.Logger
	cfg    LearningConfig
	models map[models.ContentType]*learningModel // fixed after construction

	logMu    sync.Mutex
	examples []*models.TrainingExample
	byID     map[string]*models.TrainingExample
	appended int

	training     atomic.Bool
	retrainCount atomic.Int64
	lastTraining atomic.Int64 // unix nanos

	onRetrain func(models.LearningStatus)
	now       func() time.Time
}

// NewLearningEngine creates an engine with seeded models for every content type
func NewLearningEngine(cfg LearningConfig, log *logger.Logger) *LearningEngine {
	if cfg.RetrainEvery <= 0 {
		cfg.RetrainEvery = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = 50
	}
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = 10
	}

	e := &LearningEngine{
		logger: log.WithComponent("learning-engine"),
		cfg:    cfg,
		models: make(map[models.ContentType]*learningModel),
		byID:   make(map[string]*models.TrainingExample),
		now:    time.Now,
	}
	for _, ct := range models.AllContentTypes() {
		e.models[ct] = newLearningModel(ct, modelSeeds[ct])
	}
	return e
}

// OnRetrain registers a hook invoked after every completed retraining pass
func (e *LearningEngine) OnRetrain(fn func(models.LearningStatus)) {
	e.onRetrain = fn
}

// Predict scores content from what the model for ct has learned so far
func (e *LearningEngine) Predict(content string, ct models.ContentType) models.Prediction {
	m, ok := e.models[ct]
	if !ok {
		return models.Prediction{
			Verdict:     models.VerdictSafe,
			RiskFactors: []string{"Unknown content type"},
			Insights:    []string{},
		}
	}

	f := ExtractFeatures(content, ct)
	factors := []string{}
	insights := []string{}
	raw := 0.0

	m.mu.RLock()
	if st, ok := m.patterns[PatternSignature(f)]; ok && st.count > 0 {
		rate := st.threatScore / float64(st.count)
		raw += rate * 0.4
		insights = append(insights, fmt.Sprintf("Similar to %d earlier cases with a %.0f%% threat rate", st.count, rate*100))
	}

	kw := 0.0
	for _, k := range f.SuspiciousKeywords {
		w, ok := m.keywordWeights[k]
		if !ok {
			w = defaultKeywordWeight
		}
		kw += w
		factors = append(factors, fmt.Sprintf("Learned suspicious keyword: %q", k))
	}
	raw += math.Min(kw*0.3, 0.5)

	if f.UrgencyScore > 0.3 {
		raw += f.UrgencyScore * 0.2
		factors = append(factors, fmt.Sprintf("High urgency language (%.0f%% urgency score)", f.UrgencyScore*100))
	}

	if len(f.PhoneNumbers) > 0 {
		raw += 0.10
	}
	if len(f.URLs) > 0 {
		raw += 0.15
	}
	if len(f.MoneyMentions) > 0 {
		raw += 0.20
	}
	if len(f.PersonalInfoRequests) > 0 {
		raw += 0.25
	}

	accuracy := m.accuracy
	trainingCount := m.trainingCount
	vocab := len(m.vocabulary)
	m.mu.RUnlock()

	confidence := clamp(int(math.Round(math.Min(95, raw*100*accuracy))), 0, 100)
	verdict := models.VerdictFor(confidence)

	switch verdict {
	case models.VerdictDangerous:
		insights = append(insights, fmt.Sprintf("Model accuracy %.0f%%, high threat", accuracy*100))
	case models.VerdictSuspicious:
		insights = append(insights, fmt.Sprintf("Model accuracy %.0f%%, moderate threat", accuracy*100))
	default:
		insights = append(insights, "Learned patterns suggest the content is likely safe")
	}
	insights = append(insights,
		fmt.Sprintf("Trained on %d examples", trainingCount),
		fmt.Sprintf("Vocabulary of %d words", vocab),
	)

	return models.Prediction{
		Verdict:     verdict,
		Confidence:  confidence,
		RiskFactors: factors,
		Insights:    insights,
	}
}

// Learn records an observation and folds it into the matching model. Every
// RetrainEvery-th example triggers a retraining pass. Failures are reported
// in the result, never returned as errors.
func (e *LearningEngine) Learn(obs models.Observation) (result models.LearningResult) {
	m, ok := e.models[obs.ContentType]
	if !ok {
		return models.LearningResult{Success: false, Message: "unknown content type"}
	}
	if _, err := models.ParseVerdict(string(obs.Verdict)); err != nil {
		return models.LearningResult{Success: false, Message: err.Error()}
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().
				Interface("panic", r).
				Str("content_type", string(obs.ContentType)).
				Msg("learning failed")
			result = models.LearningResult{Success: false, Message: "learning failed"}
		}
	}()

	id := obs.ExampleID
	if id == "" {
		id = uuid.New().String()
	}
	ex := &models.TrainingExample{
		ID:            id,
		ContentType:   obs.ContentType,
		Content:       obs.Content,
		Features:      ExtractFeatures(obs.Content, obs.ContentType),
		ActualVerdict: obs.Verdict,
		UserFeedback:  obs.UserFeedback,
		Confidence:    obs.Confidence,
		Timestamp:     e.now().UTC(),
	}

	due := e.appendExample(ex)
	m.apply(ex.Content, ex.Features, ex.ActualVerdict, ex.UserFeedback, ex.Timestamp)

	if due {
		e.Retrain()
	}

	st := m.status()
	e.logger.Debug().
		Str("content_type", string(obs.ContentType)).
		Str("verdict", string(obs.Verdict)).
		Int("patterns", st.PatternsLearned).
		Msg("pattern learned")

	return models.LearningResult{
		Success:         true,
		Message:         "pattern learned",
		ExampleID:       ex.ID,
		ModelAccuracy:   st.Accuracy,
		PatternsLearned: st.PatternsLearned,
	}
}

// appendExample adds ex to the log and reports whether a retrain is due
func (e *LearningEngine) appendExample(ex *models.TrainingExample) bool {
	e.logMu.Lock()
	defer e.logMu.Unlock()

	e.examples = append(e.examples, ex)
	e.byID[ex.ID] = ex
	e.appended++

	if limit := e.cfg.MaxExamples; limit > 0 && len(e.examples) > limit {
		drop := len(e.examples) - limit
		for _, old := range e.examples[:drop] {
			delete(e.byID, old.ID)
		}
		e.examples = append([]*models.TrainingExample(nil), e.examples[drop:]...)
	}

	return e.appended%e.cfg.RetrainEvery == 0
}

// Retrain recalibrates every model that has enough recent examples. Only one
// pass runs at a time; a call made while another is running returns false.
func (e *LearningEngine) Retrain() (ran bool) {
	if !e.training.CompareAndSwap(false, true) {
		return false
	}
	defer e.training.Store(false)

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("model retraining failed")
			ran = false
		}
	}()

	start := e.now()
	recent := e.recentByType()
	retrained := 0
	for _, ct := range models.AllContentTypes() {
		if rs := recent[ct]; len(rs) >= e.cfg.MinSamples {
			e.models[ct].retrain(rs)
			retrained++
		}
	}

	e.lastTraining.Store(e.now().UnixNano())
	e.retrainCount.Add(1)

	e.logger.Info().
		Int("models_retrained", retrained).
		Dur("duration", e.now().Sub(start)).
		Msg("model retraining completed")

	if e.onRetrain != nil {
		e.onRetrain(e.Status())
	}
	return true
}

// RetrainIfDue retrains when the log holds more than five examples per model
func (e *LearningEngine) RetrainIfDue() bool {
	e.logMu.Lock()
	n := len(e.examples)
	e.logMu.Unlock()

	if n <= len(e.models)*5 {
		return false
	}
	return e.Retrain()
}

// recentByType snapshots the last Window examples of each type
func (e *LearningEngine) recentByType() map[models.ContentType][]models.TrainingExample {
	e.logMu.Lock()
	defer e.logMu.Unlock()

	out := make(map[models.ContentType][]models.TrainingExample)
	for i := len(e.examples) - 1; i >= 0; i-- {
		ex := e.examples[i]
		if len(out[ex.ContentType]) < e.cfg.Window {
			out[ex.ContentType] = append(out[ex.ContentType], *ex)
		}
	}
	return out
}

// Feedback attaches user feedback to a recorded example and immediately
// re-applies it to the model. Without a corrected verdict the recorded label
// is re-applied unchanged.
func (e *LearningEngine) Feedback(exampleID string, fb models.Feedback, corrected models.Verdict) error {
	if fb != models.FeedbackCorrect && fb != models.FeedbackIncorrect {
		return fmt.Errorf("%w: unknown feedback %q", models.ErrInvalidInput, fb)
	}
	if corrected != "" {
		if _, err := models.ParseVerdict(string(corrected)); err != nil {
			return err
		}
	}

	e.logMu.Lock()
	ex, ok := e.byID[exampleID]
	if !ok {
		e.logMu.Unlock()
		return fmt.Errorf("%w: %s", models.ErrExampleNotFound, exampleID)
	}
	label := corrected
	if label == "" {
		label = ex.ActualVerdict
	}
	ex.UserFeedback = fb
	ex.ActualVerdict = label
	snapshot := *ex
	e.logMu.Unlock()

	e.models[snapshot.ContentType].apply(snapshot.Content, snapshot.Features, label, fb, e.now().UTC())

	e.logger.Info().
		Str("example_id", exampleID).
		Str("feedback", string(fb)).
		Str("label", string(label)).
		Msg("feedback applied")
	return nil
}

// Example returns a copy of a recorded training example
func (e *LearningEngine) Example(id string) (models.TrainingExample, bool) {
	e.logMu.Lock()
	defer e.logMu.Unlock()
	ex, ok := e.byID[id]
	if !ok {
		return models.TrainingExample{}, false
	}
	return *ex, true
}

// Status reports the state of every model
func (e *LearningEngine) Status() models.LearningStatus {
	st := models.LearningStatus{
		Models:       make(map[models.ContentType]models.ModelStatus, len(e.models)),
		IsTraining:   e.training.Load(),
		RetrainCount: int(e.retrainCount.Load()),
	}
	if ns := e.lastTraining.Load(); ns > 0 {
		st.LastTrainingTime = time.Unix(0, ns).UTC()
	}

	sum := 0.0
	for _, ct := range models.AllContentTypes() {
		ms := e.models[ct].status()
		st.Models[ct] = ms
		sum += ms.Accuracy
	}
	st.AverageAccuracy = sum / float64(len(e.models))

	e.logMu.Lock()
	st.TotalTrainingData = len(e.examples)
	e.logMu.Unlock()

	return st
}

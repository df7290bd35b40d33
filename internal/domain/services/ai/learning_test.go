package ai

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insafe-lab/internal/domain/models"
	"insafe-lab/pkg/logger"
)

func newTestEngine(cfg LearningConfig) *LearningEngine {
	return NewLearningEngine(cfg, logger.NewNop())
}

func TestLearningEngineSeeds(t *testing.T) {
	e := newTestEngine(DefaultLearningConfig())
	st := e.Status()

	require.Len(t, st.Models, 6)
	assert.InDelta(t, 0.75, st.Models[models.ContentTypeSMS].Accuracy, 1e-9)
	assert.InDelta(t, 0.15, st.Models[models.ContentTypePhone].LearningRate, 1e-9)
	assert.InDelta(t, 0.85, st.Models[models.ContentTypeURL].Accuracy, 1e-9)
	assert.InDelta(t, 0.08, st.Models[models.ContentTypeCall].LearningRate, 1e-9)
	assert.Zero(t, st.TotalTrainingData)
	assert.False(t, st.IsTraining)
}

func TestPredictFreshModel(t *testing.T) {
	e := newTestEngine(DefaultLearningConfig())

	p := e.Predict("hello there", models.ContentTypeSMS)
	assert.Equal(t, 0, p.Confidence)
	assert.Equal(t, models.VerdictSafe, p.Verdict)

	// keyword 0.1*0.3 + PII 0.25 = 0.28, times 100 times 0.75 accuracy
	p = e.Predict("share otp", models.ContentTypeSMS)
	assert.Equal(t, 21, p.Confidence)
	assert.Contains(t, p.RiskFactors, `Learned suspicious keyword: "otp"`)
}

func TestPredictUnknownType(t *testing.T) {
	e := newTestEngine(DefaultLearningConfig())

	p := e.Predict("anything", models.ContentType("fax"))
	assert.Equal(t, models.VerdictSafe, p.Verdict)
	assert.Zero(t, p.Confidence)
}

func TestLearnTenIdenticalTriggersOneRetrain(t *testing.T) {
	e := newTestEngine(DefaultLearningConfig())
	content := "Congratulations winner! Claim your lottery prize now"

	for i := 0; i < 10; i++ {
		res := e.Learn(models.Observation{
			ContentType: models.ContentTypeSMS,
			Content:     content,
			Verdict:     models.VerdictDangerous,
			Confidence:  90,
		})
		require.True(t, res.Success)
	}

	st := e.Status()
	assert.Equal(t, 1, st.RetrainCount)
	assert.Equal(t, 10, st.Models[models.ContentTypeSMS].TrainingCount)
	assert.Equal(t, 10, st.TotalTrainingData)
	assert.Equal(t, 1, st.Models[models.ContentTypeSMS].PatternsLearned)
	assert.False(t, st.LastTrainingTime.IsZero())

	// all ten examples count as correct: 0.7*0.75 + 0.3*1
	assert.InDelta(t, 0.825, st.Models[models.ContentTypeSMS].Accuracy, 1e-9)
	assert.InDelta(t, 0.095, st.Models[models.ContentTypeSMS].LearningRate, 1e-9)
	// models without enough samples are untouched
	assert.InDelta(t, 0.85, st.Models[models.ContentTypeURL].Accuracy, 1e-9)
}

func TestLearnIsMonotonicForThreats(t *testing.T) {
	content := "Congratulations winner! Call 9876543210 to claim your lottery prize"

	for _, ct := range models.AllContentTypes() {
		t.Run(string(ct), func(t *testing.T) {
			e := newTestEngine(DefaultLearningConfig())
			before := e.Predict(content, ct).Confidence

			e.Learn(models.Observation{ContentType: ct, Content: content, Verdict: models.VerdictDangerous, Confidence: 95})
			after := e.Predict(content, ct).Confidence

			assert.GreaterOrEqual(t, after, before)
		})
	}
}

func TestLearnAccuracyStaysInBounds(t *testing.T) {
	e := newTestEngine(DefaultLearningConfig())

	for i := 0; i < 60; i++ {
		e.Learn(models.Observation{ContentType: models.ContentTypeCall, Content: "bank official otp", Verdict: models.VerdictSafe, UserFeedback: models.FeedbackIncorrect})
		e.Learn(models.Observation{ContentType: models.ContentTypeURL, Content: "https://ok.example", Verdict: models.VerdictSafe, UserFeedback: models.FeedbackCorrect})
	}

	st := e.Status()
	for ct, ms := range st.Models {
		assert.GreaterOrEqual(t, ms.Accuracy, 0.50, ct)
		assert.LessOrEqual(t, ms.Accuracy, 0.99, ct)
		assert.GreaterOrEqual(t, ms.LearningRate, 0.01, ct)
		assert.LessOrEqual(t, ms.LearningRate, 0.30, ct)
	}
	assert.InDelta(t, 0.50, st.Models[models.ContentTypeCall].Accuracy, 0.05)
}

func TestLearnRejectsUnknownTypeAndVerdict(t *testing.T) {
	e := newTestEngine(DefaultLearningConfig())

	res := e.Learn(models.Observation{ContentType: "fax", Content: "x", Verdict: models.VerdictSafe})
	assert.False(t, res.Success)

	res = e.Learn(models.Observation{ContentType: models.ContentTypeSMS, Content: "x", Verdict: "maybe"})
	assert.False(t, res.Success)
	assert.Zero(t, e.Status().TotalTrainingData)
}

func TestFeedbackReappliesCorrectedLabel(t *testing.T) {
	e := newTestEngine(DefaultLearningConfig())

	res := e.Learn(models.Observation{ContentType: models.ContentTypeSMS, Content: "your parcel is waiting", Verdict: models.VerdictDangerous})
	require.True(t, res.Success)
	require.NotEmpty(t, res.ExampleID)

	err := e.Feedback(res.ExampleID, models.FeedbackIncorrect, models.VerdictSafe)
	require.NoError(t, err)

	ex, ok := e.Example(res.ExampleID)
	require.True(t, ok)
	assert.Equal(t, models.VerdictSafe, ex.ActualVerdict)
	assert.Equal(t, models.FeedbackIncorrect, ex.UserFeedback)

	st := e.Status().Models[models.ContentTypeSMS]
	assert.Equal(t, 2, st.TrainingCount)
	assert.InDelta(t, 0.73, st.Accuracy, 1e-9)
}

func TestFeedbackKeepsLabelWithoutCorrection(t *testing.T) {
	e := newTestEngine(DefaultLearningConfig())

	res := e.Learn(models.Observation{ContentType: models.ContentTypeURL, Content: "https://shop.example", Verdict: models.VerdictSuspicious})
	require.NoError(t, e.Feedback(res.ExampleID, models.FeedbackIncorrect, ""))

	ex, _ := e.Example(res.ExampleID)
	assert.Equal(t, models.VerdictSuspicious, ex.ActualVerdict)
	assert.Equal(t, models.FeedbackIncorrect, ex.UserFeedback)
	assert.Equal(t, 2, e.Status().Models[models.ContentTypeURL].TrainingCount)
}

func TestFeedbackErrors(t *testing.T) {
	e := newTestEngine(DefaultLearningConfig())

	err := e.Feedback("missing", models.FeedbackCorrect, "")
	assert.ErrorIs(t, err, models.ErrExampleNotFound)

	res := e.Learn(models.Observation{ContentType: models.ContentTypeSMS, Content: "hi", Verdict: models.VerdictSafe})
	err = e.Feedback(res.ExampleID, "meh", "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	err = e.Feedback(res.ExampleID, models.FeedbackIncorrect, "awful")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestTrainingLogRetentionCap(t *testing.T) {
	e := newTestEngine(LearningConfig{MaxExamples: 3})

	var ids []string
	for i := 0; i < 5; i++ {
		res := e.Learn(models.Observation{ContentType: models.ContentTypeSMS, Content: "msg", Verdict: models.VerdictSafe})
		ids = append(ids, res.ExampleID)
	}

	assert.Equal(t, 3, e.Status().TotalTrainingData)
	_, ok := e.Example(ids[0])
	assert.False(t, ok)
	_, ok = e.Example(ids[4])
	assert.True(t, ok)
	assert.Equal(t, 5, e.Status().Models[models.ContentTypeSMS].TrainingCount)
}

func TestRetrainIsSingleFlight(t *testing.T) {
	e := newTestEngine(DefaultLearningConfig())

	e.training.Store(true)
	assert.False(t, e.Retrain())
	assert.Zero(t, e.Status().RetrainCount)

	e.training.Store(false)
	assert.True(t, e.Retrain())
	assert.Equal(t, 1, e.Status().RetrainCount)
}

func TestRetrainIfDue(t *testing.T) {
	// large RetrainEvery keeps Learn from retraining on its own
	e := newTestEngine(LearningConfig{RetrainEvery: 1000})

	for i := 0; i < 30; i++ {
		e.Learn(models.Observation{ContentType: models.ContentTypePhone, Content: "9876543210", Verdict: models.VerdictDangerous})
	}
	assert.False(t, e.RetrainIfDue())

	e.Learn(models.Observation{ContentType: models.ContentTypePhone, Content: "9876543210", Verdict: models.VerdictDangerous})
	assert.True(t, e.RetrainIfDue())
	assert.Equal(t, 1, e.Status().RetrainCount)
}

func TestOnRetrainHook(t *testing.T) {
	e := newTestEngine(DefaultLearningConfig())

	var got models.LearningStatus
	e.OnRetrain(func(st models.LearningStatus) { got = st })
	e.Retrain()

	assert.Equal(t, 1, got.RetrainCount)
}

func TestLearnConcurrent(t *testing.T) {
	e := newTestEngine(DefaultLearningConfig())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			e.Learn(models.Observation{ContentType: models.ContentTypeSMS, Content: "urgent kyc update", Verdict: models.VerdictSuspicious})
		}()
		go func() {
			defer wg.Done()
			_ = e.Predict("urgent kyc update", models.ContentTypeSMS)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, e.Status().Models[models.ContentTypeSMS].TrainingCount)
}

package ai

import (
	"sort"
	"strings"
	"sync"
	"time"

	"insafe-lab/internal/domain/models"
)

const (
	defaultKeywordWeight = 0.1
	maxPatternExamples   = 5
	exampleSnippetLen    = 100
	signatureMaxLen      = 100

	minAccuracy     = 0.50
	maxAccuracy     = 0.99
	minLearningRate = 0.01
	maxLearningRate = 0.30
)

type modelSeed struct {
	accuracy     float64
	learningRate float64
}

// modelSeeds are the starting accuracy and learning rate per content type
var modelSeeds = map[models.ContentType]modelSeed{
	models.ContentTypeSMS:   {0.75, 0.10},
	models.ContentTypePhone: {0.80, 0.15},
	models.ContentTypeURL:   {0.85, 0.12},
	models.ContentTypeCall:  {0.70, 0.08},
	models.ContentTypeAPK:   {0.75, 0.10},
	models.ContentTypeQR:    {0.80, 0.12},
}

type patternExample struct {
	content   string
	verdict   models.Verdict
	timestamp time.Time
}

type patternStats struct {
	count       int
	threatScore float64
	examples    []patternExample
}

// learningModel is the adaptive state for one content type
type learningModel struct {
	mu             sync.RWMutex
	contentType    models.ContentType
	patterns       map[string]*patternStats
	vocabulary     map[string]struct{}
	keywordWeights map[string]float64
	learningRate   float64
	trainingCount  int
	accuracy       float64
}

func newLearningModel(ct models.ContentType, seed modelSeed) *learningModel {
	return &learningModel{
		contentType:    ct,
		patterns:       make(map[string]*patternStats),
		vocabulary:     make(map[string]struct{}),
		keywordWeights: make(map[string]float64),
		learningRate:   seed.learningRate,
		accuracy:       seed.accuracy,
	}
}

// PatternSignature is the structural fingerprint used to group similar content:
// sorted matched keywords, then P/U/M/URG/PII structure flags.
func PatternSignature(f models.ContentFeatures) string {
	keywords := append([]string(nil), f.SuspiciousKeywords...)
	sort.Strings(keywords)

	var b strings.Builder
	b.WriteString(strings.Join(keywords, "|"))
	b.WriteByte(':')
	if len(f.PhoneNumbers) > 0 {
		b.WriteString("P")
	}
	if len(f.URLs) > 0 {
		b.WriteString("U")
	}
	if len(f.MoneyMentions) > 0 {
		b.WriteString("M")
	}
	if f.UrgencyScore > 0.5 {
		b.WriteString("URG")
	}
	if len(f.PersonalInfoRequests) > 0 {
		b.WriteString("PII")
	}
	return truncate(b.String(), signatureMaxLen)
}

func threatIncrement(v models.Verdict) float64 {
	switch v {
	case models.VerdictDangerous:
		return 0.9
	case models.VerdictSuspicious:
		return 0.6
	default:
		return 0.1
	}
}

// apply folds one labelled observation into the model
func (m *learningModel) apply(content string, f models.ContentFeatures, verdict models.Verdict, fb models.Feedback, ts time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range strings.Fields(strings.ToLower(content)) {
		m.vocabulary[w] = struct{}{}
	}

	if verdict.IsThreat() {
		for _, kw := range f.SuspiciousKeywords {
			w, ok := m.keywordWeights[kw]
			if !ok {
				w = defaultKeywordWeight
			}
			m.keywordWeights[kw] = w + m.learningRate
		}
	}

	key := PatternSignature(f)
	st, ok := m.patterns[key]
	if !ok {
		st = &patternStats{}
		m.patterns[key] = st
	}
	st.count++
	st.threatScore += threatIncrement(verdict)
	st.examples = append(st.examples, patternExample{
		content:   truncate(content, exampleSnippetLen),
		verdict:   verdict,
		timestamp: ts,
	})
	if len(st.examples) > maxPatternExamples {
		st.examples = append([]patternExample(nil), st.examples[len(st.examples)-maxPatternExamples:]...)
	}

	m.trainingCount++

	switch fb {
	case models.FeedbackCorrect:
		m.accuracy = min(maxAccuracy, m.accuracy+0.01)
	case models.FeedbackIncorrect:
		m.accuracy = max(minAccuracy, m.accuracy-0.02)
	}
}

// retrain recalibrates accuracy and learning rate from recent examples.
// New values are computed before any field is written.
func (m *learningModel) retrain(recent []models.TrainingExample) {
	if len(recent) == 0 {
		return
	}
	correct := 0
	for _, ex := range recent {
		if ex.UserFeedback == "" || ex.UserFeedback == models.FeedbackCorrect {
			correct++
		}
	}
	fraction := float64(correct) / float64(len(recent))

	m.mu.Lock()
	defer m.mu.Unlock()

	accuracy := 0.7*m.accuracy + 0.3*fraction
	rate := m.learningRate * 1.05
	if fraction > 0.8 {
		rate = m.learningRate * 0.95
	}
	m.accuracy = clampFloat(accuracy, minAccuracy, maxAccuracy)
	m.learningRate = clampFloat(rate, minLearningRate, maxLearningRate)
}

func (m *learningModel) status() models.ModelStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return models.ModelStatus{
		Accuracy:        m.accuracy,
		TrainingCount:   m.trainingCount,
		PatternsLearned: len(m.patterns),
		VocabularySize:  len(m.vocabulary),
		LearningRate:    m.learningRate,
	}
}

func clampFloat(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

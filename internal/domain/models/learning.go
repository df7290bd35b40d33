package models

import "time"

// Feedback is the user's judgement of a previous verdict
type Feedback string

const (
	FeedbackCorrect   Feedback = "correct"
	FeedbackIncorrect Feedback = "incorrect"
)

// TrainingExample is one recorded observation in the learning log
type TrainingExample struct {
	ID            string          `json:"id"`
	ContentType   ContentType     `json:"type"`
	Content       string          `json:"content"`
	Features      ContentFeatures `json:"features"`
	ActualVerdict Verdict         `json:"actualVerdict"`
	UserFeedback  Feedback        `json:"userFeedback,omitempty"`
	Confidence    int             `json:"confidence"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Observation is a scored outcome handed to the learning engine
type Observation struct {
	ContentType  ContentType `json:"type" validate:"required"`
	Content      string      `json:"content" validate:"required"`
	Verdict      Verdict     `json:"verdict" validate:"required,oneof=safe suspicious dangerous"`
	Confidence   int         `json:"confidence" validate:"gte=0,lte=100"`
	UserFeedback Feedback    `json:"userFeedback,omitempty" validate:"omitempty,oneof=correct incorrect"`

	// ExampleID pre-assigns the training example id so callers can hand it
	// out before the asynchronous learn completes
	ExampleID string `json:"-"`
}

// LearningResult reports the outcome of a learn call
type LearningResult struct {
	Success         bool    `json:"success"`
	Message         string  `json:"message"`
	ExampleID       string  `json:"exampleId,omitempty"`
	ModelAccuracy   float64 `json:"modelAccuracy"`
	PatternsLearned int     `json:"patternsLearned"`
}

// Prediction is the learned signal for a piece of content
type Prediction struct {
	Verdict     Verdict  `json:"verdict"`
	Confidence  int      `json:"confidence"`
	RiskFactors []string `json:"riskFactors"`
	Insights    []string `json:"insights"`
}

// ModelStatus describes one per-type learning model
type ModelStatus struct {
	Accuracy        float64 `json:"accuracy"`
	TrainingCount   int     `json:"trainingCount"`
	PatternsLearned int     `json:"patternsLearned"`
	VocabularySize  int     `json:"vocabularySize"`
	LearningRate    float64 `json:"learningRate"`
}

// LearningStatus is the engine-wide status snapshot
type LearningStatus struct {
	Models            map[ContentType]ModelStatus `json:"models"`
	AverageAccuracy   float64                     `json:"averageAccuracy"`
	IsTraining        bool                        `json:"isTraining"`
	LastTrainingTime  time.Time                   `json:"lastTrainingTime"`
	TotalTrainingData int                         `json:"totalTrainingData"`
	RetrainCount      int                         `json:"retrainCount"`
}

package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insafe-lab/internal/domain/models"
	"insafe-lab/pkg/logger"
)

func TestDetectorScenarios(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig(), logger.NewNop())

	tests := []struct {
		name    string
		content string
		ct      models.ContentType
		want    models.Verdict
	}{
		{"lottery sms", "Congratulations! You've won ₹25 lakh in KBC lottery. Click link to claim: bit.ly/kbc-winner", models.ContentTypeSMS, models.VerdictDangerous},
		{"bank url", "https://sbi.co.in", models.ContentTypeURL, models.VerdictSafe},
		{"upi qr", "upi://pay?pa=scammer@paytm&pn=FakeStore&am=100", models.ContentTypeQR, models.VerdictSuspicious},
		{"known scammer", "+91-9876543210", models.ContentTypePhone, models.VerdictDangerous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := d.ScoreContent(tt.content, tt.ct)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Verdict)
			assert.Equal(t, d.Policy().Verdict(res.Confidence), res.Verdict)
		})
	}
}

func TestDetectorUnknownContentType(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig(), logger.NewNop())

	_, err := d.ScoreContent("hello", "fax")
	assert.ErrorIs(t, err, models.ErrUnknownContentType)
}

func TestDetectorBlendsExternalSignal(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig(), logger.NewNop())

	res, err := d.ScoreContent("https://sbi.co.in", models.ContentTypeURL,
		models.Signal{Kind: models.SignalExternal, Confidence: 90, Available: true})
	require.NoError(t, err)

	assert.Equal(t, 45, res.Confidence)
	assert.Equal(t, models.VerdictSuspicious, res.Verdict)
	assert.Len(t, res.Signals, 2)
}

func TestDetectorWithLearnedSignal(t *testing.T) {
	cfg := DefaultDetectorConfig()
	cfg.Policy = Policy{
		Signals:             []models.SignalKind{models.SignalRule, models.SignalLearned},
		DangerousThreshold:  70,
		SuspiciousThreshold: 40,
	}
	d := NewDetector(cfg, logger.NewNop())

	res, err := d.ScoreContent("share otp", models.ContentTypeSMS)
	require.NoError(t, err)

	require.Len(t, res.Signals, 2)
	assert.Equal(t, models.SignalLearned, res.Signals[1].Kind)
	assert.Contains(t, res.RiskFactors, `Learned suspicious keyword: "otp"`)
	assert.NotEmpty(t, res.Insights)
}

func TestDetectorLearnAndFeedback(t *testing.T) {
	d := NewDetector(DefaultDetectorConfig(), logger.NewNop())

	res := d.LearnFromOutcome(models.Observation{
		ContentType: models.ContentTypeCall,
		Content:     "this is the RBI, share your OTP",
		Verdict:     models.VerdictDangerous,
		Confidence:  88,
	})
	require.True(t, res.Success)

	require.NoError(t, d.SubmitFeedback(res.ExampleID, models.FeedbackCorrect, ""))
	st := d.GetModelStatus()
	assert.Equal(t, 2, st.Models[models.ContentTypeCall].TrainingCount)
	assert.InDelta(t, 0.71, st.Models[models.ContentTypeCall].Accuracy, 1e-9)
}

package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insafe-lab/internal/domain/models"
)

func TestPolicyVerdictThresholds(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		confidence int
		want       models.Verdict
	}{
		{0, models.VerdictSafe},
		{39, models.VerdictSafe},
		{40, models.VerdictSuspicious},
		{69, models.VerdictSuspicious},
		{70, models.VerdictDangerous},
		{100, models.VerdictDangerous},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Verdict(tt.confidence), "confidence %d", tt.confidence)
		assert.Equal(t, tt.want, models.VerdictFor(tt.confidence), "confidence %d", tt.confidence)
	}
}

func TestPolicyBlend(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name    string
		signals []models.Signal
		want    int
	}{
		{
			name:    "rule only",
			signals: []models.Signal{{Kind: models.SignalRule, Confidence: 80, Available: true}},
			want:    80,
		},
		{
			name: "external unavailable is neutral",
			signals: []models.Signal{
				{Kind: models.SignalRule, Confidence: 80, Available: true},
				{Kind: models.SignalExternal, Confidence: 0, Available: false},
			},
			want: 80,
		},
		{
			name: "mean of rule and external",
			signals: []models.Signal{
				{Kind: models.SignalRule, Confidence: 80, Available: true},
				{Kind: models.SignalExternal, Confidence: 41, Available: true},
			},
			want: 61,
		},
		{
			name: "unselected signal ignored",
			signals: []models.Signal{
				{Kind: models.SignalRule, Confidence: 20, Available: true},
				{Kind: models.SignalLearned, Confidence: 90, Available: true},
			},
			want: 20,
		},
		{
			name:    "nothing available",
			signals: nil,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Blend(tt.signals))
		})
	}
}

func TestNewPolicy(t *testing.T) {
	p, err := NewPolicy([]string{"rule", "learned"}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []models.SignalKind{models.SignalRule, models.SignalLearned}, p.Signals)
	assert.Equal(t, 70, p.DangerousThreshold)
	assert.Equal(t, 40, p.SuspiciousThreshold)

	_, err = NewPolicy([]string{"rule", "astrology"}, 70, 40)
	assert.Error(t, err)

	p, err = NewPolicy(nil, 80, 50)
	require.NoError(t, err)
	assert.Equal(t, []models.SignalKind{models.SignalRule}, p.Signals)
	assert.Equal(t, models.VerdictSuspicious, p.Verdict(75))
}

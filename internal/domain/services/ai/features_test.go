package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"insafe-lab/internal/domain/models"
)

func TestExtractFeatures(t *testing.T) {
	f := ExtractFeatures("URGENT! Pay Rs 500 now at www.x.com or call 9876543210 today. Share OTP.", models.ContentTypeSMS)

	assert.Equal(t, 13, f.WordCount)
	assert.Equal(t, []string{"otp"}, f.SuspiciousKeywords)
	assert.InDelta(t, 3.0/8.0, f.UrgencyScore, 1e-9)
	assert.Equal(t, []string{"9876543210"}, f.PhoneNumbers)
	assert.Equal(t, []string{"www.x.com"}, f.URLs)
	assert.Equal(t, []string{"Rs 500"}, f.MoneyMentions)
	assert.Equal(t, []string{"today"}, f.TimeReferences)
	assert.Equal(t, []string{"otp"}, f.PersonalInfoRequests)
}

func TestExtractFeaturesEmptyContent(t *testing.T) {
	f := ExtractFeatures("", models.ContentTypeURL)

	assert.Zero(t, f.WordCount)
	assert.Empty(t, f.SuspiciousKeywords)
	assert.Empty(t, f.PhoneNumbers)
	assert.Empty(t, f.URLs)
	assert.Zero(t, f.UrgencyScore)
}

func TestExtractFeaturesMoneyForms(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"rupee sign", "you won ₹5,000", true},
		{"rs dot", "pay rs.200 today", true},
		{"rupees word", "rupees 100 only", true},
		{"lakh", "prize of 25 lakh", true},
		{"crore", "1 crore jackpot", true},
		{"plain number", "meeting at 5", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ExtractFeatures(tt.content, models.ContentTypeSMS)
			assert.Equal(t, tt.want, len(f.MoneyMentions) > 0)
		})
	}
}

func TestPatternSignature(t *testing.T) {
	f := models.ContentFeatures{
		SuspiciousKeywords:   []string{"winner", "otp"},
		PhoneNumbers:         []string{"9876543210"},
		MoneyMentions:        []string{"₹100"},
		UrgencyScore:         0.625,
		PersonalInfoRequests: []string{"otp"},
	}

	assert.Equal(t, "otp|winner:PMURGPII", PatternSignature(f))
	// input order must not matter
	assert.Equal(t, []string{"winner", "otp"}, f.SuspiciousKeywords)
}

func TestPatternSignatureTruncated(t *testing.T) {
	f := ExtractFeatures("congratulations winner lottery prize lucky draw kbc kaun banega crorepati big boss reality show bank details net banking", models.ContentTypeSMS)
	assert.LessOrEqual(t, len(PatternSignature(f)), signatureMaxLen)
}

package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"insafe-lab/internal/domain/models"
)

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		ct      models.ContentType
		content string
		wantErr error
	}{
		{"valid sms", models.ContentTypeSMS, "hello there", nil},
		{"empty sms", models.ContentTypeSMS, "   ", models.ErrInvalidInput},
		{"too long", models.ContentTypeCall, strings.Repeat("a", maxContentLength+1), models.ErrInvalidInput},
		{"unknown type", models.ContentType("fax"), "x", models.ErrUnknownContentType},
		{"url with scheme", models.ContentTypeURL, "https://sbi.co.in/login", nil},
		{"bare domain", models.ContentTypeURL, "bit.ly/abc", nil},
		{"url with spaces", models.ContentTypeURL, "not a url", models.ErrInvalidInput},
		{"url without host", models.ContentTypeURL, "http://", models.ErrInvalidInput},
		{"formatted phone", models.ContentTypePhone, "+91 (987) 654-3210", nil},
		{"phone with letters", models.ContentTypePhone, "call me", models.ErrInvalidInput},
		{"phone too short", models.ContentTypePhone, "+91", models.ErrInvalidInput},
		{"qr payload", models.ContentTypeQR, "upi://pay?pa=a@b", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.ct, tt.content)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAPKContent(t *testing.T) {
	assert.Equal(t, "QuickLoan\nREAD_SMS", APKContent(" QuickLoan ", "READ_SMS\n"))
	assert.Equal(t, "Calculator", APKContent("Calculator", ""))
}

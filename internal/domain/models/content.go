package models

import (
	"fmt"
	"strings"
)

// ContentType is the kind of content submitted for scoring
type ContentType string

const (
	ContentTypeURL   ContentType = "url"
	ContentTypeSMS   ContentType = "sms"
	ContentTypeCall  ContentType = "call"  // call transcript
	ContentTypeAPK   ContentType = "apk"   // app name plus extracted strings
	ContentTypeQR    ContentType = "qr"    // decoded QR payload
	ContentTypePhone ContentType = "phone" // bare phone number
)

// AllContentTypes returns every supported content type in a stable order
func AllContentTypes() []ContentType {
	return []ContentType{
		ContentTypeSMS,
		ContentTypePhone,
		ContentTypeURL,
		ContentTypeCall,
		ContentTypeAPK,
		ContentTypeQR,
	}
}

// ParseContentType validates a raw content type string
func ParseContentType(s string) (ContentType, error) {
	ct := ContentType(strings.ToLower(strings.TrimSpace(s)))
	if !ct.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownContentType, s)
	}
	return ct, nil
}

// IsValid reports whether ct is one of the supported content types
func (ct ContentType) IsValid() bool {
	switch ct {
	case ContentTypeURL, ContentTypeSMS, ContentTypeCall, ContentTypeAPK, ContentTypeQR, ContentTypePhone:
		return true
	}
	return false
}

func (ct ContentType) String() string {
	return string(ct)
}

// Verdict is the final classification of scored content
type Verdict string

const (
	VerdictSafe       Verdict = "safe"
	VerdictSuspicious Verdict = "suspicious"
	VerdictDangerous  Verdict = "dangerous"
)

// Default verdict thresholds on the 0-100 confidence scale
const (
	DangerousThreshold  = 70
	SuspiciousThreshold = 40
)

// VerdictFor maps a confidence to a verdict using the default thresholds
func VerdictFor(confidence int) Verdict {
	switch {
	case confidence >= DangerousThreshold:
		return VerdictDangerous
	case confidence >= SuspiciousThreshold:
		return VerdictSuspicious
	default:
		return VerdictSafe
	}
}

// ParseVerdict validates a raw verdict string
func ParseVerdict(s string) (Verdict, error) {
	v := Verdict(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case VerdictSafe, VerdictSuspicious, VerdictDangerous:
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown verdict %q", ErrInvalidInput, s)
}

// IsThreat reports whether the verdict counts as a detected scam
func (v Verdict) IsThreat() bool {
	return v == VerdictDangerous || v == VerdictSuspicious
}

// ContentFeatures is the structured projection of content used by the learning engine
type ContentFeatures struct {
	WordCount            int      `json:"wordCount"`
	SuspiciousKeywords   []string `json:"suspiciousKeywords"`
	UrgencyScore         float64  `json:"urgencyScore"`
	PhoneNumbers         []string `json:"phoneNumbers"`
	URLs                 []string `json:"urls"`
	MoneyMentions        []string `json:"moneyMentions"`
	TimeReferences       []string `json:"timeReferences"`
	PersonalInfoRequests []string `json:"personalInfoRequests"`
}

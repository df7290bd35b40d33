package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"insafe-lab/internal/domain/models"
)

const (
	maxContentLength = 10000
	maxURLLength     = 2048
	minPhoneDigits   = 5
)

var phoneCharsRegex = regexp.MustCompile(`^[+\d\s\-().]+$`)

// ValidateContent checks submitted content before it reaches the scorer.
// Failures wrap models.ErrInvalidInput or models.ErrUnknownContentType.
func ValidateContent(ct models.ContentType, content string) error {
	if !ct.IsValid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownContentType, ct)
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return fmt.Errorf("%w: %s content is required", models.ErrInvalidInput, ct)
	}
	if utf8.RuneCountInString(content) > maxContentLength {
		return fmt.Errorf("%w: content exceeds %d characters", models.ErrInvalidInput, maxContentLength)
	}

	switch ct {
	case models.ContentTypeURL:
		return validateURL(trimmed)
	case models.ContentTypePhone:
		return validatePhone(trimmed)
	}
	return nil
}

func validateURL(raw string) error {
	if len(raw) > maxURLLength {
		return fmt.Errorf("%w: url exceeds %d characters", models.ErrInvalidInput, maxURLLength)
	}
	if strings.ContainsAny(raw, " \t\n") {
		return fmt.Errorf("%w: url must not contain whitespace", models.ErrInvalidInput)
	}

	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "http://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		return fmt.Errorf("%w: malformed url", models.ErrInvalidInput)
	}
	return nil
}

func validatePhone(raw string) error {
	if !phoneCharsRegex.MatchString(raw) {
		return fmt.Errorf("%w: phone number contains invalid characters", models.ErrInvalidInput)
	}
	digits := 0
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < minPhoneDigits {
		return fmt.Errorf("%w: phone number needs at least %d digits", models.ErrInvalidInput, minPhoneDigits)
	}
	return nil
}

// APKContent joins an app name and its extracted strings into the text scored for apk scans
func APKContent(appName, extractedStrings string) string {
	appName = strings.TrimSpace(appName)
	extractedStrings = strings.TrimSpace(extractedStrings)
	if extractedStrings == "" {
		return appName
	}
	return appName + "\n" + extractedStrings
}

package ai

import (
	"regexp"
	"strings"

	"insafe-lab/internal/domain/models"
)

// suspiciousKeywords is the lexicon the learning engine tracks weights for.
// Grouped by the fraud family they most often show up in.
var suspiciousKeywords = []string{
	// financial pressure and prizes
	"urgent payment", "immediate action", "account blocked", "verify account",
	"last chance", "expires today", "limited time", "act now",
	"congratulations", "winner", "lottery", "prize", "lucky draw",
	"kbc", "kaun banega crorepati", "big boss", "reality show",

	// banking and UPI
	"bank details", "otp", "pin number", "cvv", "net banking",
	"paytm", "phonepe", "google pay", "upi id", "transaction failed",
	"refund", "cashback", "reward points", "kyc update",

	// investment
	"guaranteed returns", "double money", "investment opportunity",
	"stock market", "crypto", "bitcoin", "trading", "forex",
	"fixed deposit", "mutual fund", "insurance policy",

	// tech support
	"microsoft", "google", "amazon", "technical support",
	"virus detected", "computer infected", "security alert",
	"suspicious activity", "unauthorized access",

	// romance
	"lonely", "looking for love", "single", "widow", "army officer",
	"doctor abroad", "business trip", "need help", "emergency",

	// jobs and loans
	"work from home", "part time job", "easy money", "no experience",
	"personal loan", "instant approval", "no documents", "bad credit ok",
}

var urgencyWords = []string{"urgent", "immediate", "asap", "quickly", "hurry", "fast", "now", "today"}

var timeWords = []string{"today", "tomorrow", "within 24 hours", "expires", "deadline"}

var personalInfoWords = []string{"aadhar", "pan card", "passport", "bank account", "password", "otp"}

var (
	phoneRegex = regexp.MustCompile(`(\+91|91)?[6-9]\d{9}`)
	urlRegex   = regexp.MustCompile(`(https?://[^\s]+|www\.[^\s]+)`)
	moneyRegex = regexp.MustCompile(`(?i)(₹|rs\.?|rupees?)\s*[\d,]*\d|\b\d+\s*(lakh|crore)s?\b`)
)

// ExtractFeatures projects content onto the fixed feature set used by the
// learning engine. It never fails; empty content yields zero features.
func ExtractFeatures(content string, _ models.ContentType) models.ContentFeatures {
	lower := strings.ToLower(content)

	f := models.ContentFeatures{
		WordCount:            len(strings.Fields(lower)),
		SuspiciousKeywords:   containedTerms(lower, suspiciousKeywords),
		PhoneNumbers:         nonNil(phoneRegex.FindAllString(content, -1)),
		URLs:                 nonNil(urlRegex.FindAllString(content, -1)),
		MoneyMentions:        nonNil(moneyRegex.FindAllString(content, -1)),
		TimeReferences:       containedTerms(lower, timeWords),
		PersonalInfoRequests: containedTerms(lower, personalInfoWords),
	}
	f.UrgencyScore = float64(len(containedTerms(lower, urgencyWords))) / float64(len(urgencyWords))

	return f
}

// containedTerms returns the terms that appear as substrings of lower, in lexicon order
func containedTerms(lower string, terms []string) []string {
	out := []string{}
	for _, t := range terms {
		if strings.Contains(lower, t) {
			out = append(out, t)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

package ai

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"insafe-lab/internal/domain/models"
)

// HeuristicStrategy produces type-specific risk factors for one content type
type HeuristicStrategy interface {
	ScoreHeuristics(features models.ContentFeatures, content string) []string
	Name() string
}

var suspiciousTLDs = []string{
	".tk", ".ml", ".ga", ".cf", ".gq", ".xyz", ".biz", ".club", ".info",
	".top", ".win", ".bid", ".loan", ".faith", ".date", ".review",
}

var urlShorteners = []string{"bit.ly", "goo.gl", "tinyurl.com", "t.co", "is.gd", "soo.gd", "short.io"}

var domainTokenRegex = regexp.MustCompile(`(?i)\b(?:https?://)?((?:[a-z0-9-]+\.)+[a-z]{2,})(?:[/:?#]\S*)?`)

// hostOf returns the lower-cased host of a URL-ish string, tolerating missing schemes
func hostOf(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// matchShortener reports the shortener serving host, if any
func matchShortener(host string) (string, bool) {
	for _, s := range urlShorteners {
		if host == s || strings.HasSuffix(host, "."+s) {
			return s, true
		}
	}
	return "", false
}

// URLStrategy flags suspicious hosts, transport and shorteners
type URLStrategy struct{}

func (URLStrategy) Name() string { return "url" }

func (URLStrategy) ScoreHeuristics(_ models.ContentFeatures, content string) []string {
	var factors []string
	raw := strings.TrimSpace(content)
	host := hostOf(raw)

	for _, tld := range suspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			factors = append(factors, "Suspicious domain: "+tld)
		}
	}
	if host != "" && net.ParseIP(host) != nil {
		factors = append(factors, "Uses IP address instead of domain")
	}
	if strings.Count(raw, ".") > 4 {
		factors = append(factors, "Excessive subdomains detected")
	}
	if !strings.HasPrefix(strings.ToLower(raw), "https://") {
		factors = append(factors, "No secure HTTPS connection")
	}
	if s, ok := matchShortener(host); ok {
		factors = append(factors, "URL shortener detected: "+s)
	}
	return factors
}

var smsUrgencyWords = []string{
	"urgent", "immediate", "expire", "block", "suspend", "limited time",
	"action required", "verify your account", "do not ignore", "alert",
	"warning", "final notice",
}

var smsScamPhrases = []string{
	"click here", "verify now", "claim prize", "congratulations", "you have won",
	"kbc lottery", "free gift", "instant loan", "kyc update", "credit card approved",
	"dear customer", "your account has been credited", "winner", "lucky draw",
	"scratch and win",
}

var (
	smsMoneyRegex = regexp.MustCompile(`(?i)₹[\d,]+|rs\.?\s*\d+|\d+\s*lakh|\d+\s*crore`)
	smsPIIRegex   = regexp.MustCompile(`(?i)\b(otp|pin|password|cvv|aadhar|pan card)\b`)
)

// SMSStrategy flags pressure language, money, scam phrasing and shortened links
type SMSStrategy struct{}

func (SMSStrategy) Name() string { return "sms" }

func (SMSStrategy) ScoreHeuristics(_ models.ContentFeatures, content string) []string {
	var factors []string
	lower := strings.ToLower(content)

	for _, w := range smsUrgencyWords {
		if strings.Contains(lower, w) {
			factors = append(factors, fmt.Sprintf("Urgency tactic: %q", w))
		}
	}
	if smsMoneyRegex.MatchString(content) {
		factors = append(factors, "Contains monetary amounts")
	}
	for _, ph := range smsScamPhrases {
		if strings.Contains(lower, ph) {
			factors = append(factors, fmt.Sprintf("Scam phrase: %q", ph))
		}
	}
	if smsPIIRegex.MatchString(content) {
		factors = append(factors, "Asks for personal information")
	}
	for _, m := range domainTokenRegex.FindAllStringSubmatch(content, -1) {
		if s, ok := matchShortener(strings.ToLower(m[1])); ok {
			factors = append(factors, "Contains shortened URLs: "+s)
		}
	}
	return factors
}

var callAuthorities = []string{
	"rbi", "reserve bank of india", "bank official", "police", "income tax department",
	"customs office", "fraud detection department", "enforcement directorate", "cyber security",
}

var callInfoRequests = []string{
	"otp", "one time password", "pin", "password", "cvv", "card number", "expiry date",
	"aadhar number", "pan number", "bank account details", "mother's maiden name", "date of birth",
}

var callThreats = []string{
	"block your account", "legal action", "arrest warrant", "fine of",
	"suspend your service", "your money will be lost", "your sim will be blocked",
}

// CallStrategy flags impersonation, credential requests and threats in transcripts
type CallStrategy struct{}

func (CallStrategy) Name() string { return "call" }

func (CallStrategy) ScoreHeuristics(_ models.ContentFeatures, content string) []string {
	var factors []string
	lower := strings.ToLower(content)

	for _, a := range callAuthorities {
		if containsWord(lower, a) {
			factors = append(factors, "Claims to be from authority: "+a)
		}
	}
	for _, r := range callInfoRequests {
		if containsWord(lower, r) {
			factors = append(factors, "Requests sensitive info: "+r)
		}
	}
	for _, t := range callThreats {
		if strings.Contains(lower, t) {
			factors = append(factors, "Makes threats: "+t)
		}
	}
	return factors
}

var (
	apkLoanKeywords   = []string{"instant", "quick", "easy", "no document", "approved"}
	apkGamingKeywords = []string{"win", "cash", "earn", "daily", "guaranteed"}
	apkLoanPhrases    = []string{"loan without documents", "get approved in minutes", "unsecured loan", "no credit check"}
	apkGamingPhrases  = []string{"win real cash", "earn daily", "play and earn", "teen patti", "betting app", "fantasy cricket", "real money gaming"}
	apkPermissions    = []string{"READ_CONTACTS", "READ_SMS", "ACCESS_FINE_LOCATION", "SEND_SMS"}
)

// APKStrategy flags loan and gaming fraud apps and over-reaching permissions
type APKStrategy struct{}

func (APKStrategy) Name() string { return "apk" }

func (APKStrategy) ScoreHeuristics(_ models.ContentFeatures, content string) []string {
	var factors []string
	lower := strings.ToLower(content)

	if strings.Contains(lower, "loan") {
		for _, k := range apkLoanKeywords {
			if strings.Contains(lower, k) {
				factors = append(factors, "Loan fraud indicator: "+k)
			}
		}
	}
	for _, k := range apkLoanPhrases {
		if strings.Contains(lower, k) {
			factors = append(factors, "Loan fraud indicator: "+k)
		}
	}
	if strings.Contains(lower, "rummy") || strings.Contains(lower, "game") {
		for _, k := range apkGamingKeywords {
			if strings.Contains(lower, k) {
				factors = append(factors, "Gaming fraud indicator: "+k)
			}
		}
	}
	for _, k := range apkGamingPhrases {
		if strings.Contains(lower, k) {
			factors = append(factors, "Gaming fraud indicator: "+k)
		}
	}
	for _, perm := range apkPermissions {
		if strings.Contains(content, perm) {
			factors = append(factors, "Requests excessive permissions: android.permission."+perm)
		}
	}
	return factors
}

var (
	indianMobileRegex   = regexp.MustCompile(`^(\+91)?[6-9]\d{9}$`)
	suspiciousLeadRegex = regexp.MustCompile(`^(\+91)?[1-5]`)
	phoneSeparators     = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
)

// NormalizePhone strips separators and canonicalizes Indian mobiles to +91XXXXXXXXXX.
// Anything it cannot recognize is returned with separators stripped only.
func NormalizePhone(raw string) string {
	s := phoneSeparators.Replace(strings.TrimSpace(raw))
	digits := strings.TrimPrefix(s, "+")
	switch {
	case len(digits) == 10 && digits[0] >= '6' && digits[0] <= '9' && !strings.HasPrefix(s, "+"):
		return "+91" + digits
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return "+" + digits
	}
	return s
}

// PhoneStrategy validates Indian numbers and checks the known-scammer list
type PhoneStrategy struct {
	knownScammers map[string]struct{}
}

// NewPhoneStrategy builds a phone strategy over the given known-scammer numbers
func NewPhoneStrategy(knownScammers []string) *PhoneStrategy {
	set := make(map[string]struct{}, len(knownScammers))
	for _, n := range knownScammers {
		set[NormalizePhone(n)] = struct{}{}
	}
	return &PhoneStrategy{knownScammers: set}
}

func (*PhoneStrategy) Name() string { return "phone" }

func (s *PhoneStrategy) ScoreHeuristics(_ models.ContentFeatures, content string) []string {
	var factors []string
	n := phoneSeparators.Replace(strings.TrimSpace(content))

	if !indianMobileRegex.MatchString(n) {
		factors = append(factors, "Invalid Indian phone number format")
	}
	switch {
	case strings.HasPrefix(n, "+") && !strings.HasPrefix(n, "+91"):
		factors = append(factors, "International number, exercise caution")
	case strings.HasPrefix(n, "140") || strings.HasPrefix(n, "0140"):
		factors = append(factors, "Telemarketing number detected")
	case suspiciousLeadRegex.MatchString(n):
		factors = append(factors, "Suspicious starting digit for an Indian mobile number")
	}
	if _, ok := s.knownScammers[NormalizePhone(n)]; ok {
		factors = append(factors, "Number is on a known scammer list")
	}
	return factors
}

// QRStrategy applies the URL checks to the payload and adds UPI and download checks
type QRStrategy struct {
	url URLStrategy
}

func (QRStrategy) Name() string { return "qr" }

func (s QRStrategy) ScoreHeuristics(f models.ContentFeatures, content string) []string {
	factors := s.url.ScoreHeuristics(f, content)
	lower := strings.ToLower(content)

	if strings.Contains(lower, "upi://pay") {
		factors = append(factors, "Contains UPI payment request")
		if strings.Contains(lower, "am=") && !strings.Contains(lower, "pn=") {
			factors = append(factors, "UPI payment without merchant name")
		}
	}
	if strings.Contains(lower, ".apk") || strings.Contains(lower, "download") {
		factors = append(factors, "Contains app download link")
	}
	return factors
}

// containsWord matches term on word boundaries so "pin" does not fire on "shopping"
func containsWord(lower, term string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], term)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(term)
		if (start == 0 || !isWordByte(lower[start-1])) && (end == len(lower) || !isWordByte(lower[end])) {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// newStrategyTable builds the single dispatch table from content type to strategy
func newStrategyTable(knownScammers []string) map[models.ContentType]HeuristicStrategy {
	return map[models.ContentType]HeuristicStrategy{
		models.ContentTypeURL:   URLStrategy{},
		models.ContentTypeSMS:   SMSStrategy{},
		models.ContentTypeCall:  CallStrategy{},
		models.ContentTypeAPK:   APKStrategy{},
		models.ContentTypePhone: NewPhoneStrategy(knownScammers),
		models.ContentTypeQR:    QRStrategy{},
	}
}

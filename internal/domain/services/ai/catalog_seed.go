package ai

import "insafe-lab/internal/domain/models"

func p(id string, cat models.PatternCategory, pattern string, weight int, desc string) models.ScamPattern {
	return models.ScamPattern{ID: id, Category: cat, Pattern: pattern, Weight: weight, Description: desc}
}

func rx(id string, cat models.PatternCategory, pattern string, weight int, desc string) models.ScamPattern {
	e := p(id, cat, pattern, weight, desc)
	e.IsRegex = true
	return e
}

// seedPatterns is the built-in catalog of Indian scam phrasing
var seedPatterns = []models.ScamPattern{
	// Loan fraud
	p("loan_001", models.CategoryLoan, "instant loan", 45, "Instant loan promises"),
	p("loan_002", models.CategoryLoan, "loan approval", 40, "Guaranteed loan approval"),
	p("loan_003", models.CategoryLoan, "without documents", 50, "No document loans"),
	p("loan_004", models.CategoryLoan, "immediate fund", 35, "Immediate fund transfer"),
	p("loan_005", models.CategoryLoan, "pre approved", 40, "Pre-approved loan claims"),
	p("loan_006", models.CategoryLoan, "easy loan", 35, "Easy loan promises"),
	p("loan_007", models.CategoryLoan, "quick cash", 40, "Quick cash offers"),
	rx("loan_008", models.CategoryLoan, `loan\s+of\s+(₹|rs\.?)\s*[\d,]+\s+(is\s+)?(approved|sanctioned)`, 40, "Unsolicited loan sanction notice"),

	// Rummy / real-money gaming
	p("rummy_001", models.CategoryRummy, "earn money playing", 45, "Earn money playing games"),
	p("rummy_002", models.CategoryRummy, "guaranteed win", 50, "Guaranteed winning"),
	p("rummy_003", models.CategoryRummy, "daily earning", 40, "Daily earning promises"),
	p("rummy_004", models.CategoryRummy, "cash game", 30, "Cash game references"),
	p("rummy_005", models.CategoryRummy, "win cash", 35, "Win cash promises"),
	p("rummy_006", models.CategoryRummy, "easy money", 40, "Easy money claims"),
	p("rummy_007", models.CategoryRummy, "rummy cash", 45, "Rummy cash games"),

	// Phishing
	p("phish_001", models.CategoryPhishing, "verify account", 35, "Account verification scam"),
	p("phish_002", models.CategoryPhishing, "suspended account", 40, "Account suspension threat"),
	p("phish_003", models.CategoryPhishing, "click here now", 30, "Urgent action required"),
	p("phish_004", models.CategoryPhishing, "update kyc", 35, "KYC update scam"),
	p("phish_005", models.CategoryPhishing, "confirm identity", 35, "Identity confirmation scam"),
	p("phish_006", models.CategoryPhishing, "security alert", 30, "Fake security alerts"),
	rx("phish_007", models.CategoryPhishing, `(kyc|pan|aadhaa?r)\s+(is\s+|has\s+been\s+)?(expired|pending|suspended)`, 35, "Document expiry threat"),

	// UPI
	p("upi_001", models.CategoryUPI, "upi pin", 50, "UPI PIN request"),
	p("upi_002", models.CategoryUPI, "payment failed", 30, "Fake payment failure"),
	p("upi_003", models.CategoryUPI, "refund process", 35, "Fake refund process"),
	p("upi_004", models.CategoryUPI, "upi blocked", 40, "UPI blocking threats"),
	p("upi_005", models.CategoryUPI, "verify upi", 35, "UPI verification scam"),
	rx("upi_006", models.CategoryUPI, `(scan|accept)\s+(the\s+|this\s+)?(qr|collect request)\s+to\s+(receive|get)`, 45, "Receive-money QR or collect request trick"),

	// Lottery
	p("lottery_001", models.CategoryLottery, "kbc winner", 50, "KBC lottery scam"),
	p("lottery_002", models.CategoryLottery, "congratulations won", 45, "Congratulatory lottery scam"),
	p("lottery_003", models.CategoryLottery, "prize money", 40, "Prize money scam"),
	p("lottery_004", models.CategoryLottery, "lucky draw", 35, "Lucky draw scam"),
	p("lottery_005", models.CategoryLottery, "lottery ticket", 35, "Lottery ticket scam"),

	// Authority impersonation
	p("auth_001", models.CategoryAuthority, "calling from rbi", 50, "RBI impersonation"),
	p("auth_002", models.CategoryAuthority, "bank security", 40, "Bank security impersonation"),
	p("auth_003", models.CategoryAuthority, "income tax department", 45, "Income tax impersonation"),
	p("auth_004", models.CategoryAuthority, "police department", 45, "Police impersonation"),
	p("auth_005", models.CategoryAuthority, "government official", 40, "Government impersonation"),

	// Investment
	p("invest_001", models.CategoryInvestment, "double your money", 50, "Money doubling scam"),
	p("invest_002", models.CategoryInvestment, "guaranteed returns", 45, "Guaranteed return scam"),
	p("invest_003", models.CategoryInvestment, "risk free investment", 45, "Risk-free investment scam"),
	p("invest_004", models.CategoryInvestment, "high profit", 35, "High profit claims"),

	// Crypto
	p("crypto_001", models.CategoryCrypto, "bitcoin investment", 35, "Bitcoin investment scam"),
	p("crypto_002", models.CategoryCrypto, "crypto trading", 30, "Crypto trading scam"),
	p("crypto_003", models.CategoryCrypto, "mining opportunity", 40, "Crypto mining scam"),

	// General pressure tactics
	p("general_001", models.CategoryGeneral, "act now", 25, "Urgency pressure tactic"),
	p("general_002", models.CategoryGeneral, "limited time offer", 25, "Limited time pressure"),
	p("general_003", models.CategoryGeneral, "share this message", 20, "Viral spreading tactic"),
	p("general_004", models.CategoryGeneral, "dont tell anyone", 35, "Secrecy instruction"),
	p("general_005", models.CategoryGeneral, "processing fee", 40, "Upfront fee request"),
	rx("general_006", models.CategoryGeneral, `\b(whatsapp|telegram)\b.{0,40}(\+?91)?[6-9]\d{9}`, 20, "Moves conversation to private chat"),
}

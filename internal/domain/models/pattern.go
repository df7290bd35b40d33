package models

import "time"

// PatternCategory groups catalog entries by the fraud family they indicate
type PatternCategory string

const (
	CategoryLoan       PatternCategory = "loan"
	CategoryRummy      PatternCategory = "rummy"
	CategoryPhishing   PatternCategory = "phishing"
	CategoryUPI        PatternCategory = "upi"
	CategoryLottery    PatternCategory = "lottery"
	CategoryAuthority  PatternCategory = "authority"
	CategoryInvestment PatternCategory = "investment"
	CategoryCrypto     PatternCategory = "crypto"
	CategoryGeneral    PatternCategory = "general"
)

// ScamPattern is one weighted entry of the static pattern catalog
type ScamPattern struct {
	ID          string          `json:"id"`
	Category    PatternCategory `json:"category"`
	Pattern     string          `json:"pattern"`
	IsRegex     bool            `json:"isRegex"`
	Weight      int             `json:"weight"` // 1-100
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
}

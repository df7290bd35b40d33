package ai

import (
	"math/rand/v2"
	"sort"
	"strings"

	"insafe-lab/internal/domain/models"
)

// riskFactorWeights maps canonical factor names to points. A factor is scored
// by the longest name that prefixes it, so "Scam phrase: \"winner\"" scores as
// "Scam phrase".
var riskFactorWeights = map[string]int{
	// url
	"Suspicious domain":                 30,
	"Uses IP address instead of domain": 40,
	"Excessive subdomains detected":     20,
	"No secure HTTPS connection":        15,
	"URL shortener detected":            25,

	// sms
	"Urgency tactic":                20,
	"Contains monetary amounts":     15,
	"Scam phrase":                   25,
	"Contains shortened URLs":       20,
	"Asks for personal information": 35,

	// call
	"Claims to be from authority":  30,
	"Requests sensitive info":      40,
	"Makes threats":                35,
	"Impersonation of authority":   35,
	"Claims to be from a bank":     30,
	"Requests remote access":       40,

	// apk
	"Loan fraud indicator":           30,
	"Gaming fraud indicator":         25,
	"Requests excessive permissions": 35,

	// phone
	"Invalid Indian phone number format":                    20,
	"International number":                                  25,
	"Telemarketing number detected":                         15,
	"Suspicious starting digit for an Indian mobile number": 20,
	"Number is on a known scammer list":                     70,

	// qr
	"Contains UPI payment request":      25,
	"UPI payment without merchant name": 30,
	"Contains app download link":        35,

	// generic
	"Suspicious keyword detected":      10,
	"Money amount mentioned":           15,
	"Excessive punctuation":            5,
	"Request for personal information": 30,
}

// weightPrefixes holds the table keys longest first for prefix lookup
var weightPrefixes = func() []string {
	keys := make([]string, 0, len(riskFactorWeights))
	for k := range riskFactorWeights {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// FactorWeight returns the points for a risk factor, 0 when it has no canonical name
func FactorWeight(factor string) int {
	for _, k := range weightPrefixes {
		if strings.HasPrefix(factor, k) {
			return riskFactorWeights[k]
		}
	}
	return 0
}

// RuleScore is the output of the rule-based scorer
type RuleScore struct {
	RiskFactors     []string
	MatchedPatterns []models.ScamPattern
	CatalogWeight   int
	Confidence      int
}

// ScorerConfig controls optional scorer behaviour
type ScorerConfig struct {
	// Deterministic disables the legacy +/-5 jitter
	Deterministic bool
	KnownScammers []string
}

// Scorer combines catalog matches with type-specific heuristics
type Scorer struct {
	catalog    *Catalog
	strategies map[models.ContentType]HeuristicStrategy
	cfg        ScorerConfig
	jitter     func() int
}

// NewScorer creates a rule-based scorer over the given catalog
func NewScorer(catalog *Catalog, cfg ScorerConfig) *Scorer {
	return &Scorer{
		catalog:    catalog,
		strategies: newStrategyTable(cfg.KnownScammers),
		cfg:        cfg,
		jitter:     func() int { return rand.IntN(11) - 5 },
	}
}

// Score runs catalog matching and the strategy for ct, then converts the
// deduplicated factor set into a confidence in [0,100]
func (s *Scorer) Score(content string, ct models.ContentType) RuleScore {
	var rs RuleScore
	seen := make(map[string]struct{})
	addFactor := func(f string) {
		if _, ok := seen[f]; ok {
			return
		}
		seen[f] = struct{}{}
		rs.RiskFactors = append(rs.RiskFactors, f)
	}

	for _, m := range s.catalog.Match(content) {
		rs.MatchedPatterns = append(rs.MatchedPatterns, m)
		rs.CatalogWeight += m.Weight
		addFactor(m.Description)
	}

	// heuristic factors are scored through the weight table independently of
	// catalog descriptions, so a new catalog entry can only add points
	score := rs.CatalogWeight
	if strategy, ok := s.strategies[ct]; ok {
		features := ExtractFeatures(content, ct)
		scored := make(map[string]struct{})
		for _, f := range strategy.ScoreHeuristics(features, content) {
			addFactor(f)
			if _, ok := scored[f]; !ok {
				scored[f] = struct{}{}
				score += FactorWeight(f)
			}
		}
	}

	if !s.cfg.Deterministic && score > 0 {
		score += s.jitter()
	}
	rs.Confidence = clamp(score, 0, 100)
	if rs.RiskFactors == nil {
		rs.RiskFactors = []string{}
	}

	return rs
}

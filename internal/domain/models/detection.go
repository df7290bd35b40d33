package models

// SignalKind names one input of the final confidence blend
type SignalKind string

const (
	SignalRule         SignalKind = "rule"
	SignalLearned      SignalKind = "learned"
	SignalExternal     SignalKind = "external"     // zero-shot ML classifier
	SignalVerification SignalKind = "verification" // registry / community lookups
)

// Signal is one scored input to the blend
type Signal struct {
	Kind       SignalKind `json:"kind"`
	Confidence int        `json:"confidence"`
	Available  bool       `json:"available"`
	Source     string     `json:"source,omitempty"`
}

// DetectionResult is the output of scoring one piece of content
type DetectionResult struct {
	Verdict         Verdict       `json:"verdict"`
	Confidence      int           `json:"confidence"`
	RiskFactors     []string      `json:"riskFactors"`
	MatchedPatterns []ScamPattern `json:"matchedPatterns,omitempty"`
	Signals         []Signal      `json:"signals,omitempty"`
	Insights        []string      `json:"insights,omitempty"`
}

package ai

import (
	"fmt"
	"math"

	"insafe-lab/internal/domain/models"
)

// Policy decides which signals are averaged into the final confidence and
// where the verdict thresholds sit
type Policy struct {
	Signals             []models.SignalKind
	DangerousThreshold  int
	SuspiciousThreshold int
}

// DefaultPolicy blends the rule score with the external classifier
func DefaultPolicy() Policy {
	return Policy{
		Signals:             []models.SignalKind{models.SignalRule, models.SignalExternal},
		DangerousThreshold:  models.DangerousThreshold,
		SuspiciousThreshold: models.SuspiciousThreshold,
	}
}

// NewPolicy builds a policy from configured signal names
func NewPolicy(signals []string, dangerous, suspicious int) (Policy, error) {
	p := Policy{DangerousThreshold: dangerous, SuspiciousThreshold: suspicious}
	for _, s := range signals {
		switch k := models.SignalKind(s); k {
		case models.SignalRule, models.SignalLearned, models.SignalExternal, models.SignalVerification:
			p.Signals = append(p.Signals, k)
		default:
			return Policy{}, fmt.Errorf("unknown blend signal %q", s)
		}
	}
	if len(p.Signals) == 0 {
		p.Signals = []models.SignalKind{models.SignalRule}
	}
	if p.DangerousThreshold <= 0 {
		p.DangerousThreshold = models.DangerousThreshold
	}
	if p.SuspiciousThreshold <= 0 {
		p.SuspiciousThreshold = models.SuspiciousThreshold
	}
	return p, nil
}

// Selects reports whether signals of kind k take part in the blend
func (p Policy) Selects(k models.SignalKind) bool {
	for _, s := range p.Signals {
		if s == k {
			return true
		}
	}
	return false
}

// Blend averages the available selected signals. Unavailable signals are
// left out of the mean. With nothing available the result is 0.
func (p Policy) Blend(signals []models.Signal) int {
	sum, n := 0, 0
	for _, s := range signals {
		if !s.Available || !p.Selects(s.Kind) {
			continue
		}
		sum += clamp(s.Confidence, 0, 100)
		n++
	}
	if n == 0 {
		return 0
	}
	return clamp(int(math.Round(float64(sum)/float64(n))), 0, 100)
}

// Verdict maps a confidence onto the policy thresholds
func (p Policy) Verdict(confidence int) models.Verdict {
	switch {
	case confidence >= p.DangerousThreshold:
		return models.VerdictDangerous
	case confidence >= p.SuspiciousThreshold:
		return models.VerdictSuspicious
	default:
		return models.VerdictSafe
	}
}

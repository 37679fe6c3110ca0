// Package risk derives a request-specific risk assessment from the
// entity's trust score plus contextual factors. Risk scores are
// short-lived: they describe one operation, not the entity.
package risk

import (
	"fmt"
	"strings"

	"github.com/perimetra/ztcore/pkg/model"
)

// Default penalties. The trust shortfall below this threshold feeds the
// risk score directly.
const (
	TrustThreshold         = 60.0
	DefaultOpPenalty       = 20.0
	DefaultExternalPenalty = 15.0

	// DefaultConfidence is a documented design constant, adjustable via
	// configuration, not a computed value. It stays static until a better
	// signal source is integrated.
	DefaultConfidence = 0.8
)

// DefaultHighRiskOperations is the vocabulary of operations that carry a
// fixed risk penalty regardless of trust.
var DefaultHighRiskOperations = []string{"delete", "export", "admin", "configure"}

// Assessor computes request risk.
type Assessor struct {
	highRiskOps     map[string]struct{}
	opPenalty       float64
	externalPenalty float64
	confidence      float64
}

// NewAssessor creates a risk assessor. A nil or empty operations list
// falls back to the default vocabulary.
func NewAssessor(highRiskOps []string, confidence float64) *Assessor {
	if len(highRiskOps) == 0 {
		highRiskOps = DefaultHighRiskOperations
	}
	if confidence <= 0 || confidence > 1 {
		confidence = DefaultConfidence
	}

	ops := make(map[string]struct{}, len(highRiskOps))
	for _, op := range highRiskOps {
		ops[strings.ToLower(op)] = struct{}{}
	}

	return &Assessor{
		highRiskOps:     ops,
		opPenalty:       DefaultOpPenalty,
		externalPenalty: DefaultExternalPenalty,
		confidence:      confidence,
	}
}

// Assess computes the risk score and level for one request. The score
// starts at zero and accumulates the trust shortfall, the operation
// penalty, and the location penalty, clamped to [0,100].
func (a *Assessor) Assess(req model.AccessRequest, ts *model.TrustScore) model.RiskAssessment {
	var score float64
	var factors []string

	if ts == nil {
		// Fail closed: no trust record means maximum trust shortfall.
		score += TrustThreshold
		factors = append(factors, "no trust score available")
	} else if ts.Score < TrustThreshold {
		score += TrustThreshold - ts.Score
		factors = append(factors, fmt.Sprintf("trust score %.0f below threshold %.0f", ts.Score, TrustThreshold))
	}

	if a.HighRisk(req.Operation) {
		score += a.opPenalty
		factors = append(factors, fmt.Sprintf("high-risk operation %q", req.Operation))
	}

	if loc := req.Context.Network; loc != nil && loc.Zone != model.NetworkInternal {
		score += a.externalPenalty
		factors = append(factors, fmt.Sprintf("request from %s network", loc.Zone))
	}

	score = model.ClampScore(score)

	return model.RiskAssessment{
		Score:      score,
		Level:      model.LevelForRiskScore(score),
		Factors:    factors,
		Confidence: a.confidence,
	}
}

// HighRisk reports whether the operation is in the high-risk vocabulary.
func (a *Assessor) HighRisk(operation string) bool {
	op := strings.ToLower(operation)
	if _, ok := a.highRiskOps[op]; ok {
		return true
	}
	// Compound names like "export_report" still count.
	for known := range a.highRiskOps {
		if strings.Contains(op, known) {
			return true
		}
	}
	return false
}

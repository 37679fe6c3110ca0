package verify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/perimetra/ztcore/pkg/ids"
	"github.com/perimetra/ztcore/pkg/model"
	"github.com/perimetra/ztcore/pkg/trust"
)

// DefaultTolerance is the behavioral deviation beyond which a verification
// cycle raises an anomaly.
const DefaultTolerance = 0.3

// Verifier re-assesses already-authorized entities. One result is produced
// per entity per cycle; it supersedes the prior cycle's record without
// discarding it from the audit trail.
type Verifier struct {
	trust     *trust.Engine
	tolerance float64
	now       func() time.Time

	mu      sync.Mutex
	results map[string]*model.VerificationResult
}

// NewVerifier creates a verifier over the trust engine.
func NewVerifier(trustEngine *trust.Engine, tolerance float64) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Verifier{
		trust:     trustEngine,
		tolerance: tolerance,
		now:       time.Now,
		results:   make(map[string]*model.VerificationResult),
	}
}

// Verify runs one verification cycle for one entity. An entity with no
// existing trust record fails with trust.ErrEntityNotFound and writes no
// result. Anomalies of high or critical severity force the entity's trust
// score to expire so the next access evaluation recomputes it.
func (v *Verifier) Verify(ctx context.Context, entityID string, entityType model.EntityType) (*model.VerificationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prior, err := v.trust.Get(entityID)
	if err != nil {
		return nil, err
	}

	evidence, _ := v.trust.Store().LastEvidence(entityID)

	// Re-derive the entity's posture from its latest evidence. The
	// per-entity lock inside Compute keeps this cycle's write from
	// interleaving with request-time recomputation.
	fresh, err := v.trust.Compute(entityID, entityType, evidence)
	if err != nil {
		return nil, err
	}

	delta := fresh.Score - prior.Score
	anomalies := v.detectAnomalies(evidence, prior, fresh, delta)
	riskFactors := riskFactors(fresh)
	recommended := recommend(anomalies)
	compliance := complianceStatus(fresh, evidence)

	result := &model.VerificationResult{
		ID:          ids.New(),
		EntityID:    entityID,
		VerifiedAt:  v.now(),
		TrustDelta:  delta,
		Anomalies:   anomalies,
		RiskFactors: riskFactors,
		Recommended: recommended,
		Compliance:  compliance,
	}

	v.mu.Lock()
	if prev, ok := v.results[entityID]; ok {
		at := prev.VerifiedAt
		result.PreviousAt = &at
	}
	v.results[entityID] = result
	v.mu.Unlock()

	if severe(anomalies) {
		// Out-of-band invalidation: this is how continuous verification
		// affects live authorization instead of being observational.
		_ = v.trust.Invalidate(entityID)
	}

	return result, nil
}

// Latest returns the most recent verification result for an entity.
func (v *Verifier) Latest(entityID string) (*model.VerificationResult, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	r, ok := v.results[entityID]
	return r, ok
}

func (v *Verifier) detectAnomalies(ev model.Evidence, prior, fresh *model.TrustScore, delta float64) []model.Anomaly {
	var anomalies []model.Anomaly

	if b := ev.Behavior; b != nil && b.HasBaseline && b.DeviationScore > v.tolerance {
		severity := model.RiskLevelMedium
		switch {
		case b.DeviationScore >= 0.9:
			severity = model.RiskLevelCritical
		case b.DeviationScore > 2*v.tolerance:
			severity = model.RiskLevelHigh
		}
		anomalies = append(anomalies, model.Anomaly{
			Type:        "behavior_deviation",
			Severity:    severity,
			Description: fmt.Sprintf("behavioral deviation %.2f exceeds tolerance %.2f", b.DeviationScore, v.tolerance),
			Evidence:    []string{fmt.Sprintf("deviation score %.2f", b.DeviationScore)},
		})
	}

	if delta <= -15 {
		anomalies = append(anomalies, model.Anomaly{
			Type:        "trust_degradation",
			Severity:    model.RiskLevelHigh,
			Description: fmt.Sprintf("trust score dropped %.1f points since last assessment", -delta),
			Evidence:    []string{fmt.Sprintf("previous %.0f, current %.0f", prior.Score, fresh.Score)},
		})
	}

	if fresh.Level == model.RiskLevelCritical {
		anomalies = append(anomalies, model.Anomaly{
			Type:        "critical_trust",
			Severity:    model.RiskLevelCritical,
			Description: fmt.Sprintf("trust score %.0f is in the critical band", fresh.Score),
		})
	}

	if n := ev.Network; n != nil && n.Zone == model.NetworkUntrusted {
		anomalies = append(anomalies, model.Anomaly{
			Type:        "untrusted_network",
			Severity:    model.RiskLevelHigh,
			Description: "entity is operating from an untrusted network segment",
			Evidence:    []string{n.Segment},
		})
	}

	if l := ev.Location; l != nil && l.Name != "" && !l.Approved {
		anomalies = append(anomalies, model.Anomaly{
			Type:        "unapproved_location",
			Severity:    model.RiskLevelMedium,
			Description: fmt.Sprintf("entity is connecting from unapproved location %s", l.Name),
		})
	}

	return anomalies
}

func riskFactors(ts *model.TrustScore) []model.VerificationRiskFactor {
	var factors []model.VerificationRiskFactor
	for _, f := range ts.Factors {
		if f.Contribution >= 0 {
			continue
		}
		factors = append(factors, model.VerificationRiskFactor{
			Factor:     f.Name,
			Impact:     -f.Contribution,
			Mitigation: mitigationFor(f.Name),
		})
	}
	return factors
}

func mitigationFor(factor string) string {
	switch factor {
	case "identity":
		return "re-verify identity with the session layer"
	case "device":
		return "bring the device into management and compliance"
	case "location":
		return "connect from an approved location"
	case "behavior":
		return "review recent activity against the behavioral baseline"
	case "network":
		return "move to an internal or trusted network segment"
	default:
		return ""
	}
}

func recommend(anomalies []model.Anomaly) []model.RecommendedAction {
	var out []model.RecommendedAction
	for _, a := range anomalies {
		switch a.Severity {
		case model.RiskLevelCritical:
			out = append(out, model.RecommendedAction{
				Action:        "revoke_sessions",
				Priority:      model.PriorityImmediate,
				Justification: a.Description,
			})
		case model.RiskLevelHigh:
			out = append(out, model.RecommendedAction{
				Action:        "require_step_up",
				Priority:      model.PriorityHigh,
				Justification: a.Description,
			})
		default:
			out = append(out, model.RecommendedAction{
				Action:        "increase_monitoring",
				Priority:      model.PriorityMedium,
				Justification: a.Description,
			})
		}
	}
	return out
}

func complianceStatus(ts *model.TrustScore, ev model.Evidence) model.ComplianceStatus {
	var violated, satisfied []string

	if ts.Score < 40 {
		violated = append(violated, "minimum-trust-threshold")
	} else {
		satisfied = append(satisfied, "minimum-trust-threshold")
	}

	if d := ev.Device; d != nil {
		if d.Managed && d.Compliant {
			satisfied = append(satisfied, "device-compliance")
		} else {
			violated = append(violated, "device-compliance")
		}
	}

	if l := ev.Location; l != nil {
		if l.Approved {
			satisfied = append(satisfied, "approved-location")
		} else {
			violated = append(violated, "approved-location")
		}
	}

	return model.ComplianceStatus{
		Compliant: len(violated) == 0,
		Violated:  violated,
		Satisfied: satisfied,
	}
}

func severe(anomalies []model.Anomaly) bool {
	for _, a := range anomalies {
		if a.Severity == model.RiskLevelHigh || a.Severity == model.RiskLevelCritical {
			return true
		}
	}
	return false
}

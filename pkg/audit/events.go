package audit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/perimetra/ztcore/pkg/model"
)

// DecisionEvent is emitted once per access evaluation.
type DecisionEvent struct {
	Decision model.AccessDecision
	ClientIP string
	TenantID string
}

func (e DecisionEvent) MessageID() string {
	return "access"
}

func (e DecisionEvent) Message() string {
	return fmt.Sprintf("%s %s on %s for %s (trust %.0f, risk %s)",
		e.Decision.Decision, e.Decision.Operation, e.Decision.ResourceID,
		e.Decision.EntityID, e.Decision.Trust.Score, e.Decision.Risk.Level)
}

func (e DecisionEvent) Severity() Severity {
	switch e.Decision.Decision {
	case model.DecisionAllow:
		return SeverityInfo
	case model.DecisionConditional, model.DecisionChallenge:
		return SeverityNotice
	default:
		return SeverityWarning
	}
}

func (e DecisionEvent) Facility() int {
	return FacilityAuthPriv
}

func (e DecisionEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDActor: {
			"user": e.Decision.EntityID,
		},
		SDIDTarget: {
			"resource_id": e.Decision.ResourceID,
		},
		SDIDAction: {
			"operation": e.Decision.Operation,
			"outcome":   string(e.Decision.Decision),
			"details":   strings.Join(e.Decision.Audit.Reasons, "; "),
		},
		SDIDSecurity: {
			"threat_level": e.Decision.Risk.Level.String(),
			"risk_score":   strconv.FormatFloat(e.Decision.Risk.Score, 'f', 0, 64),
		},
	}
	if e.ClientIP != "" {
		sd[SDIDActor]["ip"] = e.ClientIP
	}
	if e.TenantID != "" {
		sd[SDIDActor]["tenant"] = e.TenantID
	}
	if len(e.Decision.Policies.Matched) > 0 {
		sd[SDIDSecurity]["policies"] = strings.Join(e.Decision.Policies.Matched, ",")
	}
	return sd
}

// VerificationEvent is emitted once per continuous verification cycle.
type VerificationEvent struct {
	Result model.VerificationResult
}

func (e VerificationEvent) MessageID() string {
	return "verify"
}

func (e VerificationEvent) Message() string {
	if len(e.Result.Anomalies) == 0 {
		return fmt.Sprintf("verification cycle for %s completed, trust delta %+.1f", e.Result.EntityID, e.Result.TrustDelta)
	}
	return fmt.Sprintf("verification cycle for %s detected %d anomalies, trust delta %+.1f",
		e.Result.EntityID, len(e.Result.Anomalies), e.Result.TrustDelta)
}

func (e VerificationEvent) Severity() Severity {
	worst := SeverityInfo
	for _, a := range e.Result.Anomalies {
		switch a.Severity {
		case model.RiskLevelCritical:
			return SeverityCritical
		case model.RiskLevelHigh:
			worst = SeverityWarning
		case model.RiskLevelMedium:
			if worst > SeverityNotice {
				worst = SeverityNotice
			}
		}
	}
	return worst
}

func (e VerificationEvent) Facility() int {
	return FacilityAuthPriv
}

func (e VerificationEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDActor: {
			"user": e.Result.EntityID,
		},
		SDIDAction: {
			"operation": "continuous_verification",
			"outcome":   complianceOutcome(e.Result.Compliance),
		},
		SDIDSecurity: {
			"trust_delta": fmt.Sprintf("%+.1f", e.Result.TrustDelta),
			"anomalies":   strconv.Itoa(len(e.Result.Anomalies)),
		},
	}
	if len(e.Result.Compliance.Violated) > 0 {
		sd[SDIDCompliance] = map[string]string{
			"violations": strings.Join(e.Result.Compliance.Violated, ","),
		}
	}
	return sd
}

func complianceOutcome(c model.ComplianceStatus) string {
	if c.Compliant {
		return "compliant"
	}
	return "noncompliant"
}

// SegmentEvent is emitted once per segment creation.
type SegmentEvent struct {
	Segment model.MicroSegment
	Actor   string
}

func (e SegmentEvent) MessageID() string {
	return "segment"
}

func (e SegmentEvent) Message() string {
	return fmt.Sprintf("%s segment %q created and handed to enforcement", e.Segment.Type, e.Segment.Name)
}

func (e SegmentEvent) Severity() Severity {
	return SeverityNotice
}

func (e SegmentEvent) Facility() int {
	return FacilityAuth
}

func (e SegmentEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDTarget: {
			"resource_type": "micro_segment",
			"resource_id":   e.Segment.ID,
		},
		SDIDAction: {
			"operation": "create_segment",
			"outcome":   "applied",
		},
	}
	if e.Actor != "" {
		sd[SDIDActor] = map[string]string{"user": e.Actor}
	}
	if len(e.Segment.Compliance) > 0 {
		sd[SDIDCompliance] = map[string]string{
			"frameworks": strings.Join(e.Segment.Compliance, ","),
		}
	}
	return sd
}

// PolicyLoadEvent is emitted when the policy table is loaded or reloaded.
type PolicyLoadEvent struct {
	Source string
	Count  int
	Actor  string
}

func (e PolicyLoadEvent) MessageID() string {
	return "policy"
}

func (e PolicyLoadEvent) Message() string {
	return fmt.Sprintf("loaded %d policies from %s", e.Count, e.Source)
}

func (e PolicyLoadEvent) Severity() Severity {
	return SeverityNotice
}

func (e PolicyLoadEvent) Facility() int {
	return FacilityAuth
}

func (e PolicyLoadEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAction: {
			"operation": "policy_load",
			"outcome":   "success",
			"details":   fmt.Sprintf("%d policies", e.Count),
		},
	}
	if e.Actor != "" {
		sd[SDIDActor] = map[string]string{"user": e.Actor}
	}
	return sd
}

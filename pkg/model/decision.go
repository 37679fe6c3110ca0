package model

import "time"

// Decision is the outcome of an access evaluation.
type Decision string

const (
	DecisionAllow       Decision = "allow"
	DecisionConditional Decision = "conditional"
	DecisionChallenge   Decision = "challenge"
	DecisionDeny        Decision = "deny"
)

// Restrictiveness orders decisions from most to least permissive. A higher
// value never relaxes into a lower one during conflict resolution.
func (d Decision) Restrictiveness() int {
	switch d {
	case DecisionAllow:
		return 0
	case DecisionConditional:
		return 1
	case DecisionChallenge:
		return 2
	case DecisionDeny:
		return 3
	default:
		return 3
	}
}

// MostRestrictive returns the more limiting of two decisions.
func MostRestrictive(a, b Decision) Decision {
	if b.Restrictiveness() > a.Restrictiveness() {
		return b
	}
	return a
}

// ConditionStatus tracks an outstanding condition on a conditional decision.
type ConditionStatus string

const (
	ConditionMet     ConditionStatus = "met"
	ConditionPending ConditionStatus = "pending"
	ConditionFailed  ConditionStatus = "failed"
)

// DecisionCondition is one requirement the entity must satisfy before a
// conditional decision becomes an effective allow.
type DecisionCondition struct {
	Type        string          `json:"type"`
	Requirement string          `json:"requirement"`
	Status      ConditionStatus `json:"status"`
}

// MonitoringLevel is the logging intensity required for a decision.
type MonitoringLevel string

const (
	MonitoringStandard MonitoringLevel = "standard"
	MonitoringEnhanced MonitoringLevel = "enhanced"
	MonitoringMaximum  MonitoringLevel = "maximum"
)

// MonitoringRequirement says how closely the session resulting from a
// decision must be watched.
type MonitoringRequirement struct {
	Required bool            `json:"required"`
	Level    MonitoringLevel `json:"level"`
	Duration time.Duration   `json:"duration,omitempty"`
}

// PolicyEvaluation summarizes which policies were considered for a decision.
type PolicyEvaluation struct {
	Evaluated  []string `json:"evaluated"`
	Matched    []string `json:"matched"`
	Resolution string   `json:"resolution"`
}

// DecisionAudit is the forensic trail attached to each decision.
type DecisionAudit struct {
	Reasons      []string `json:"reasons"`
	Evidence     []string `json:"evidence,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// AccessDecision is the immutable record of one access evaluation. A changed
// trust or risk posture produces a new decision; it never mutates history.
// Conditions is populated exactly when Decision == DecisionConditional.
type AccessDecision struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	EntityID   string `json:"entity_id"`
	ResourceID string `json:"resource_id"`
	Operation  string `json:"operation"`

	Decision Decision `json:"decision"`

	Trust    TrustScore       `json:"trust"`
	Risk     RiskAssessment   `json:"risk"`
	Policies PolicyEvaluation `json:"policies"`

	Conditions []DecisionCondition   `json:"conditions,omitempty"`
	Audit      DecisionAudit         `json:"audit"`
	Monitoring MonitoringRequirement `json:"monitoring"`
}

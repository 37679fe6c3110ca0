package model

import "time"

// Anomaly is a deviation detected during a continuous verification cycle.
type Anomaly struct {
	Type        string    `json:"type"`
	Severity    RiskLevel `json:"severity"`
	Description string    `json:"description"`
	Evidence    []string  `json:"evidence,omitempty"`
}

// VerificationRiskFactor is a current risk contributor for an entity,
// with the mitigation the engine suggests.
type VerificationRiskFactor struct {
	Factor     string  `json:"factor"`
	Impact     float64 `json:"impact"`
	Mitigation string  `json:"mitigation,omitempty"`
}

// ActionPriority orders recommended actions.
type ActionPriority string

const (
	PriorityLow       ActionPriority = "low"
	PriorityMedium    ActionPriority = "medium"
	PriorityHigh      ActionPriority = "high"
	PriorityImmediate ActionPriority = "immediate"
)

// RecommendedAction is a corrective action surfaced by a verification cycle.
type RecommendedAction struct {
	Action        string         `json:"action"`
	Priority      ActionPriority `json:"priority"`
	Justification string         `json:"justification,omitempty"`
}

// ComplianceStatus reports which requirements an entity satisfies or violates.
type ComplianceStatus struct {
	Compliant bool     `json:"compliant"`
	Violated  []string `json:"violated,omitempty"`
	Satisfied []string `json:"satisfied,omitempty"`
}

// VerificationResult is the record of one continuous verification cycle for
// one entity. It supersedes, but does not discard, the prior cycle's record.
type VerificationResult struct {
	ID         string     `json:"id"`
	EntityID   string     `json:"entity_id"`
	VerifiedAt time.Time  `json:"verified_at"`
	PreviousAt *time.Time `json:"previous_at,omitempty"`

	// TrustDelta is the signed change in trust score since the prior cycle.
	TrustDelta float64 `json:"trust_delta"`

	Anomalies   []Anomaly                `json:"anomalies,omitempty"`
	RiskFactors []VerificationRiskFactor `json:"risk_factors,omitempty"`
	Recommended []RecommendedAction      `json:"recommended,omitempty"`
	Compliance  ComplianceStatus         `json:"compliance"`
}

package model

import "time"

// TrustFactor is one assessor's contribution to a trust score.
type TrustFactor struct {
	Name         string   `json:"name"`
	Contribution float64  `json:"contribution"`
	Weight       float64  `json:"weight"`
	Evidence     []string `json:"evidence,omitempty"`
}

// TrustScore is the engine's bounded estimate of how much an entity should
// be trusted at a point in time. A score is valid until ExpiresAt; after
// that consumers must request a fresh assessment instead of reusing it.
type TrustScore struct {
	EntityID   string        `json:"entity_id"`
	EntityType EntityType    `json:"entity_type"`
	Score      float64       `json:"score"`
	Level      RiskLevel     `json:"level"`
	Factors    []TrustFactor `json:"factors"`
	AssessedAt time.Time     `json:"assessed_at"`
	ExpiresAt  time.Time     `json:"expires_at"`
	Context    Evidence      `json:"context"`
}

// Stale reports whether the score has passed its expiry.
func (ts *TrustScore) Stale(now time.Time) bool {
	return now.After(ts.ExpiresAt)
}

// RiskAssessment is a request-specific, short-lived estimate of danger for
// a particular operation, derived from trust plus contextual factors.
type RiskAssessment struct {
	Score      float64   `json:"score"`
	Level      RiskLevel `json:"level"`
	Factors    []string  `json:"factors,omitempty"`
	Confidence float64   `json:"confidence"`
}

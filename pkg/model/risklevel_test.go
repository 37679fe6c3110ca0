package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForTrustScore(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  RiskLevel
	}{
		{"full trust", 100, RiskLevelLow},
		{"low boundary", 80, RiskLevelLow},
		{"just under low boundary", 79.9, RiskLevelMedium},
		{"medium boundary", 60, RiskLevelMedium},
		{"just under medium boundary", 59.9, RiskLevelHigh},
		{"high boundary", 40, RiskLevelHigh},
		{"just under high boundary", 39.9, RiskLevelCritical},
		{"no trust", 0, RiskLevelCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelForTrustScore(tt.score))
		})
	}
}

func TestLevelForRiskScore(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  RiskLevel
	}{
		{"no risk", 0, RiskLevelLow},
		{"medium boundary", 40, RiskLevelMedium},
		{"just under medium boundary", 39.9, RiskLevelLow},
		{"high boundary", 60, RiskLevelHigh},
		{"critical boundary", 80, RiskLevelCritical},
		{"maximum risk", 100, RiskLevelCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelForRiskScore(tt.score))
		})
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, ClampScore(-25))
	assert.Equal(t, 100.0, ClampScore(140))
	assert.Equal(t, 55.5, ClampScore(55.5))
}

func TestMostRestrictive(t *testing.T) {
	assert.Equal(t, DecisionDeny, MostRestrictive(DecisionAllow, DecisionDeny))
	assert.Equal(t, DecisionDeny, MostRestrictive(DecisionDeny, DecisionConditional))
	assert.Equal(t, DecisionChallenge, MostRestrictive(DecisionChallenge, DecisionConditional))
	assert.Equal(t, DecisionAllow, MostRestrictive(DecisionAllow, DecisionAllow))
}

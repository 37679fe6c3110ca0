package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/perimetra/ztcore/pkg/model"
)

func trustScore(score float64) *model.TrustScore {
	return &model.TrustScore{Score: score, Level: model.LevelForTrustScore(score)}
}

func TestAssess(t *testing.T) {
	assessor := NewAssessor(nil, 0)

	tests := []struct {
		name      string
		req       model.AccessRequest
		trust     *model.TrustScore
		wantScore float64
		wantLevel model.RiskLevel
	}{
		{
			name:      "high trust read is riskless",
			req:       model.AccessRequest{Operation: "read"},
			trust:     trustScore(70),
			wantScore: 0,
			wantLevel: model.RiskLevelLow,
		},
		{
			name:      "trust shortfall feeds the score",
			req:       model.AccessRequest{Operation: "read"},
			trust:     trustScore(25),
			wantScore: 35,
			wantLevel: model.RiskLevelLow,
		},
		{
			name:      "low trust export from external network",
			req:       model.AccessRequest{Operation: "export", Context: model.Evidence{Network: &model.NetworkEvidence{Zone: model.NetworkExternal}}},
			trust:     trustScore(25),
			wantScore: 70,
			wantLevel: model.RiskLevelHigh,
		},
		{
			name:      "export alone under low trust",
			req:       model.AccessRequest{Operation: "export"},
			trust:     trustScore(25),
			wantScore: 55,
			wantLevel: model.RiskLevelMedium,
		},
		{
			name:      "untrusted network counts like external",
			req:       model.AccessRequest{Operation: "read", Context: model.Evidence{Network: &model.NetworkEvidence{Zone: model.NetworkUntrusted}}},
			trust:     trustScore(80),
			wantScore: 15,
			wantLevel: model.RiskLevelLow,
		},
		{
			name:      "internal network adds nothing",
			req:       model.AccessRequest{Operation: "read", Context: model.Evidence{Network: &model.NetworkEvidence{Zone: model.NetworkInternal}}},
			trust:     trustScore(80),
			wantScore: 0,
			wantLevel: model.RiskLevelLow,
		},
		{
			name:      "missing trust record fails closed",
			req:       model.AccessRequest{Operation: "delete", Context: model.Evidence{Network: &model.NetworkEvidence{Zone: model.NetworkUntrusted}}},
			trust:     nil,
			wantScore: 95,
			wantLevel: model.RiskLevelCritical,
		},
		{
			name:      "trust exactly at threshold adds no shortfall",
			req:       model.AccessRequest{Operation: "read"},
			trust:     trustScore(60),
			wantScore: 0,
			wantLevel: model.RiskLevelLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := assessor.Assess(tt.req, tt.trust)
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantLevel, got.Level)
			assert.Equal(t, DefaultConfidence, got.Confidence)
		})
	}
}

func TestAssessClampsScore(t *testing.T) {
	assessor := NewAssessor(nil, 0)

	// Shortfall 60 + operation 20 + network 15 = 95, still within scale;
	// custom vocabularies cannot push past 100 either.
	got := assessor.Assess(model.AccessRequest{
		Operation: "delete",
		Context:   model.Evidence{Network: &model.NetworkEvidence{Zone: model.NetworkUntrusted}},
	}, trustScore(0))
	assert.LessOrEqual(t, got.Score, model.ScoreMax)
}

func TestHighRisk(t *testing.T) {
	assessor := NewAssessor(nil, 0)

	assert.True(t, assessor.HighRisk("delete"))
	assert.True(t, assessor.HighRisk("DELETE"))
	assert.True(t, assessor.HighRisk("export_report"))
	assert.False(t, assessor.HighRisk("read"))
	assert.False(t, assessor.HighRisk("write"))
}

func TestCustomVocabulary(t *testing.T) {
	assessor := NewAssessor([]string{"transfer"}, 0.9)

	assert.True(t, assessor.HighRisk("transfer"))
	assert.False(t, assessor.HighRisk("delete"))

	got := assessor.Assess(model.AccessRequest{Operation: "transfer"}, trustScore(80))
	assert.Equal(t, 20.0, got.Score)
	assert.Equal(t, 0.9, got.Confidence)
}

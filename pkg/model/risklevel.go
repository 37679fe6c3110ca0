package model

//go:generate go run github.com/dmarkham/enumer -type RiskLevel -trimprefix RiskLevel -transform lower -json -text -output risklevel.gen.go

// RiskLevel buckets a bounded score. The same four levels are used for
// trust scores and request risk scores, but the two scales run in opposite
// directions: a high trust score is low risk, a high risk score is critical.
type RiskLevel int

const (
	RiskLevelLow RiskLevel = iota
	RiskLevelMedium
	RiskLevelHigh
	RiskLevelCritical
)

// Trust and risk scores are clamped to [ScoreMin, ScoreMax].
const (
	ScoreMin = 0.0
	ScoreMax = 100.0
)

// ClampScore bounds a score to [0, 100].
func ClampScore(v float64) float64 {
	if v < ScoreMin {
		return ScoreMin
	}
	if v > ScoreMax {
		return ScoreMax
	}
	return v
}

// LevelForTrustScore maps a trust score to its risk bucket:
// >=80 low, >=60 medium, >=40 high, else critical.
func LevelForTrustScore(score float64) RiskLevel {
	switch {
	case score >= 80:
		return RiskLevelLow
	case score >= 60:
		return RiskLevelMedium
	case score >= 40:
		return RiskLevelHigh
	default:
		return RiskLevelCritical
	}
}

// LevelForRiskScore maps a request risk score to its level:
// >=80 critical, >=60 high, >=40 medium, else low.
func LevelForRiskScore(score float64) RiskLevel {
	switch {
	case score >= 80:
		return RiskLevelCritical
	case score >= 60:
		return RiskLevelHigh
	case score >= 40:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

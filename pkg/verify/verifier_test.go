package verify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perimetra/ztcore/pkg/model"
	"github.com/perimetra/ztcore/pkg/trust"
)

func newTestTrustEngine(now time.Time) *trust.Engine {
	return trust.NewEngine(trust.NewStore(), trust.DefaultWeights(), 5*time.Minute).
		WithClock(func() time.Time { return now })
}

func TestVerifyUnknownEntity(t *testing.T) {
	engine := newTestTrustEngine(time.Now())
	verifier := NewVerifier(engine, 0)

	_, err := verifier.Verify(context.Background(), "ghost", model.EntityTypeUser)
	assert.ErrorIs(t, err, trust.ErrEntityNotFound)

	_, ok := verifier.Latest("ghost")
	assert.False(t, ok)
}

func TestVerifyCleanEntity(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := newTestTrustEngine(now)
	verifier := NewVerifier(engine, 0)

	ev := model.Evidence{
		Identity: model.IdentityVerified,
		Device:   &model.DeviceEvidence{DeviceID: "d1", Managed: true, Compliant: true, Healthy: true},
		Location: &model.LocationEvidence{Name: "hq", Approved: true},
		Network:  &model.NetworkEvidence{Zone: model.NetworkInternal},
	}
	_, err := engine.Compute("alice", model.EntityTypeUser, ev)
	require.NoError(t, err)

	result, err := verifier.Verify(context.Background(), "alice", model.EntityTypeUser)
	require.NoError(t, err)

	assert.Empty(t, result.Anomalies)
	assert.Empty(t, result.RiskFactors)
	assert.Empty(t, result.Recommended)
	assert.Zero(t, result.TrustDelta)
	assert.Nil(t, result.PreviousAt)
	assert.True(t, result.Compliance.Compliant)
	assert.Contains(t, result.Compliance.Satisfied, "device-compliance")
	assert.Contains(t, result.Compliance.Satisfied, "approved-location")

	latest, ok := verifier.Latest("alice")
	require.True(t, ok)
	assert.Equal(t, result.ID, latest.ID)
}

func TestVerifySupersedesPriorCycle(t *testing.T) {
	engine := newTestTrustEngine(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	verifier := NewVerifier(engine, 0)

	_, err := engine.Compute("alice", model.EntityTypeUser, model.Evidence{Identity: model.IdentityVerified})
	require.NoError(t, err)

	first, err := verifier.Verify(context.Background(), "alice", model.EntityTypeUser)
	require.NoError(t, err)

	second, err := verifier.Verify(context.Background(), "alice", model.EntityTypeUser)
	require.NoError(t, err)

	require.NotNil(t, second.PreviousAt)
	assert.Equal(t, first.VerifiedAt, *second.PreviousAt)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestVerifyBehaviorAnomalySeverity(t *testing.T) {
	tests := []struct {
		name         string
		deviation    float64
		wantAnomaly  bool
		wantSeverity model.RiskLevel
	}{
		{"within tolerance", 0.2, false, 0},
		{"just over tolerance", 0.4, true, model.RiskLevelMedium},
		{"over twice tolerance", 0.7, true, model.RiskLevelHigh},
		{"full departure", 0.95, true, model.RiskLevelCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestTrustEngine(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
			verifier := NewVerifier(engine, 0.3)

			ev := model.Evidence{
				Identity: model.IdentityVerified,
				Behavior: &model.BehaviorEvidence{HasBaseline: true, DeviationScore: tt.deviation},
			}
			_, err := engine.Compute("alice", model.EntityTypeUser, ev)
			require.NoError(t, err)

			result, err := verifier.Verify(context.Background(), "alice", model.EntityTypeUser)
			require.NoError(t, err)

			if !tt.wantAnomaly {
				assert.Empty(t, result.Anomalies)
				return
			}
			require.Len(t, result.Anomalies, 1)
			assert.Equal(t, "behavior_deviation", result.Anomalies[0].Type)
			assert.Equal(t, tt.wantSeverity, result.Anomalies[0].Severity)
		})
	}
}

func TestVerifySevereAnomalyInvalidatesTrust(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := newTestTrustEngine(now)
	verifier := NewVerifier(engine, 0.3)

	ev := model.Evidence{
		Identity: model.IdentityVerified,
		Behavior: &model.BehaviorEvidence{HasBaseline: true, DeviationScore: 0.7},
	}
	_, err := engine.Compute("alice", model.EntityTypeUser, ev)
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), "alice", model.EntityTypeUser)
	require.NoError(t, err)

	// The high-severity anomaly forces the score to expire so the next
	// access evaluation recomputes.
	ts, err := engine.Get("alice")
	require.NoError(t, err)
	assert.True(t, ts.Stale(now))
}

func TestVerifyMediumAnomalyLeavesTrustValid(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := newTestTrustEngine(now)
	verifier := NewVerifier(engine, 0.3)

	ev := model.Evidence{
		Identity: model.IdentityVerified,
		Location: &model.LocationEvidence{Name: "cafe", Approved: false},
	}
	_, err := engine.Compute("alice", model.EntityTypeUser, ev)
	require.NoError(t, err)

	result, err := verifier.Verify(context.Background(), "alice", model.EntityTypeUser)
	require.NoError(t, err)

	require.Len(t, result.Anomalies, 1)
	assert.Equal(t, "unapproved_location", result.Anomalies[0].Type)
	assert.Equal(t, model.RiskLevelMedium, result.Anomalies[0].Severity)

	require.Len(t, result.Recommended, 1)
	assert.Equal(t, "increase_monitoring", result.Recommended[0].Action)
	assert.Equal(t, model.PriorityMedium, result.Recommended[0].Priority)

	// The location factor scored negative, so it surfaces as a risk factor
	// with a mitigation.
	require.Len(t, result.RiskFactors, 1)
	assert.Equal(t, "location", result.RiskFactors[0].Factor)
	assert.Equal(t, 15.0, result.RiskFactors[0].Impact)
	assert.NotEmpty(t, result.RiskFactors[0].Mitigation)

	assert.False(t, result.Compliance.Compliant)
	assert.Contains(t, result.Compliance.Violated, "approved-location")

	ts, err := engine.Get("alice")
	require.NoError(t, err)
	assert.False(t, ts.Stale(now))
}

func TestVerifyCriticalTrust(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := newTestTrustEngine(now)
	verifier := NewVerifier(engine, 0.3)

	// Unverified identity on an unmanaged device from an untrusted segment
	// lands the score in the critical band.
	ev := model.Evidence{
		Identity: model.IdentityUnverified,
		Device:   &model.DeviceEvidence{DeviceID: "d1"},
		Network:  &model.NetworkEvidence{Zone: model.NetworkUntrusted, Segment: "guest-wifi"},
	}
	_, err := engine.Compute("mallory", model.EntityTypeUser, ev)
	require.NoError(t, err)

	result, err := verifier.Verify(context.Background(), "mallory", model.EntityTypeUser)
	require.NoError(t, err)

	types := map[string]model.RiskLevel{}
	for _, a := range result.Anomalies {
		types[a.Type] = a.Severity
	}
	assert.Equal(t, model.RiskLevelCritical, types["critical_trust"])
	assert.Equal(t, model.RiskLevelHigh, types["untrusted_network"])

	actions := map[string]bool{}
	for _, r := range result.Recommended {
		actions[r.Action] = true
	}
	assert.True(t, actions["revoke_sessions"])
	assert.True(t, actions["require_step_up"])

	assert.Contains(t, result.Compliance.Violated, "minimum-trust-threshold")

	ts, err := engine.Get("mallory")
	require.NoError(t, err)
	assert.True(t, ts.Stale(now))
}

func TestDetectAnomaliesTrustDegradation(t *testing.T) {
	verifier := NewVerifier(newTestTrustEngine(time.Now()), 0.3)

	prior := &model.TrustScore{Score: 70, Level: model.RiskLevelMedium}
	fresh := &model.TrustScore{Score: 50, Level: model.RiskLevelHigh}

	anomalies := verifier.detectAnomalies(model.Evidence{}, prior, fresh, fresh.Score-prior.Score)
	require.Len(t, anomalies, 1)
	assert.Equal(t, "trust_degradation", anomalies[0].Type)
	assert.Equal(t, model.RiskLevelHigh, anomalies[0].Severity)

	// A ten point drop stays below the degradation threshold.
	shallow := &model.TrustScore{Score: 60, Level: model.RiskLevelMedium}
	assert.Empty(t, verifier.detectAnomalies(model.Evidence{}, prior, shallow, shallow.Score-prior.Score))
}

func TestSchedulerDefaultsInterval(t *testing.T) {
	engine := newTestTrustEngine(time.Now())
	scheduler := NewScheduler(NewVerifier(engine, 0), engine, nil, 0)
	assert.Equal(t, time.Minute, scheduler.Interval())
}

func TestSchedulerRunCycle(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := newTestTrustEngine(now)
	verifier := NewVerifier(engine, 0.3)
	scheduler := NewScheduler(verifier, engine, nil, time.Minute)

	_, err := engine.Compute("alice", model.EntityTypeUser, model.Evidence{Identity: model.IdentityVerified})
	require.NoError(t, err)
	_, err = engine.Compute("bob", model.EntityTypeService, model.Evidence{Identity: model.IdentityPartial})
	require.NoError(t, err)

	scheduler.runCycle(context.Background())

	for _, id := range []string{"alice", "bob"} {
		_, ok := verifier.Latest(id)
		assert.True(t, ok, "expected a verification result for %s", id)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	engine := newTestTrustEngine(time.Now())
	scheduler := NewScheduler(NewVerifier(engine, 0), engine, nil, time.Hour)

	scheduler.Start(context.Background())
	scheduler.Stop()
}

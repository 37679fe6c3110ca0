package trust

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perimetra/ztcore/pkg/model"
)

func newTestEngine(t *testing.T) (*Engine, *time.Time) {
	t.Helper()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := NewEngine(NewStore(), DefaultWeights(), 5*time.Minute).
		WithClock(func() time.Time { return now })
	return engine, &now
}

func TestComputeBaseline(t *testing.T) {
	engine, _ := newTestEngine(t)

	// No evidence: baseline 50, high level.
	ts, err := engine.Compute("alice", model.EntityTypeUser, model.Evidence{})
	require.NoError(t, err)
	assert.Equal(t, Baseline, ts.Score)
	assert.Equal(t, model.RiskLevelHigh, ts.Level)
	assert.Empty(t, ts.Factors)
}

func TestComputeVerifiedIdentityOnly(t *testing.T) {
	engine, _ := newTestEngine(t)

	ts, err := engine.Compute("alice", model.EntityTypeUser, model.Evidence{
		Identity: model.IdentityVerified,
	})
	require.NoError(t, err)
	assert.Equal(t, 70.0, ts.Score)
	assert.Equal(t, model.RiskLevelMedium, ts.Level)
	require.Len(t, ts.Factors, 1)
	assert.Equal(t, "identity", ts.Factors[0].Name)
}

func TestComputeClampsToScale(t *testing.T) {
	engine, _ := newTestEngine(t)

	// Every factor at its worst: the raw sum is well below zero.
	ts, err := engine.Compute("mallory", model.EntityTypeUser, model.Evidence{
		Identity: model.IdentityUnverified,
		Device:   &model.DeviceEvidence{DeviceID: "d1"},
		Location: &model.LocationEvidence{Name: "unknown-city"},
		Behavior: &model.BehaviorEvidence{HasBaseline: true, DeviationScore: 1},
		Network:  &model.NetworkEvidence{Zone: model.NetworkUntrusted},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ScoreMin, ts.Score)
	assert.Equal(t, model.RiskLevelCritical, ts.Level)

	// Every factor at its best: capped at the top of the scale.
	ts, err = engine.Compute("alice", model.EntityTypeUser, model.Evidence{
		Identity: model.IdentityVerified,
		Device:   &model.DeviceEvidence{DeviceID: "d2", Managed: true, Compliant: true, Healthy: true},
		Location: &model.LocationEvidence{Name: "hq", Approved: true},
		Behavior: &model.BehaviorEvidence{HasBaseline: true, DeviationScore: 0},
		Network:  &model.NetworkEvidence{Zone: model.NetworkInternal},
	})
	require.NoError(t, err)
	assert.Equal(t, model.ScoreMax, ts.Score)
	assert.Equal(t, model.RiskLevelLow, ts.Level)
}

func TestComputeRejectsInvalidEntityType(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Compute("alice", model.EntityType(99), model.Evidence{})
	assert.ErrorIs(t, err, ErrInvalidEntityType)
	assert.Zero(t, engine.Store().Len())
}

func TestCurrentReusesValidScore(t *testing.T) {
	engine, now := newTestEngine(t)

	first, err := engine.Current("alice", model.EntityTypeUser, model.Evidence{Identity: model.IdentityVerified})
	require.NoError(t, err)

	// Fresh evidence within the validity window does not trigger recompute.
	second, err := engine.Current("alice", model.EntityTypeUser, model.Evidence{Identity: model.IdentityUnverified})
	require.NoError(t, err)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.AssessedAt, second.AssessedAt)

	// Past expiry the score is recomputed from the supplied evidence.
	*now = now.Add(6 * time.Minute)
	third, err := engine.Current("alice", model.EntityTypeUser, model.Evidence{Identity: model.IdentityUnverified})
	require.NoError(t, err)
	assert.Equal(t, 30.0, third.Score)
}

func TestInvalidate(t *testing.T) {
	engine, _ := newTestEngine(t)

	t.Run("unknown entity", func(t *testing.T) {
		assert.ErrorIs(t, engine.Invalidate("ghost"), ErrEntityNotFound)
	})

	t.Run("forces recompute on next evaluation", func(t *testing.T) {
		_, err := engine.Compute("alice", model.EntityTypeUser, model.Evidence{Identity: model.IdentityVerified})
		require.NoError(t, err)

		require.NoError(t, engine.Invalidate("alice"))

		ts, err := engine.Get("alice")
		require.NoError(t, err)
		assert.True(t, ts.Stale(engine.now()))

		fresh, err := engine.Current("alice", model.EntityTypeUser, model.Evidence{Identity: model.IdentityUnverified})
		require.NoError(t, err)
		assert.Equal(t, 30.0, fresh.Score)
	})
}

func TestGetReturnsCopy(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.Compute("alice", model.EntityTypeUser, model.Evidence{Identity: model.IdentityVerified})
	require.NoError(t, err)

	ts, err := engine.Get("alice")
	require.NoError(t, err)
	ts.Score = 1

	again, err := engine.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, 70.0, again.Score)
}

func TestStoreTracksEvidence(t *testing.T) {
	engine, _ := newTestEngine(t)

	ev := model.Evidence{Identity: model.IdentityVerified, Network: &model.NetworkEvidence{Zone: model.NetworkInternal}}
	_, err := engine.Compute("svc-1", model.EntityTypeService, ev)
	require.NoError(t, err)

	got, ok := engine.Store().LastEvidence("svc-1")
	require.True(t, ok)
	assert.Equal(t, model.IdentityVerified, got.Identity)
	require.NotNil(t, got.Network)
	assert.Equal(t, model.NetworkInternal, got.Network.Zone)

	assert.Equal(t, []string{"svc-1"}, engine.Store().Entities())
}

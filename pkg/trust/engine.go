package trust

import (
	"errors"
	"fmt"
	"time"

	"github.com/perimetra/ztcore/pkg/model"
)

// ErrInvalidEntityType is returned when scoring is requested for an unknown
// entity classification.
var ErrInvalidEntityType = errors.New("invalid entity type")

// ErrEntityNotFound is returned when an operation requires an existing trust
// record and none exists for the entity.
var ErrEntityNotFound = errors.New("entity not found")

// Baseline is the neutral starting score before factor contributions.
const Baseline = 50.0

// Engine computes and caches per-entity trust scores.
type Engine struct {
	store    *Store
	weights  Weights
	interval time.Duration
	now      func() time.Time
}

// NewEngine creates a trust engine. interval is the re-verification window:
// scores expire interval after assessment.
func NewEngine(store *Store, weights Weights, interval time.Duration) *Engine {
	return &Engine{
		store:    store,
		weights:  weights,
		interval: interval,
		now:      time.Now,
	}
}

// WithClock overrides the engine's time source. Tests only.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Compute performs a fresh assessment for the entity and stores the result,
// last write wins. The per-entity lock covers the whole read-compute-write
// so concurrent assessments cannot interleave into an inconsistent record.
func (e *Engine) Compute(entityID string, entityType model.EntityType, ev model.Evidence) (*model.TrustScore, error) {
	if !entityType.IsAEntityType() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidEntityType, entityType)
	}

	rec := e.store.record(entityID, true)
	rec.mu.Lock()
	defer rec.mu.Unlock()

	factors := Assess(ev, e.weights)

	score := Baseline
	for _, f := range factors {
		score += f.Contribution
	}
	score = model.ClampScore(score)

	now := e.now()
	ts := &model.TrustScore{
		EntityID:   entityID,
		EntityType: entityType,
		Score:      score,
		Level:      model.LevelForTrustScore(score),
		Factors:    factors,
		AssessedAt: now,
		ExpiresAt:  now.Add(e.interval),
		Context:    ev,
	}

	rec.score = ts
	rec.evidence = ev
	return copyScore(ts), nil
}

// Current returns the cached score when it is still valid, and recomputes
// from the supplied evidence when the cache is missing or stale. Stale
// records are never reused.
func (e *Engine) Current(entityID string, entityType model.EntityType, ev model.Evidence) (*model.TrustScore, error) {
	if ts, ok := e.store.Get(entityID); ok && !ts.Stale(e.now()) {
		return ts, nil
	}
	return e.Compute(entityID, entityType, ev)
}

// Get returns the entity's current trust record without recomputing.
func (e *Engine) Get(entityID string) (*model.TrustScore, error) {
	ts, ok := e.store.Get(entityID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, entityID)
	}
	return ts, nil
}

// Invalidate forces the entity's trust record to expire immediately so the
// next access evaluation recomputes instead of trusting a stale score.
func (e *Engine) Invalidate(entityID string) error {
	rec := e.store.record(entityID, false)
	if rec == nil {
		return fmt.Errorf("%w: %s", ErrEntityNotFound, entityID)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.score == nil {
		return fmt.Errorf("%w: %s", ErrEntityNotFound, entityID)
	}
	rec.score.ExpiresAt = e.now().Add(-time.Second)
	return nil
}

// Store exposes the underlying entity store.
func (e *Engine) Store() *Store {
	return e.store
}

// Interval returns the configured re-verification window.
func (e *Engine) Interval() time.Duration {
	return e.interval
}

package verify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/perimetra/ztcore/pkg/audit"
	"github.com/perimetra/ztcore/pkg/obs"
	"github.com/perimetra/ztcore/pkg/trust"
)

// Scheduler drives continuous verification on a fixed cadence, decoupled
// from request traffic. Each tick re-verifies every tracked entity; the
// per-entity trust lock is the unit-of-work boundary, so cancellation
// between entities never leaves a half-written record.
type Scheduler struct {
	verifier *Verifier
	trust    *trust.Engine
	emitter  *audit.Emitter
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a verification scheduler. emitter may be nil.
func NewScheduler(verifier *Verifier, trustEngine *trust.Engine, emitter *audit.Emitter, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		verifier: verifier,
		trust:    trustEngine,
		emitter:  emitter,
		interval: interval,
	}
}

// Start launches the background cycle. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runCycle(ctx)
			}
		}
	}()
}

// Stop cancels the scheduler and waits for the current cycle to reach its
// next entity boundary.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *Scheduler) runCycle(ctx context.Context) {
	for _, entityID := range s.trust.Store().Entities() {
		if ctx.Err() != nil {
			return
		}

		ts, err := s.trust.Get(entityID)
		if err != nil {
			continue
		}

		result, err := s.verifier.Verify(ctx, entityID, ts.EntityType)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				fmt.Fprintf(os.Stderr, "verify: cycle failed for %s: %v\n", entityID, err)
			}
			continue
		}

		if s.emitter != nil {
			s.emitter.Emit(audit.VerificationEvent{Result: *result})
		}
		obs.VerificationCyclesTotal.Inc()
		for _, a := range result.Anomalies {
			obs.AnomaliesTotal.WithLabelValues(a.Severity.String()).Inc()
		}
	}
	obs.TrackedEntities.Set(float64(s.trust.Store().Len()))
}

// Interval returns the scheduler cadence.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/perimetra/ztcore/pkg/audit"
	"github.com/perimetra/ztcore/pkg/ids"
	"github.com/perimetra/ztcore/pkg/model"
	"github.com/perimetra/ztcore/pkg/obs"
	"github.com/perimetra/ztcore/pkg/policy"
	"github.com/perimetra/ztcore/pkg/risk"
	"github.com/perimetra/ztcore/pkg/segment"
	"github.com/perimetra/ztcore/pkg/trust"
)

// Decision thresholds on the trust scale. Fixed policy: the policy engine's
// resolved action can tighten this baseline, never loosen it.
const (
	DenyBelow        = 30.0
	ChallengeBelow   = 50.0
	ConditionalBelow = 70.0
)

// Coordinator orchestrates access evaluations: trust, then risk, then
// policy, then one immutable decision.
type Coordinator struct {
	trust     *trust.Engine
	risk      *risk.Assessor
	policies  *policy.Engine
	segments  *segment.Manager
	decisions *DecisionStore
	archive   *Archive
	emitter   *audit.Emitter
	now       func() time.Time
}

// NewCoordinator wires the decision pipeline. archive may be nil.
func NewCoordinator(
	trustEngine *trust.Engine,
	riskAssessor *risk.Assessor,
	policyEngine *policy.Engine,
	segmentManager *segment.Manager,
	decisions *DecisionStore,
	archive *Archive,
	emitter *audit.Emitter,
) *Coordinator {
	return &Coordinator{
		trust:     trustEngine,
		risk:      riskAssessor,
		policies:  policyEngine,
		segments:  segmentManager,
		decisions: decisions,
		archive:   archive,
		emitter:   emitter,
		now:       time.Now,
	}
}

// WithClock overrides the coordinator's time source. Tests only.
func (c *Coordinator) WithClock(now func() time.Time) *Coordinator {
	c.now = now
	return c
}

// Decisions exposes the decision store.
func (c *Coordinator) Decisions() *DecisionStore {
	return c.decisions
}

// EvaluateAccess evaluates one access attempt and returns the immutable
// decision record. Unknown entity types are a caller error; any internal
// failure along the pipeline fails closed toward deny, never open toward
// allow.
func (c *Coordinator) EvaluateAccess(ctx context.Context, req model.AccessRequest) (*model.AccessDecision, error) {
	start := c.now()

	ts, err := c.trust.Current(req.EntityID, req.EntityType, req.Context)
	if err != nil {
		if errors.Is(err, trust.ErrInvalidEntityType) {
			return nil, err
		}
		// Fail closed: score the entity as untrustworthy rather than
		// refusing to decide.
		ts = nil
	}

	ra := c.risk.Assess(req, ts)
	evalCtx := policy.NewEvalContext(req, ra, start.Hour())
	pe := c.policies.Evaluate(req, evalCtx)

	decision, reasons := c.baseline(ts, ra)

	if pe.Decision.Restrictiveness() > decision.Restrictiveness() {
		decision = pe.Decision
		reasons = append(reasons, fmt.Sprintf("policy resolution tightened decision to %s", pe.Decision))
	}

	record := &model.AccessDecision{
		ID:         ids.New(),
		Timestamp:  start,
		EntityID:   req.EntityID,
		ResourceID: req.ResourceID,
		Operation:  req.Operation,
		Decision:   decision,
		Risk:       ra,
		Policies: model.PolicyEvaluation{
			Evaluated:  pe.Evaluated,
			Matched:    pe.Matched,
			Resolution: pe.Resolution,
		},
	}
	if ts != nil {
		record.Trust = *ts
	} else {
		record.Trust = failClosedScore(req, start)
		reasons = append(reasons, "trust assessment unavailable, failing closed")
	}

	if decision == model.DecisionConditional {
		record.Conditions = c.conditions(req, pe)
	}

	record.Monitoring = monitoring(decision, ra, pe)
	record.Audit = model.DecisionAudit{
		Reasons:      reasons,
		Evidence:     evidenceRefs(record.Trust),
		Alternatives: alternatives(decision),
	}

	c.decisions.Append(record)
	if c.archive != nil {
		if err := c.archive.Save(record); err != nil {
			fmt.Fprintf(os.Stderr, "engine: failed to archive decision %s: %v\n", record.ID, err)
		}
	}

	// Hand restriction requests to the segmentation layer once the decision
	// constrains the entity.
	if decision != model.DecisionAllow {
		for _, r := range pe.Restrict {
			if err := c.segments.Restrict(ctx, r.SegmentID, req.EntityID); err != nil {
				fmt.Fprintf(os.Stderr, "engine: failed to hand off restriction to segment %s: %v\n", r.SegmentID, err)
			}
		}
	}

	if c.emitter != nil {
		c.emitter.Emit(audit.DecisionEvent{Decision: *record})
	}
	obs.DecisionsTotal.WithLabelValues(string(decision)).Inc()
	obs.EvaluationDuration.Observe(time.Since(start).Seconds())
	obs.TrackedEntities.Set(float64(c.trust.Store().Len()))

	return record, nil
}

// baseline applies the fixed trust/risk thresholds, most restrictive match
// first.
func (c *Coordinator) baseline(ts *model.TrustScore, ra model.RiskAssessment) (model.Decision, []string) {
	score := 0.0
	if ts != nil {
		score = ts.Score
	}

	switch {
	case ra.Level == model.RiskLevelCritical:
		return model.DecisionDeny, []string{fmt.Sprintf("risk level critical (score %.0f)", ra.Score)}
	case score < DenyBelow:
		return model.DecisionDeny, []string{fmt.Sprintf("trust score %.0f below deny threshold %.0f", score, DenyBelow)}
	case ra.Level == model.RiskLevelHigh:
		return model.DecisionChallenge, []string{fmt.Sprintf("risk level high (score %.0f)", ra.Score)}
	case score < ChallengeBelow:
		return model.DecisionChallenge, []string{fmt.Sprintf("trust score %.0f below challenge threshold %.0f", score, ChallengeBelow)}
	case ra.Level == model.RiskLevelMedium:
		return model.DecisionConditional, []string{fmt.Sprintf("risk level medium (score %.0f)", ra.Score)}
	case score < ConditionalBelow:
		return model.DecisionConditional, []string{fmt.Sprintf("trust score %.0f below conditional threshold %.0f", score, ConditionalBelow)}
	default:
		return model.DecisionAllow, []string{fmt.Sprintf("trust score %.0f with %s risk", score, ra.Level)}
	}
}

// conditions enumerates the outstanding requirements attached to a
// conditional decision. There is always at least one: a conditional
// decision with nothing outstanding would be an allow.
func (c *Coordinator) conditions(req model.AccessRequest, pe policy.Evaluation) []model.DecisionCondition {
	var out []model.DecisionCondition

	if pe.StepUp != nil {
		requirement := "complete step-up authentication"
		if len(pe.StepUp.Methods) > 0 {
			requirement = fmt.Sprintf("complete step-up authentication via %s", strings.Join(pe.StepUp.Methods, " or "))
		}
		out = append(out, model.DecisionCondition{
			Type:        "step_up_auth",
			Requirement: requirement,
			Status:      model.ConditionPending,
		})
	}

	if req.Context.Device == nil {
		out = append(out, model.DecisionCondition{
			Type:        "device_attestation",
			Requirement: "register device posture with the telemetry collaborator",
			Status:      model.ConditionPending,
		})
	}

	if len(out) == 0 {
		out = append(out, model.DecisionCondition{
			Type:        "reauthentication",
			Requirement: "re-authenticate before the trust score expires",
			Status:      model.ConditionPending,
		})
	}

	return out
}

func monitoring(decision model.Decision, ra model.RiskAssessment, pe policy.Evaluation) model.MonitoringRequirement {
	required := decision != model.DecisionAllow || pe.RequireMonitoring
	if !required {
		return model.MonitoringRequirement{Level: model.MonitoringStandard}
	}

	level := model.MonitoringEnhanced
	if decision == model.DecisionDeny || ra.Level == model.RiskLevelCritical {
		level = model.MonitoringMaximum
	}

	req := model.MonitoringRequirement{Required: true, Level: level}
	if pe.Monitor != nil {
		if pe.Monitor.Level == model.MonitoringMaximum {
			req.Level = model.MonitoringMaximum
		}
		req.Duration = pe.Monitor.Duration
	}
	return req
}

func evidenceRefs(ts model.TrustScore) []string {
	var refs []string
	for _, f := range ts.Factors {
		refs = append(refs, f.Evidence...)
	}
	return refs
}

// alternatives records the decisions that were considered and rejected, for
// audit replay.
func alternatives(decision model.Decision) []string {
	all := []model.Decision{model.DecisionAllow, model.DecisionConditional, model.DecisionChallenge, model.DecisionDeny}
	var out []string
	for _, d := range all {
		if d != decision {
			out = append(out, string(d))
		}
	}
	return out
}

// failClosedScore is the trust snapshot recorded when no assessment could
// be obtained: minimum score, critical level.
func failClosedScore(req model.AccessRequest, now time.Time) model.TrustScore {
	return model.TrustScore{
		EntityID:   req.EntityID,
		EntityType: req.EntityType,
		Score:      model.ScoreMin,
		Level:      model.RiskLevelCritical,
		AssessedAt: now,
		ExpiresAt:  now,
		Context:    req.Context,
	}
}

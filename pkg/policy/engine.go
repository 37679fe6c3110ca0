package policy

import (
	"sort"

	"github.com/perimetra/ztcore/pkg/model"
)

// ResolutionMostRestrictive is the only conflict-resolution strategy the
// engine implements. Conflicts between matched policies are an internal
// condition, resolved here, never surfaced as a failure.
const ResolutionMostRestrictive = "most_restrictive"

// Evaluation is the outcome of matching a request against the policy table.
type Evaluation struct {
	Evaluated  []string
	Matched    []string
	Resolution string

	// Decision is the floor implied by the matched policies' actions. It can
	// tighten the coordinator's baseline decision, never loosen it.
	// DecisionAllow when no policy constrains the request.
	Decision model.Decision

	// RequireMonitoring is set when any matched policy carries a monitor
	// action; Monitor holds the strictest requested parameters.
	RequireMonitoring bool
	Monitor           *MonitorParams

	// StepUp is set when the winning policy demands step-up authentication.
	StepUp *StepUpParams

	// Restrict collects restrict actions from all matched policies; each is
	// handed to the segmentation layer.
	Restrict []RestrictParams
}

// Engine matches requests against the policy table.
type Engine struct {
	store *Store
}

// NewEngine creates a policy engine over a store.
func NewEngine(store *Store) *Engine {
	return &Engine{store: store}
}

// Store exposes the underlying policy store.
func (e *Engine) Store() *Store {
	return e.store
}

// Evaluate matches every enabled policy against the request. A policy
// matches when each of its non-empty scope dimensions intersects the
// request and every condition holds. Conflicting action sets resolve
// most-restrictive-wins; among equally restrictive policies the lower
// priority number wins the tie and contributes its action parameters.
func (e *Engine) Evaluate(req model.AccessRequest, ctx EvalContext) Evaluation {
	policies := e.store.List()
	sort.SliceStable(policies, func(i, j int) bool {
		return policies[i].Priority < policies[j].Priority
	})

	eval := Evaluation{
		Evaluated:  make([]string, 0, len(policies)),
		Resolution: ResolutionMostRestrictive,
		Decision:   model.DecisionAllow,
	}

	var winner *Policy
	for i := range policies {
		p := &policies[i]
		if !p.Enabled {
			continue
		}
		eval.Evaluated = append(eval.Evaluated, p.ID)

		if !p.Matches(req, ctx) {
			continue
		}
		eval.Matched = append(eval.Matched, p.ID)

		decision := p.decisionFloor()
		// Policies are sorted by priority, so a later policy only replaces
		// the winner by being strictly more restrictive.
		if winner == nil || decision.Restrictiveness() > eval.Decision.Restrictiveness() {
			winner = p
			eval.Decision = decision
		}

		for _, a := range p.Actions {
			switch a.Type {
			case ActionMonitor:
				eval.RequireMonitoring = true
				if m := a.Monitor; m != nil && (eval.Monitor == nil || stricter(m.Level, eval.Monitor.Level)) {
					eval.Monitor = m
				}
			case ActionRestrict:
				if a.Restrict != nil {
					eval.Restrict = append(eval.Restrict, *a.Restrict)
				}
			}
		}
	}

	if winner != nil {
		for _, a := range winner.Actions {
			if a.Type == ActionStepUp {
				eval.StepUp = a.StepUp
				if eval.StepUp == nil {
					eval.StepUp = &StepUpParams{}
				}
			}
		}
	}

	return eval
}

// decisionFloor maps a policy's action set to the most restrictive decision
// it demands. Monitor and restrict actions do not constrain the decision
// itself; they attach obligations to it.
func (p *Policy) decisionFloor() model.Decision {
	floor := model.DecisionAllow
	for _, a := range p.Actions {
		var d model.Decision
		switch a.Type {
		case ActionDeny:
			d = model.DecisionDeny
		case ActionChallenge, ActionStepUp:
			d = model.DecisionChallenge
		default:
			continue
		}
		floor = model.MostRestrictive(floor, d)
	}
	return floor
}

// Matches reports whether the policy's scope and conditions accept the
// request.
func (p *Policy) Matches(req model.AccessRequest, ctx EvalContext) bool {
	if !p.Scope.Matches(req) {
		return false
	}
	for _, c := range p.Conditions {
		if !c.Holds(ctx) {
			return false
		}
	}
	return true
}

// Matches reports whether every non-empty scope dimension intersects the
// request's attributes. Empty dimensions are wildcards.
func (s Scope) Matches(req model.AccessRequest) bool {
	if !dimensionMatch(s.Users, userAttrs(req)) {
		return false
	}
	if !dimensionMatch(s.Groups, req.Groups) {
		return false
	}
	if !dimensionMatch(s.Services, serviceAttrs(req)) {
		return false
	}
	if !dimensionMatch(s.Resources, []string{req.ResourceID, req.ResourceType}) {
		return false
	}
	return dimensionMatch(s.Networks, networkAttrs(req))
}

func userAttrs(req model.AccessRequest) []string {
	if req.EntityType == model.EntityTypeUser {
		return []string{req.EntityID}
	}
	return nil
}

func serviceAttrs(req model.AccessRequest) []string {
	if req.EntityType == model.EntityTypeService || req.EntityType == model.EntityTypeApplication {
		return []string{req.EntityID}
	}
	return nil
}

func networkAttrs(req model.AccessRequest) []string {
	attrs := append([]string(nil), req.Networks...)
	if n := req.Context.Network; n != nil {
		attrs = append(attrs, string(n.Zone))
		if n.Segment != "" {
			attrs = append(attrs, n.Segment)
		}
	}
	return attrs
}

func dimensionMatch(scope, attrs []string) bool {
	if len(scope) == 0 {
		return true
	}
	for _, s := range scope {
		if s == "*" {
			return true
		}
		for _, a := range attrs {
			if s == a {
				return true
			}
		}
	}
	return false
}

func stricter(a, b model.MonitoringLevel) bool {
	rank := map[model.MonitoringLevel]int{
		model.MonitoringStandard: 0,
		model.MonitoringEnhanced: 1,
		model.MonitoringMaximum:  2,
	}
	return rank[a] > rank[b]
}

package policy

import (
	"time"

	"github.com/perimetra/ztcore/pkg/model"
)

// ConditionType selects which request attribute a condition evaluates.
type ConditionType string

const (
	ConditionIdentity ConditionType = "identity"
	ConditionDevice   ConditionType = "device"
	ConditionLocation ConditionType = "location"
	ConditionTime     ConditionType = "time"
	ConditionRisk     ConditionType = "risk"
	ConditionBehavior ConditionType = "behavior"
)

// Operator compares a request attribute against a condition value.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpInRange     Operator = "in_range"
)

// Condition is one weighted precondition of a policy. Conditions gate
// all-or-nothing: a policy matches only when every condition holds. The
// weight is provenance for conflict scoring, not partial credit.
type Condition struct {
	Type     ConditionType `yaml:"type" json:"type"`
	Operator Operator      `yaml:"operator" json:"operator"`
	Value    any           `yaml:"value" json:"value"`
	Weight   float64       `yaml:"weight" json:"weight"`
}

// ActionType is the kind of action a policy requires.
type ActionType string

const (
	ActionAllow     ActionType = "allow"
	ActionDeny      ActionType = "deny"
	ActionChallenge ActionType = "challenge"
	ActionStepUp    ActionType = "step_up_auth"
	ActionMonitor   ActionType = "monitor"
	ActionRestrict  ActionType = "restrict"
)

// StepUpParams parameterize a step_up_auth action.
type StepUpParams struct {
	Methods []string      `yaml:"methods,omitempty" json:"methods,omitempty"`
	TTL     time.Duration `yaml:"ttl,omitempty" json:"ttl,omitempty"`
}

// ChallengeParams parameterize a challenge action.
type ChallengeParams struct {
	Method string `yaml:"method,omitempty" json:"method,omitempty"`
}

// MonitorParams parameterize a monitor action.
type MonitorParams struct {
	Level    model.MonitoringLevel `yaml:"level,omitempty" json:"level,omitempty"`
	Duration time.Duration         `yaml:"duration,omitempty" json:"duration,omitempty"`
}

// RestrictParams parameterize a restrict action. SegmentID references a
// micro-segment by id; segments are referenced, never embedded.
type RestrictParams struct {
	SegmentID string `yaml:"segment_id" json:"segment_id"`
}

// Action is one required action of a policy. Parameters are closed records
// per action kind; only the block matching Type may be set.
type Action struct {
	Type      ActionType `yaml:"type" json:"type"`
	Automatic bool       `yaml:"automatic" json:"automatic"`

	StepUp    *StepUpParams    `yaml:"step_up,omitempty" json:"step_up,omitempty"`
	Challenge *ChallengeParams `yaml:"challenge,omitempty" json:"challenge,omitempty"`
	Monitor   *MonitorParams   `yaml:"monitor,omitempty" json:"monitor,omitempty"`
	Restrict  *RestrictParams  `yaml:"restrict,omitempty" json:"restrict,omitempty"`
}

// Scope bounds which requests a policy applies to. An empty dimension is a
// wildcard: it matches every value on that dimension.
type Scope struct {
	Users     []string `yaml:"users,omitempty" json:"users,omitempty"`
	Groups    []string `yaml:"groups,omitempty" json:"groups,omitempty"`
	Services  []string `yaml:"services,omitempty" json:"services,omitempty"`
	Resources []string `yaml:"resources,omitempty" json:"resources,omitempty"`
	Networks  []string `yaml:"networks,omitempty" json:"networks,omitempty"`
}

// Policy is a named zero-trust rule mapping a scope and conditions to
// required actions. Policies are immutable once matched against a request;
// decisions reference policy ids, not copies. Lower Priority evaluates
// first and wins ties.
type Policy struct {
	ID         string      `yaml:"id,omitempty" json:"id"`
	Name       string      `yaml:"name" json:"name"`
	Enabled    bool        `yaml:"enabled" json:"enabled"`
	Priority   int         `yaml:"priority" json:"priority"`
	Scope      Scope       `yaml:"scope,omitempty" json:"scope"`
	Conditions []Condition `yaml:"conditions,omitempty" json:"conditions,omitempty"`
	Actions    []Action    `yaml:"actions" json:"actions"`
	Compliance []string    `yaml:"compliance,omitempty" json:"compliance,omitempty"`
}

package policy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/perimetra/ztcore/pkg/model"
)

// EvalContext is the flattened view of a request that conditions evaluate
// against.
type EvalContext struct {
	Identity string  // identity status
	Device   string  // device posture label
	Location string  // location name
	Hour     int     // hour of day, 0-23
	Risk     float64 // request risk score
	Behavior float64 // behavioral deviation score
}

// NewEvalContext flattens a request and its risk assessment into condition
// attributes.
func NewEvalContext(req model.AccessRequest, ra model.RiskAssessment, hour int) EvalContext {
	ctx := EvalContext{
		Identity: string(req.Context.Identity),
		Device:   devicePosture(req.Context.Device),
		Hour:     hour,
		Risk:     ra.Score,
	}
	if req.Context.Location != nil {
		ctx.Location = req.Context.Location.Name
	}
	if req.Context.Behavior != nil {
		ctx.Behavior = req.Context.Behavior.DeviationScore
	}
	return ctx
}

func devicePosture(d *model.DeviceEvidence) string {
	switch {
	case d == nil:
		return "unknown"
	case d.Managed && d.Compliant:
		return "managed_compliant"
	case d.Managed:
		return "managed_noncompliant"
	default:
		return "unmanaged"
	}
}

// Holds reports whether the condition evaluates true against the context.
// Unknown condition types or operators evaluate false: a policy must never
// match on a gate the engine cannot interpret.
func (c Condition) Holds(ctx EvalContext) bool {
	switch c.Type {
	case ConditionIdentity:
		return evalString(c.Operator, ctx.Identity, c.Value)
	case ConditionDevice:
		return evalString(c.Operator, ctx.Device, c.Value)
	case ConditionLocation:
		return evalString(c.Operator, ctx.Location, c.Value)
	case ConditionTime:
		return evalNumeric(c.Operator, float64(ctx.Hour), c.Value)
	case ConditionRisk:
		return evalNumeric(c.Operator, ctx.Risk, c.Value)
	case ConditionBehavior:
		return evalNumeric(c.Operator, ctx.Behavior, c.Value)
	default:
		return false
	}
}

func evalString(op Operator, attr string, value any) bool {
	switch op {
	case OpEquals:
		return attr == asString(value)
	case OpNotEquals:
		return attr != asString(value)
	case OpContains:
		if list, ok := value.([]any); ok {
			for _, v := range list {
				if attr == asString(v) {
					return true
				}
			}
			return false
		}
		return strings.Contains(attr, asString(value))
	default:
		// String attributes support no ordering.
		return false
	}
}

func evalNumeric(op Operator, attr float64, value any) bool {
	switch op {
	case OpEquals:
		v, ok := asFloat(value)
		return ok && attr == v
	case OpNotEquals:
		v, ok := asFloat(value)
		return ok && attr != v
	case OpGreaterThan:
		v, ok := asFloat(value)
		return ok && attr > v
	case OpLessThan:
		v, ok := asFloat(value)
		return ok && attr < v
	case OpInRange:
		lo, hi, ok := asRange(value)
		return ok && attr >= lo && attr <= hi
	default:
		return false
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asRange(v any) (lo, hi float64, ok bool) {
	list, isList := v.([]any)
	if !isList || len(list) != 2 {
		return 0, 0, false
	}
	lo, okLo := asFloat(list[0])
	hi, okHi := asFloat(list[1])
	return lo, hi, okLo && okHi
}

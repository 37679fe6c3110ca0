package trust

import (
	"fmt"

	"github.com/perimetra/ztcore/pkg/model"
)

// Weights set the maximum magnitude of each factor's contribution. The sum
// of all weights stays within the half-range of the score scale so the
// aggregate cannot leave [0,100] before clamping does its job. The defaults
// are illustrative, not contractual; deployments tune them via config.
type Weights struct {
	Identity float64 `yaml:"identity" json:"identity"`
	Device   float64 `yaml:"device" json:"device"`
	Location float64 `yaml:"location" json:"location"`
	Behavior float64 `yaml:"behavior" json:"behavior"`
	Network  float64 `yaml:"network" json:"network"`
}

// DefaultWeights returns the standard factor weights.
func DefaultWeights() Weights {
	return Weights{
		Identity: 20,
		Device:   20,
		Location: 15,
		Behavior: 15,
		Network:  10,
	}
}

// Each assessor is a pure function of the evidence record. A nil return
// means the evidence for that factor was not supplied and the factor is
// omitted from the score entirely.

func assessIdentity(ev model.Evidence, w Weights) *model.TrustFactor {
	if ev.Identity == "" {
		return nil
	}

	var contribution float64
	var ref string
	switch ev.Identity {
	case model.IdentityVerified:
		contribution = w.Identity
		ref = "identity verified by session layer"
	case model.IdentityPartial:
		contribution = w.Identity * 0.25
		ref = "identity partially verified"
	default:
		// Unknown statuses count as unverified.
		contribution = -w.Identity
		ref = fmt.Sprintf("identity status %q", ev.Identity)
	}

	return &model.TrustFactor{
		Name:         "identity",
		Contribution: contribution,
		Weight:       w.Identity,
		Evidence:     []string{ref},
	}
}

func assessDevice(ev model.Evidence, w Weights) *model.TrustFactor {
	d := ev.Device
	if d == nil {
		return nil
	}

	var contribution float64
	var ref string
	switch {
	case d.DeviceID == "":
		contribution = -w.Device * 0.5
		ref = "device reported without identifier"
	case d.Managed && d.Compliant && d.Healthy:
		contribution = w.Device
		ref = fmt.Sprintf("device %s managed, compliant and healthy", d.DeviceID)
	case d.Managed && d.Compliant:
		contribution = w.Device * 0.5
		ref = fmt.Sprintf("device %s managed and compliant, health degraded", d.DeviceID)
	case d.Managed:
		contribution = -w.Device * 0.25
		ref = fmt.Sprintf("device %s managed but noncompliant", d.DeviceID)
	default:
		contribution = -w.Device * 0.75
		ref = fmt.Sprintf("device %s unmanaged", d.DeviceID)
	}

	return &model.TrustFactor{
		Name:         "device",
		Contribution: contribution,
		Weight:       w.Device,
		Evidence:     []string{ref},
	}
}

func assessLocation(ev model.Evidence, w Weights) *model.TrustFactor {
	l := ev.Location
	if l == nil {
		return nil
	}

	var contribution float64
	var ref string
	switch {
	case l.Name == "":
		contribution = -w.Location * 0.25
		ref = "location unknown"
	case l.Approved:
		contribution = w.Location
		ref = fmt.Sprintf("approved location %s", l.Name)
	default:
		contribution = -w.Location
		ref = fmt.Sprintf("unapproved location %s", l.Name)
	}

	return &model.TrustFactor{
		Name:         "location",
		Contribution: contribution,
		Weight:       w.Location,
		Evidence:     []string{ref},
	}
}

func assessBehavior(ev model.Evidence, w Weights) *model.TrustFactor {
	b := ev.Behavior
	if b == nil {
		return nil
	}

	if !b.HasBaseline {
		// A missing baseline is neither trust nor distrust, but it is
		// recorded so the provenance shows behavior was considered.
		return &model.TrustFactor{
			Name:     "behavior",
			Weight:   w.Behavior,
			Evidence: []string{"no behavioral baseline established"},
		}
	}

	deviation := b.DeviationScore
	if deviation < 0 {
		deviation = 0
	}
	if deviation > 1 {
		deviation = 1
	}

	// Deviation 0 matches the baseline (+weight), deviation 1 is a full
	// departure (-weight).
	contribution := w.Behavior * (1 - 2*deviation)

	return &model.TrustFactor{
		Name:         "behavior",
		Contribution: contribution,
		Weight:       w.Behavior,
		Evidence:     []string{fmt.Sprintf("baseline deviation %.2f", b.DeviationScore)},
	}
}

func assessNetwork(ev model.Evidence, w Weights) *model.TrustFactor {
	n := ev.Network
	if n == nil {
		return nil
	}

	var contribution float64
	var ref string
	switch n.Zone {
	case model.NetworkInternal:
		contribution = w.Network
		ref = "internal network"
	case model.NetworkExternal:
		contribution = -w.Network * 0.5
		ref = "external network"
	default:
		contribution = -w.Network
		ref = fmt.Sprintf("untrusted network segment %s", n.Segment)
	}

	return &model.TrustFactor{
		Name:         "network",
		Contribution: contribution,
		Weight:       w.Network,
		Evidence:     []string{ref},
	}
}

// Assess runs every factor assessor against the evidence and returns the
// applicable contributions in a fixed order.
func Assess(ev model.Evidence, w Weights) []model.TrustFactor {
	assessors := []func(model.Evidence, Weights) *model.TrustFactor{
		assessIdentity,
		assessDevice,
		assessLocation,
		assessBehavior,
		assessNetwork,
	}

	var factors []model.TrustFactor
	for _, assess := range assessors {
		if f := assess(ev, w); f != nil {
			factors = append(factors, *f)
		}
	}
	return factors
}

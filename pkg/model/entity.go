package model

//go:generate go run github.com/dmarkham/enumer -type EntityType -trimprefix EntityType -transform lower -json -text -output entitytype.gen.go

// EntityType classifies the subject of a trust assessment.
type EntityType int

const (
	EntityTypeUser EntityType = iota
	EntityTypeService
	EntityTypeDevice
	EntityTypeApplication
)

// IdentityStatus is the pre-verified identity fact reported by the
// identity/session collaborator. Token verification happens there, not here.
type IdentityStatus string

const (
	IdentityVerified   IdentityStatus = "verified"
	IdentityPartial    IdentityStatus = "partial"
	IdentityUnverified IdentityStatus = "unverified"
)

// NetworkZone classifies the network origin of a request.
type NetworkZone string

const (
	NetworkInternal  NetworkZone = "internal"
	NetworkExternal  NetworkZone = "external"
	NetworkUntrusted NetworkZone = "untrusted"
)

// DeviceEvidence is the device posture reported by the telemetry collaborator.
type DeviceEvidence struct {
	DeviceID  string `json:"device_id" yaml:"device_id"`
	Managed   bool   `json:"managed" yaml:"managed"`
	Compliant bool   `json:"compliant" yaml:"compliant"`
	Healthy   bool   `json:"healthy" yaml:"healthy"`
}

// LocationEvidence describes where the entity appears to be connecting from.
type LocationEvidence struct {
	Name     string `json:"name" yaml:"name"`
	Approved bool   `json:"approved" yaml:"approved"`
}

// BehaviorEvidence carries the output of the behavior-analysis collaborator.
// DeviationScore is 0 when the entity matches its established baseline and
// grows with deviation; HasBaseline is false while no baseline exists yet.
type BehaviorEvidence struct {
	HasBaseline    bool    `json:"has_baseline" yaml:"has_baseline"`
	DeviationScore float64 `json:"deviation_score" yaml:"deviation_score"`
}

// NetworkEvidence describes the network segment the request arrived from.
type NetworkEvidence struct {
	Zone    NetworkZone `json:"zone" yaml:"zone"`
	Segment string      `json:"segment,omitempty" yaml:"segment,omitempty"`
}

// Evidence is the context snapshot a trust assessment is computed from.
// A nil pointer means the corresponding evidence was not supplied; the
// matching factor is then omitted from the score entirely. Absence is not
// evidence of distrust.
type Evidence struct {
	Identity  IdentityStatus    `json:"identity,omitempty" yaml:"identity,omitempty"`
	Device    *DeviceEvidence   `json:"device,omitempty" yaml:"device,omitempty"`
	Location  *LocationEvidence `json:"location,omitempty" yaml:"location,omitempty"`
	Behavior  *BehaviorEvidence `json:"behavior,omitempty" yaml:"behavior,omitempty"`
	Network   *NetworkEvidence  `json:"network,omitempty" yaml:"network,omitempty"`
	TimeOfDay string            `json:"time_of_day,omitempty" yaml:"time_of_day,omitempty"`
}

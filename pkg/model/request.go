package model

// AccessRequest describes one access attempt to be evaluated. The entity
// identity and type come from the identity/session collaborator; evidence
// comes from the device/telemetry and network collaborators.
type AccessRequest struct {
	EntityID   string     `json:"entity_id"`
	EntityType EntityType `json:"entity_type"`

	ResourceID   string `json:"resource_id"`
	ResourceType string `json:"resource_type,omitempty"`
	Operation    string `json:"operation"`

	// Groups and Networks widen policy scope matching beyond the entity id.
	Groups   []string `json:"groups,omitempty"`
	Networks []string `json:"networks,omitempty"`

	Context Evidence `json:"context"`
}

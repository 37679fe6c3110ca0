package segment

import (
	"context"
	"log"

	"github.com/perimetra/ztcore/pkg/model"
)

// LogEnforcer is the default enforcement collaborator: it records hand-offs
// without programming any network layer. Real deployments register
// per-type enforcers that talk to their firewall, mesh, or data gateway.
type LogEnforcer struct{}

// Apply logs the segment hand-off.
func (LogEnforcer) Apply(_ context.Context, seg model.MicroSegment) error {
	log.Printf("segment %s (%s/%s) handed to enforcement", seg.ID, seg.Type, seg.Name)
	return nil
}

// Restrict logs the restriction hand-off.
func (LogEnforcer) Restrict(_ context.Context, segmentID, entityID string) error {
	log.Printf("restriction for entity %s in segment %s handed to enforcement", entityID, segmentID)
	return nil
}

// DefaultEnforcers wires the log enforcer for every segment type.
func DefaultEnforcers() map[model.SegmentType]Enforcer {
	enf := LogEnforcer{}
	return map[model.SegmentType]Enforcer{
		model.SegmentNetwork:     enf,
		model.SegmentApplication: enf,
		model.SegmentData:        enf,
		model.SegmentUser:        enf,
		model.SegmentService:     enf,
	}
}

// Package segment stores named micro-segmentation boundaries and hands
// validated segments to the enforcement layer. The engine only computes and
// emits segmentation rules; applying them to the network is the enforcement
// collaborator's job.
package segment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/perimetra/ztcore/pkg/model"
)

// ErrInvalidSegmentConfig is returned when the boundary block for the
// declared segment type is missing or empty. The segment is rejected before
// any enforcement hand-off.
var ErrInvalidSegmentConfig = errors.New("invalid segment configuration")

// ErrSegmentNotFound is returned when a referenced segment does not exist.
var ErrSegmentNotFound = errors.New("segment not found")

// Enforcer applies a segment descriptor to its enforcement layer. The
// manager does not verify successful application, only that the descriptor
// was handed off.
type Enforcer interface {
	// Apply installs a newly created segment.
	Apply(ctx context.Context, seg model.MicroSegment) error
	// Restrict tightens traffic for one entity inside a segment.
	Restrict(ctx context.Context, segmentID, entityID string) error
}

// Manager validates, stores, and hands off micro-segments. Segment
// identifiers are never reused; the store only grows by creation.
type Manager struct {
	mu        sync.RWMutex
	segments  map[string]model.MicroSegment
	order     []string
	enforcers map[model.SegmentType]Enforcer
	now       func() time.Time
}

// NewManager creates a segment manager. Segment types without a registered
// enforcer skip the enforcement hand-off; the segment is still validated and
// stored.
func NewManager(enforcers map[model.SegmentType]Enforcer) *Manager {
	if enforcers == nil {
		enforcers = map[model.SegmentType]Enforcer{}
	}
	return &Manager{
		segments:  make(map[string]model.MicroSegment),
		enforcers: enforcers,
		now:       time.Now,
	}
}

// Create validates the segment configuration, stores it, and hands it to
// the enforcement collaborator for its type. A hand-off failure is reported
// to the caller inside the returned segment's lifecycle but does not undo
// creation; the enforcement layer is a downstream sink, not a gatekeeper.
func (m *Manager) Create(ctx context.Context, seg model.MicroSegment) (model.MicroSegment, error) {
	if err := Validate(seg); err != nil {
		return model.MicroSegment{}, err
	}

	seg.ID = uuid.NewString()
	seg.CreatedAt = m.now()

	m.mu.Lock()
	m.segments[seg.ID] = seg
	m.order = append(m.order, seg.ID)
	m.mu.Unlock()

	if enf := m.enforcer(seg.Type); enf != nil {
		// Fire and forget: enforcement unavailability never fails creation.
		_ = enf.Apply(ctx, seg)
	}

	return seg, nil
}

// Restrict asks the enforcement layer to tighten traffic for an entity
// inside a segment.
func (m *Manager) Restrict(ctx context.Context, segmentID, entityID string) error {
	m.mu.RLock()
	seg, ok := m.segments[segmentID]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSegmentNotFound, segmentID)
	}

	if enf := m.enforcer(seg.Type); enf != nil {
		return enf.Restrict(ctx, segmentID, entityID)
	}
	return nil
}

// Get returns an immutable snapshot of one segment.
func (m *Manager) Get(id string) (model.MicroSegment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seg, ok := m.segments[id]
	if !ok {
		return model.MicroSegment{}, fmt.Errorf("%w: %s", ErrSegmentNotFound, id)
	}
	return seg, nil
}

// List returns snapshots of all segments in creation order.
func (m *Manager) List() []model.MicroSegment {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.MicroSegment, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.segments[id])
	}
	return out
}

// Len returns the number of stored segments.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.segments)
}

func (m *Manager) enforcer(t model.SegmentType) Enforcer {
	if enf, ok := m.enforcers[t]; ok {
		return enf
	}
	return nil
}

// Validate checks that the boundary block matching the declared type is
// populated. The reason string identifies the missing field.
func Validate(seg model.MicroSegment) error {
	if seg.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSegmentConfig)
	}

	b := seg.Boundaries
	switch seg.Type {
	case model.SegmentNetwork:
		if b.Network == nil || (len(b.Network.Subnets) == 0 && len(b.Network.VLANs) == 0 && len(b.Network.Ports) == 0) {
			return fmt.Errorf("%w: network segment %q requires a populated boundaries.network block", ErrInvalidSegmentConfig, seg.Name)
		}
	case model.SegmentApplication:
		if b.Application == nil || (len(b.Application.Services) == 0 && len(b.Application.Endpoints) == 0 && len(b.Application.Namespaces) == 0) {
			return fmt.Errorf("%w: application segment %q requires a populated boundaries.application block", ErrInvalidSegmentConfig, seg.Name)
		}
	case model.SegmentData:
		if b.Data == nil || (len(b.Data.Classifications) == 0 && len(b.Data.Stores) == 0) {
			return fmt.Errorf("%w: data segment %q requires a populated boundaries.data block", ErrInvalidSegmentConfig, seg.Name)
		}
	case model.SegmentUser:
		if b.User == nil || (len(b.User.Groups) == 0 && len(b.User.Roles) == 0) {
			return fmt.Errorf("%w: user segment %q requires a populated boundaries.user block", ErrInvalidSegmentConfig, seg.Name)
		}
	case model.SegmentService:
		if b.Service == nil || (len(b.Service.Names) == 0 && len(b.Service.Accounts) == 0) {
			return fmt.Errorf("%w: service segment %q requires a populated boundaries.service block", ErrInvalidSegmentConfig, seg.Name)
		}
	default:
		return fmt.Errorf("%w: unknown segment type %q", ErrInvalidSegmentConfig, seg.Type)
	}

	return nil
}

package segment

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perimetra/ztcore/pkg/model"
)

// recordingEnforcer captures hand-offs for assertions.
type recordingEnforcer struct {
	mu         sync.Mutex
	applied    []string
	restricted []string
}

func (r *recordingEnforcer) Apply(_ context.Context, seg model.MicroSegment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, seg.Name)
	return nil
}

func (r *recordingEnforcer) Restrict(_ context.Context, segmentID, entityID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restricted = append(r.restricted, segmentID+"/"+entityID)
	return nil
}

func networkSegment(name string) model.MicroSegment {
	return model.MicroSegment{
		Name: name,
		Type: model.SegmentNetwork,
		Boundaries: model.SegmentBoundaries{
			Network: &model.NetworkBoundary{Subnets: []string{"10.0.1.0/24"}},
		},
	}
}

func TestCreateAssignsIDAndHandsOff(t *testing.T) {
	enforcer := &recordingEnforcer{}
	manager := NewManager(map[model.SegmentType]Enforcer{model.SegmentNetwork: enforcer})

	created, err := manager.Create(context.Background(), networkSegment("db-tier"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, []string{"db-tier"}, enforcer.applied)

	got, err := manager.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "db-tier", got.Name)
}

func TestCreateRejectsEmptyBoundaries(t *testing.T) {
	enforcer := &recordingEnforcer{}
	manager := NewManager(map[model.SegmentType]Enforcer{model.SegmentNetwork: enforcer})

	// Declared network type with an empty network boundary block: rejected
	// before any enforcement hand-off, nothing stored.
	seg := model.MicroSegment{
		Name:       "empty-net",
		Type:       model.SegmentNetwork,
		Boundaries: model.SegmentBoundaries{Network: &model.NetworkBoundary{}},
	}

	_, err := manager.Create(context.Background(), seg)
	assert.ErrorIs(t, err, ErrInvalidSegmentConfig)
	assert.Zero(t, manager.Len())
	assert.Empty(t, enforcer.applied)
}

func TestValidatePerType(t *testing.T) {
	tests := []struct {
		name    string
		seg     model.MicroSegment
		wantErr bool
	}{
		{
			name:    "network with subnets",
			seg:     networkSegment("net"),
			wantErr: false,
		},
		{
			name: "application with services",
			seg: model.MicroSegment{
				Name: "app", Type: model.SegmentApplication,
				Boundaries: model.SegmentBoundaries{Application: &model.ApplicationBoundary{Services: []string{"billing"}}},
			},
			wantErr: false,
		},
		{
			name: "data without stores or classifications",
			seg: model.MicroSegment{
				Name: "data", Type: model.SegmentData,
				Boundaries: model.SegmentBoundaries{Data: &model.DataBoundary{}},
			},
			wantErr: true,
		},
		{
			name: "user with groups",
			seg: model.MicroSegment{
				Name: "users", Type: model.SegmentUser,
				Boundaries: model.SegmentBoundaries{User: &model.UserBoundary{Groups: []string{"finance"}}},
			},
			wantErr: false,
		},
		{
			name: "service missing boundary block",
			seg: model.MicroSegment{
				Name: "svc", Type: model.SegmentService,
			},
			wantErr: true,
		},
		{
			name: "mismatched boundary block",
			seg: model.MicroSegment{
				Name: "mismatch", Type: model.SegmentNetwork,
				Boundaries: model.SegmentBoundaries{User: &model.UserBoundary{Groups: []string{"finance"}}},
			},
			wantErr: true,
		},
		{
			name: "unknown type",
			seg: model.MicroSegment{
				Name: "odd", Type: model.SegmentType("cosmic"),
			},
			wantErr: true,
		},
		{
			name:    "missing name",
			seg:     model.MicroSegment{Type: model.SegmentNetwork},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.seg)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSegmentConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRestrict(t *testing.T) {
	enforcer := &recordingEnforcer{}
	manager := NewManager(map[model.SegmentType]Enforcer{model.SegmentNetwork: enforcer})

	created, err := manager.Create(context.Background(), networkSegment("db-tier"))
	require.NoError(t, err)

	require.NoError(t, manager.Restrict(context.Background(), created.ID, "alice"))
	assert.Equal(t, []string{created.ID + "/alice"}, enforcer.restricted)

	assert.ErrorIs(t, manager.Restrict(context.Background(), "missing", "alice"), ErrSegmentNotFound)
}

func TestListPreservesCreationOrder(t *testing.T) {
	manager := NewManager(nil)

	for _, name := range []string{"first", "second", "third"} {
		_, err := manager.Create(context.Background(), networkSegment(name))
		require.NoError(t, err)
	}

	segments := manager.List()
	require.Len(t, segments, 3)
	assert.Equal(t, "first", segments[0].Name)
	assert.Equal(t, "third", segments[2].Name)
}

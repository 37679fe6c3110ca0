package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAddValidates(t *testing.T) {
	store := NewStore()

	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{
			name:    "valid policy gets an id",
			policy:  Policy{Name: "p1", Enabled: true, Actions: []Action{{Type: ActionAllow}}},
			wantErr: false,
		},
		{
			name:    "missing name",
			policy:  Policy{Actions: []Action{{Type: ActionAllow}}},
			wantErr: true,
		},
		{
			name:    "no actions",
			policy:  Policy{Name: "p2"},
			wantErr: true,
		},
		{
			name:    "unknown action type",
			policy:  Policy{Name: "p3", Actions: []Action{{Type: ActionType("teleport")}}},
			wantErr: true,
		},
		{
			name:    "restrict without segment",
			policy:  Policy{Name: "p4", Actions: []Action{{Type: ActionRestrict}}},
			wantErr: true,
		},
		{
			name: "unknown operator",
			policy: Policy{
				Name:       "p5",
				Conditions: []Condition{{Type: ConditionRisk, Operator: Operator("sorta")}},
				Actions:    []Action{{Type: ActionAllow}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Add(tt.policy)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPolicy)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, got.ID)
		})
	}
}

func TestStoreReplaceKeepsOldTableOnFailure(t *testing.T) {
	store := NewStore()
	_, err := store.Add(Policy{Name: "keep-me", Actions: []Action{{Type: ActionAllow}}})
	require.NoError(t, err)

	err = store.Replace([]Policy{
		{Name: "ok", Actions: []Action{{Type: ActionAllow}}},
		{Name: ""}, // invalid
	})
	require.ErrorIs(t, err, ErrInvalidPolicy)

	policies := store.List()
	require.Len(t, policies, 1)
	assert.Equal(t, "keep-me", policies[0].Name)
}

func TestStoreLoadFile(t *testing.T) {
	content := `policies:
  - name: deny-untrusted-networks
    enabled: true
    priority: 10
    scope:
      networks: [untrusted]
    actions:
      - type: deny
  - name: challenge-high-risk
    enabled: true
    priority: 20
    conditions:
      - type: risk
        operator: greater_than
        value: 60
    actions:
      - type: step_up_auth
        step_up:
          methods: [totp, webauthn]
`
	path := filepath.Join(t.TempDir(), "policies.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	store := NewStore()
	n, err := store.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, store.Len())

	for _, p := range store.List() {
		assert.NotEmpty(t, p.ID)
	}
}

func TestStoreLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies.yml")
	require.NoError(t, os.WriteFile(path, []byte("policies:\n  - name: broken\n"), 0o600))

	store := NewStore()
	_, err := store.LoadFile(path)
	assert.ErrorIs(t, err, ErrInvalidPolicy)
	assert.Zero(t, store.Len())
}

package policy

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ErrInvalidPolicy is returned when a policy definition fails validation.
var ErrInvalidPolicy = errors.New("invalid policy")

// File is the on-disk policy definition format.
type File struct {
	Policies []Policy `yaml:"policies"`
}

// Store holds the policy table. Evaluations take the read lock;
// administrative loads take the write lock. Administrative changes are rare
// relative to evaluation traffic.
type Store struct {
	mu       sync.RWMutex
	policies []Policy
}

// NewStore returns an empty policy store.
func NewStore() *Store {
	return &Store{}
}

// Add validates a policy and appends it to the table, assigning an id when
// none is supplied.
func (s *Store) Add(p Policy) (Policy, error) {
	if err := validate(p); err != nil {
		return Policy{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies = append(s.policies, p)
	return p, nil
}

// Replace swaps the whole policy table. Used by file loads and hot reloads;
// all policies must validate or the previous table stays in place.
func (s *Store) Replace(policies []Policy) error {
	for i := range policies {
		if err := validate(policies[i]); err != nil {
			return err
		}
		if policies[i].ID == "" {
			policies[i].ID = uuid.NewString()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies = policies
	return nil
}

// List returns a snapshot of the policy table.
func (s *Store) List() []Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Policy, len(s.policies))
	copy(out, s.policies)
	return out
}

// Len returns the number of stored policies.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.policies)
}

// LoadFile parses a YAML policy file and replaces the table with its
// contents.
func (s *Store) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read policy file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("failed to parse policy file: %w", err)
	}

	if err := s.Replace(file.Policies); err != nil {
		return 0, err
	}
	return len(file.Policies), nil
}

func validate(p Policy) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPolicy)
	}
	if len(p.Actions) == 0 {
		return fmt.Errorf("%w: policy %q has no actions", ErrInvalidPolicy, p.Name)
	}

	for _, a := range p.Actions {
		switch a.Type {
		case ActionAllow, ActionDeny, ActionChallenge, ActionStepUp, ActionMonitor, ActionRestrict:
		default:
			return fmt.Errorf("%w: policy %q has unknown action type %q", ErrInvalidPolicy, p.Name, a.Type)
		}
		if a.Type == ActionRestrict && (a.Restrict == nil || a.Restrict.SegmentID == "") {
			return fmt.Errorf("%w: policy %q restrict action requires segment_id", ErrInvalidPolicy, p.Name)
		}
	}

	for _, c := range p.Conditions {
		switch c.Type {
		case ConditionIdentity, ConditionDevice, ConditionLocation, ConditionTime, ConditionRisk, ConditionBehavior:
		default:
			return fmt.Errorf("%w: policy %q has unknown condition type %q", ErrInvalidPolicy, p.Name, c.Type)
		}
		switch c.Operator {
		case OpEquals, OpNotEquals, OpContains, OpGreaterThan, OpLessThan, OpInRange:
		default:
			return fmt.Errorf("%w: policy %q has unknown operator %q", ErrInvalidPolicy, p.Name, c.Operator)
		}
	}

	return nil
}

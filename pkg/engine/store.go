package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/perimetra/ztcore/pkg/model"
)

// DecisionStore retains issued decisions for audit replay. Retention is
// bounded: each entity keeps at most historyLimit decisions and a TTL sweep
// prunes anything older than retention. Decisions are immutable once
// appended.
type DecisionStore struct {
	mu           sync.RWMutex
	byEntity     map[string][]*model.AccessDecision
	total        int
	historyLimit int
	retention    time.Duration
}

// NewDecisionStore creates a decision store. historyLimit bounds per-entity
// history; retention bounds decision age.
func NewDecisionStore(historyLimit int, retention time.Duration) *DecisionStore {
	if historyLimit <= 0 {
		historyLimit = 100
	}
	return &DecisionStore{
		byEntity:     make(map[string][]*model.AccessDecision),
		historyLimit: historyLimit,
		retention:    retention,
	}
}

// Append records a decision, evicting the entity's oldest record when the
// per-entity bound is exceeded.
func (s *DecisionStore) Append(d *model.AccessDecision) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.byEntity[d.EntityID], d)
	if len(history) > s.historyLimit {
		history = history[len(history)-s.historyLimit:]
		s.total--
	}
	s.byEntity[d.EntityID] = history
	s.total++
}

// List returns copies of all retained decisions in chronological order.
func (s *DecisionStore) List() []model.AccessDecision {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.AccessDecision, 0, s.total)
	for _, history := range s.byEntity {
		for _, d := range history {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// ListEntity returns copies of one entity's retained decisions in
// chronological order.
func (s *DecisionStore) ListEntity(entityID string) []model.AccessDecision {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.byEntity[entityID]
	out := make([]model.AccessDecision, 0, len(history))
	for _, d := range history {
		out = append(out, *d)
	}
	return out
}

// Len returns the number of retained decisions.
func (s *DecisionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Prune drops decisions older than the retention window and returns how
// many were removed. A zero retention disables the sweep.
func (s *DecisionStore) Prune(now time.Time) int {
	if s.retention <= 0 {
		return 0
	}
	cutoff := now.Add(-s.retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	pruned := 0
	for entityID, history := range s.byEntity {
		kept := history[:0]
		for _, d := range history {
			if d.Timestamp.After(cutoff) {
				kept = append(kept, d)
			} else {
				pruned++
			}
		}
		if len(kept) == 0 {
			delete(s.byEntity, entityID)
		} else {
			s.byEntity[entityID] = kept
		}
	}
	s.total -= pruned
	return pruned
}

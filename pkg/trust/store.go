package trust

import (
	"sync"

	"github.com/perimetra/ztcore/pkg/model"
)

// Store holds per-entity trust state. Writers take the per-entity mutex so
// a request-time recomputation and a background verification cycle for the
// same entity cannot interleave; readers take the table read lock only and
// receive copies.
type Store struct {
	mu      sync.RWMutex
	records map[string]*record
}

type record struct {
	// mu serializes writers for this entity.
	mu       sync.Mutex
	score    *model.TrustScore
	evidence model.Evidence
}

// NewStore returns an empty trust store.
func NewStore() *Store {
	return &Store{records: make(map[string]*record)}
}

// record returns the record for an entity, creating it when create is set.
func (s *Store) record(entityID string, create bool) *record {
	s.mu.RLock()
	rec := s.records[entityID]
	s.mu.RUnlock()
	if rec != nil || !create {
		return rec
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if rec = s.records[entityID]; rec == nil {
		rec = &record{}
		s.records[entityID] = rec
	}
	return rec
}

// Get returns a copy of the entity's current trust score. The caller is
// responsible for honoring the expiry before reusing it.
func (s *Store) Get(entityID string) (*model.TrustScore, bool) {
	rec := s.record(entityID, false)
	if rec == nil {
		return nil, false
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.score == nil {
		return nil, false
	}
	return copyScore(rec.score), true
}

// LastEvidence returns the evidence snapshot from the entity's most recent
// assessment. Verification cycles re-derive state from it.
func (s *Store) LastEvidence(entityID string) (model.Evidence, bool) {
	rec := s.record(entityID, false)
	if rec == nil {
		return model.Evidence{}, false
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.score == nil {
		return model.Evidence{}, false
	}
	return rec.evidence, true
}

// Entities returns the ids of all tracked entities.
func (s *Store) Entities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.records))
	for id := range s.records {
		out = append(out, id)
	}
	return out
}

// Len returns the number of tracked entities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func copyScore(ts *model.TrustScore) *model.TrustScore {
	out := *ts
	out.Factors = make([]model.TrustFactor, len(ts.Factors))
	copy(out.Factors, ts.Factors)
	return &out
}

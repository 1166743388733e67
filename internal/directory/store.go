package directory

import (
	"sync"

	"go.uber.org/zap"

	"github.com/avoronov/talentdir/internal/talent"
)

// Store owns the full set of candidate summary records for a browsing
// session. Records are loaded once and then only ever mutated through
// identity-keyed merges or removals, so partial hydrations arriving out of
// order cannot clobber each other.
type Store struct {
	mu         sync.RWMutex
	records    []*talent.Candidate
	byID       map[string]*talent.Candidate
	generation uint64
	logger     *zap.Logger
}

func New(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		byID:   make(map[string]*talent.Candidate),
		logger: logger,
	}
}

// ReplaceAll installs the initial candidate list. The only wholesale
// replacement allowed; everything after load goes through MergeEnrichment or
// Remove.
func (s *Store) ReplaceAll(records []*talent.Candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make([]*talent.Candidate, 0, len(records))
	s.byID = make(map[string]*talent.Candidate, len(records))
	for _, record := range records {
		if record == nil || record.ID == "" {
			continue
		}
		copied := *record
		s.records = append(s.records, &copied)
		s.byID[copied.ID] = &copied
	}
	s.generation++
}

// MergeEnrichment applies identity-keyed partials, updating only the fields
// present in each partial. Unmatched ids are ignored. The operation is
// commutative and idempotent across partials for different records.
func (s *Store) MergeEnrichment(partials []*talent.Enrichment) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := 0
	for _, partial := range partials {
		if partial == nil {
			continue
		}
		record, ok := s.byID[partial.ID]
		if !ok {
			s.logger.Debug("enrichment for unknown candidate ignored", zap.String("candidate_id", partial.ID))
			continue
		}

		if len(partial.Skills) > 0 {
			record.Skills = append([]string(nil), partial.Skills...)
		}
		if partial.Summary != "" {
			record.Summary = partial.Summary
		}
		if partial.SearchText != "" {
			record.SearchText = partial.SearchText
		}
		merged++
	}

	if merged > 0 {
		s.generation++
	}
	return merged
}

// Remove drops the record with the given id. Returns false when no such
// record exists.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return false
	}

	delete(s.byID, id)
	for idx, record := range s.records {
		if record.ID == id {
			s.records = append(s.records[:idx], s.records[idx+1:]...)
			break
		}
	}
	s.generation++
	return true
}

// Snapshot returns the current records in load order. The slice is fresh but
// the pointed-to records are shared; callers treat them as read-only.
func (s *Store) Snapshot() []*talent.Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*talent.Candidate, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) Get(id string) *talent.Candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.byID[id]
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// Generation increases on every mutation. Async completions capture it before
// suspending and compare before applying their result, so superseded work is
// recognized and recomputed instead of applied blindly.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.generation
}

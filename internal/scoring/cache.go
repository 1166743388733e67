package scoring

import (
	"sort"
	"sync"

	"github.com/avoronov/talentdir/internal/ai"
	"github.com/avoronov/talentdir/internal/talent"
)

// Cache holds score entries keyed by candidate identity. Entries persist once
// written: a newer response overwrites per id, but entries for candidates that
// later fall outside the filtered set are kept, so a temporary filter toggle
// does not lose its scores.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]ai.ScoreEntry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]ai.ScoreEntry)}
}

// Merge applies a scoring response; new entries overwrite old ones for the
// same id.
func (c *Cache) Merge(entries []ai.ScoreEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range entries {
		if entry.ID == "" {
			continue
		}
		c.entries[entry.ID] = entry
	}
}

func (c *Cache) Get(id string) (ai.ScoreEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[id]
	return entry, ok
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// SortByScore returns the records reordered by cached score descending.
// Candidates without a cached score rank below every scored one, keeping
// their original order among themselves.
func (c *Cache) SortByScore(records []*talent.Candidate) []*talent.Candidate {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*talent.Candidate, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		left, leftOK := c.entries[out[i].ID]
		right, rightOK := c.entries[out[j].ID]

		switch {
		case leftOK && rightOK:
			return left.Score > right.Score
		case leftOK:
			return true
		default:
			return false
		}
	})

	return out
}

package scoring

import (
	"testing"

	"github.com/avoronov/talentdir/internal/ai"
	"github.com/avoronov/talentdir/internal/talent"
)

func TestCacheMergeOverwritesPerID(t *testing.T) {
	cache := NewCache()

	cache.Merge([]ai.ScoreEntry{{ID: "c1", Score: 40, Reason: "first pass"}})
	cache.Merge([]ai.ScoreEntry{
		{ID: "c1", Score: 85, Reason: "second pass"},
		{ID: "", Score: 99},
	})

	entry, ok := cache.Get("c1")
	if !ok {
		t.Fatal("expected entry for c1")
	}
	if entry.Score != 85 || entry.Reason != "second pass" {
		t.Fatalf("newer entry did not overwrite: %+v", entry)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", cache.Len())
	}
}

func TestCacheEntriesPersist(t *testing.T) {
	cache := NewCache()
	cache.Merge([]ai.ScoreEntry{{ID: "c1", Score: 70}})

	// A later response for other candidates leaves earlier entries intact.
	cache.Merge([]ai.ScoreEntry{{ID: "c2", Score: 50}})

	if _, ok := cache.Get("c1"); !ok {
		t.Fatal("earlier entry was lost")
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}
}

func TestSortByScoreDescendingUnscoredLast(t *testing.T) {
	cache := NewCache()
	cache.Merge([]ai.ScoreEntry{
		{ID: "low", Score: 10},
		{ID: "high", Score: 90},
	})

	records := []*talent.Candidate{
		{ID: "unscored-a"},
		{ID: "low"},
		{ID: "unscored-b"},
		{ID: "high"},
	}

	sorted := cache.SortByScore(records)

	want := []string{"high", "low", "unscored-a", "unscored-b"}
	for i, id := range want {
		if sorted[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, sorted[i].ID)
		}
	}

	// Input order untouched.
	if records[0].ID != "unscored-a" || records[3].ID != "high" {
		t.Fatal("SortByScore mutated its input")
	}
}

func TestSortByScoreStableAmongUnscored(t *testing.T) {
	cache := NewCache()

	records := []*talent.Candidate{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	sorted := cache.SortByScore(records)

	for i, id := range []string{"a", "b", "c"} {
		if sorted[i].ID != id {
			t.Fatalf("unscored order changed: %v", []string{sorted[0].ID, sorted[1].ID, sorted[2].ID})
		}
	}
}

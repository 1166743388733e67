package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/avoronov/talentdir/internal/ai"
	"github.com/avoronov/talentdir/internal/filtering"
	"github.com/avoronov/talentdir/internal/query"
	"github.com/avoronov/talentdir/internal/scoring"
	"github.com/avoronov/talentdir/internal/talent"
)

type stubClient struct {
	mu        sync.Mutex
	records   []*talent.Candidate
	listErr   error
	deleteErr error
	deleted   []string
}

func (s *stubClient) List(_ *talent.ListParams) (*talent.Candidates, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return &talent.Candidates{Items: s.records}, nil
}

func (s *stubClient) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type stubTranslator struct {
	state *filtering.State
	err   error
}

func (s *stubTranslator) Translate(_ context.Context, _ string) (*filtering.State, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.state, nil
}

type stubScorer struct {
	mu      sync.Mutex
	calls   int
	lastIDs []string
}

func (s *stubScorer) Score(_ context.Context, _ string, candidates []ai.ScoringCandidate) ([]ai.ScoreEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastIDs = s.lastIDs[:0]
	entries := make([]ai.ScoreEntry, 0, len(candidates))
	for _, candidate := range candidates {
		s.lastIDs = append(s.lastIDs, candidate.ID)
		entries = append(entries, ai.ScoreEntry{ID: candidate.ID, Score: 50})
	}
	return entries, nil
}

func (s *stubScorer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type countingHydrator struct {
	mu    sync.Mutex
	pages [][]string
}

func (h *countingHydrator) HydratePage(_ context.Context, page []*talent.Candidate) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(page))
	for _, record := range page {
		ids = append(ids, record.ID)
	}
	h.pages = append(h.pages, ids)
	return 0
}

func seedRecords(n int) []*talent.Candidate {
	records := make([]*talent.Candidate, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, &talent.Candidate{
			ID:         fmt.Sprintf("c%03d", i),
			Name:       fmt.Sprintf("Candidate %03d", i),
			Profession: "Backend Developer",
			Skills:     []string{"Go"},
		})
	}
	return records
}

func newTestSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	sess := New(cfg)
	if err := sess.Load(context.Background()); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	t.Cleanup(sess.Close)
	return sess
}

func TestLoadFailureLeavesNothingVisible(t *testing.T) {
	sess := New(Config{Client: &stubClient{listErr: errors.New("backend down")}})

	if err := sess.Load(context.Background()); err == nil {
		t.Fatal("expected the load error to surface")
	}
	if sess.Store().Len() != 0 {
		t.Fatal("no partial list may be shown after a failed load")
	}
}

func TestAnyFilterChangeResetsToPageOne(t *testing.T) {
	ctx := context.Background()

	changes := []struct {
		name  string
		apply func(s *Session)
	}{
		{"filters", func(s *Session) { s.SetFilters(ctx, &filtering.State{Skills: []string{"Go"}}) }},
		{"window", func(s *Session) { s.SetTimeWindow(ctx, filtering.WindowMonth) }},
		{"query", func(s *Session) { s.SetQuery(ctx, "backend") }},
		{"translated prompt", func(s *Session) {
			if err := s.TranslateQuery(ctx, "senior backend"); err != nil {
				t.Fatalf("TranslateQuery error: %v", err)
			}
		}},
	}

	for _, change := range changes {
		sess := newTestSession(t, Config{
			Client:     &stubClient{records: seedRecords(100)},
			Translator: query.NewAdapter(nil, zap.NewNop()),
		})

		sess.GoToPage(3)
		if sess.CurrentPage() != 3 {
			t.Fatalf("%s: setup failed, page = %d", change.name, sess.CurrentPage())
		}

		change.apply(sess)

		if sess.CurrentPage() != 1 {
			t.Fatalf("changing %s left the page at %d", change.name, sess.CurrentPage())
		}
	}
}

func TestPaginationDerivesFromFilteredCount(t *testing.T) {
	sess := newTestSession(t, Config{Client: &stubClient{records: seedRecords(65)}})

	if got := sess.TotalPages(); got != 3 {
		t.Fatalf("expected 3 pages for 65 records, got %d", got)
	}

	sess.GoToPage(3)
	page := sess.Visible(context.Background())
	if len(page) != 5 {
		t.Fatalf("expected 5 records on the last page, got %d", len(page))
	}
}

func TestGoToPageClamps(t *testing.T) {
	sess := newTestSession(t, Config{Client: &stubClient{records: seedRecords(65)}})

	if got := sess.GoToPage(99); got != 3 {
		t.Fatalf("expected clamp to 3, got %d", got)
	}
	if got := sess.GoToPage(0); got != 1 {
		t.Fatalf("expected clamp to 1, got %d", got)
	}

	sess.GoToPage(1)
	if got := sess.PrevPage(); got != 1 {
		t.Fatalf("PrevPage below 1 should stay at 1, got %d", got)
	}
	if got := sess.NextPage(); got != 2 {
		t.Fatalf("NextPage from 1 should land on 2, got %d", got)
	}
}

func TestDeleteCascadesThroughDerivedViews(t *testing.T) {
	client := &stubClient{records: seedRecords(31)}
	sess := newTestSession(t, Config{Client: client})

	sess.OpenDetail("c000")

	if err := sess.Delete(context.Background(), "c000"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if sess.Store().Get("c000") != nil {
		t.Fatal("record still in the store")
	}
	if len(sess.Filtered()) != 30 {
		t.Fatalf("filtered view kept the record: %d", len(sess.Filtered()))
	}
	if sess.TotalPages() != 1 {
		t.Fatalf("page count not re-derived: %d", sess.TotalPages())
	}
	if sess.DetailID() != "" {
		t.Fatal("detail panel should close when its subject is deleted")
	}
	if len(client.deleted) != 1 || client.deleted[0] != "c000" {
		t.Fatalf("remote delete not issued correctly: %v", client.deleted)
	}
}

func TestDeleteKeepsDetailPanelForOtherRecords(t *testing.T) {
	sess := newTestSession(t, Config{Client: &stubClient{records: seedRecords(5)}})

	sess.OpenDetail("c001")
	if err := sess.Delete(context.Background(), "c002"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if sess.DetailID() != "c001" {
		t.Fatal("detail panel for an unrelated record must stay open")
	}
}

func TestDeleteFailureChangesNothing(t *testing.T) {
	client := &stubClient{records: seedRecords(5), deleteErr: errors.New("forbidden")}
	sess := newTestSession(t, Config{Client: client})

	sess.OpenDetail("c000")

	if err := sess.Delete(context.Background(), "c000"); err == nil {
		t.Fatal("expected the delete error to surface")
	}

	if sess.Store().Get("c000") == nil {
		t.Fatal("record removed despite the failed remote delete")
	}
	if sess.DetailID() != "c000" {
		t.Fatal("detail panel must stay open on failure")
	}
}

func TestDeleteClampsPageButDoesNotReset(t *testing.T) {
	sess := newTestSession(t, Config{Client: &stubClient{records: seedRecords(61)}})

	sess.GoToPage(3) // page 3 holds exactly one record
	if err := sess.Delete(context.Background(), "c060"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if got := sess.CurrentPage(); got != 2 {
		t.Fatalf("expected clamp to the new last page 2, got %d", got)
	}
}

func TestScoringNotTriggeredWithoutActiveDimensions(t *testing.T) {
	scorer := &stubScorer{}
	sess := newTestSession(t, Config{
		Client: &stubClient{records: seedRecords(10)},
		Ranker: scoring.NewRanker(scorer, scoring.NewCache(), zap.NewNop(), 10*time.Millisecond),
	})

	ctx := context.Background()

	// The window alone counts as no dimension, and the free-text query does
	// not open the gate either.
	sess.SetTimeWindow(ctx, filtering.WindowAll)
	sess.SetQuery(ctx, "")

	time.Sleep(60 * time.Millisecond)
	if scorer.callCount() != 0 {
		t.Fatalf("scoring fired with no active dimension: %d calls", scorer.callCount())
	}

	sess.SetFilters(ctx, &filtering.State{Skills: []string{"Go"}})

	deadline := time.Now().Add(2 * time.Second)
	for scorer.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if scorer.callCount() == 0 {
		t.Fatal("scoring never fired with an active dimension")
	}
}

func TestScoringRequestReflectsRemovalsDuringDebounce(t *testing.T) {
	scorer := &stubScorer{}
	sess := newTestSession(t, Config{
		Client: &stubClient{records: seedRecords(3)},
		Ranker: scoring.NewRanker(scorer, scoring.NewCache(), zap.NewNop(), 40*time.Millisecond),
	})

	sess.SetFilters(context.Background(), &filtering.State{Skills: []string{"Go"}})

	// Drops out of the filtered set before the debounce elapses.
	sess.Store().Remove("c000")

	deadline := time.Now().Add(2 * time.Second)
	for scorer.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if scorer.callCount() == 0 {
		t.Fatal("scheduled scoring never fired")
	}

	scorer.mu.Lock()
	ids := append([]string(nil), scorer.lastIDs...)
	scorer.mu.Unlock()

	if len(ids) != 2 {
		t.Fatalf("expected the request rebuilt from the fresh set (2 records), got %v", ids)
	}
	for _, id := range ids {
		if id == "c000" {
			t.Fatal("removed record leaked into the scoring request")
		}
	}
}

func TestVisibleSortsByScoreWhenCacheNonEmpty(t *testing.T) {
	sess := newTestSession(t, Config{Client: &stubClient{records: seedRecords(3)}})

	sess.Ranker().Cache().Merge([]ai.ScoreEntry{
		{ID: "c002", Score: 90},
		{ID: "c001", Score: 30},
	})

	page := sess.Visible(context.Background())
	if len(page) != 3 {
		t.Fatalf("expected 3 records, got %d", len(page))
	}

	want := []string{"c002", "c001", "c000"}
	for i, id := range want {
		if page[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, page[i].ID)
		}
	}
}

func TestVisibleHydratesOnlyCurrentPage(t *testing.T) {
	hydrator := &countingHydrator{}
	sess := newTestSession(t, Config{Client: &stubClient{records: seedRecords(65)}})
	sess.AttachHydrator(hydrator)

	sess.GoToPage(3)
	sess.Visible(context.Background())

	if len(hydrator.pages) != 1 {
		t.Fatalf("expected one hydration pass, got %d", len(hydrator.pages))
	}
	if len(hydrator.pages[0]) != 5 {
		t.Fatalf("expected the 5 visible records, got %d", len(hydrator.pages[0]))
	}
	if hydrator.pages[0][0] != "c060" {
		t.Fatalf("hydration got the wrong slice, starts at %s", hydrator.pages[0][0])
	}
}

func TestTranslateQuerySuccessReplacesStateOnly(t *testing.T) {
	translator := &stubTranslator{state: &filtering.State{Skills: []string{"Go"}}}
	sess := newTestSession(t, Config{
		Client:     &stubClient{records: seedRecords(10)},
		Translator: query.NewAdapter(translator, zap.NewNop()),
	})

	if err := sess.TranslateQuery(context.Background(), "find senior golang engineers for fintech"); err != nil {
		t.Fatalf("TranslateQuery error: %v", err)
	}

	// The structured result is the whole filter: every seeded record carries
	// the Go skill, so nothing may be lost to prompt-substring matching.
	if got := len(sess.Filtered()); got != 10 {
		t.Fatalf("structured filter matches all 10 records, but Filtered() returned %d", got)
	}

	state := sess.Filters()
	if len(state.Skills) != 1 || state.Skills[0] != "Go" {
		t.Fatalf("translated state not installed: %+v", state)
	}
	if sess.Query() != "" {
		t.Fatalf("prompt leaked into the free-text query: %q", sess.Query())
	}
}

func TestTranslateQueryFallbackKeepsScreenUsable(t *testing.T) {
	sess := newTestSession(t, Config{
		Client:     &stubClient{records: seedRecords(5)},
		Translator: query.NewAdapter(nil, zap.NewNop()),
	})

	if err := sess.TranslateQuery(context.Background(), "senior engineer"); err != nil {
		t.Fatalf("TranslateQuery error: %v", err)
	}

	state := sess.Filters()
	if len(state.Keywords) != 1 || state.Keywords[0] != "senior engineer" {
		t.Fatalf("expected keyword fallback, got %v", state.Keywords)
	}
}

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/avoronov/talentdir/internal/directory"
	"github.com/avoronov/talentdir/internal/filtering"
	"github.com/avoronov/talentdir/internal/query"
	"github.com/avoronov/talentdir/internal/scoring"
	"github.com/avoronov/talentdir/internal/talent"
)

// DirectoryClient is the slice of the talent client the session needs.
type DirectoryClient interface {
	List(params *talent.ListParams) (*talent.Candidates, error)
	Delete(id string) error
}

// PageHydrator enriches the records of one visible page.
type PageHydrator interface {
	HydratePage(ctx context.Context, page []*talent.Candidate) int
}

// Config wires a session together.
type Config struct {
	Client     DirectoryClient
	Hydrator   PageHydrator
	Ranker     *scoring.Ranker
	Translator *query.Adapter
	Logger     *zap.Logger
	ListParams *talent.ListParams
	PageSize   int
	// Now is injectable for time-window tests; defaults to time.Now.
	Now func() time.Time
}

// Session is the resume directory screen's pipeline: directory store, filter
// state, pagination, per-page hydration and debounced relevance ranking, all
// derived views recomputed on each dependency change.
type Session struct {
	mu sync.Mutex

	client     DirectoryClient
	store      *directory.Store
	hydrator   PageHydrator
	ranker     *scoring.Ranker
	translator *query.Adapter
	logger     *zap.Logger
	now        func() time.Time

	listParams *talent.ListParams
	state      *filtering.State
	window     filtering.TimeWindow
	queryText  string
	// promptText is the last translated natural-language prompt. It seeds the
	// scoring query only; the structured state the translator produced is the
	// whole filter, so the prompt never participates in filtering.
	promptText string
	pager      *pagination
	detailID   string
	loaded     bool

	// filterRev bumps on every filter input change; together with the store
	// generation it keys the memoized filtered view.
	filterRev      uint64
	cachedFiltered []*talent.Candidate
	cachedGen      uint64
	cachedRev      uint64
	cacheValid     bool
}

func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	ranker := cfg.Ranker
	if ranker == nil {
		ranker = scoring.NewRanker(nil, nil, logger, 0)
	}

	return &Session{
		client:     cfg.Client,
		store:      directory.New(logger),
		hydrator:   cfg.Hydrator,
		ranker:     ranker,
		translator: cfg.Translator,
		logger:     logger,
		now:        now,
		listParams: cfg.ListParams,
		state:      &filtering.State{},
		window:     filtering.WindowAll,
		pager:      newPagination(cfg.PageSize),
	}
}

// Store exposes the directory store, mainly for the hydrator wiring.
func (s *Session) Store() *directory.Store {
	return s.store
}

// AttachHydrator wires in the per-page hydrator. The hydrator needs the store
// the session owns, so it is built after the session.
func (s *Session) AttachHydrator(h PageHydrator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrator = h
}

// Load fetches the full candidate set once. On failure nothing is shown: the
// store stays empty and the error surfaces as the page-level error state.
func (s *Session) Load(_ context.Context) error {
	if s.client == nil {
		return errors.New("directory client is required")
	}

	candidates, err := s.client.List(s.listParams)
	if err != nil {
		return fmt.Errorf("load candidate directory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.ReplaceAll(candidates.Items)
	s.pager.reset()
	s.loaded = true

	s.logger.Info("candidate directory loaded", zap.Int("count", candidates.Len()))
	return nil
}

// Filtered returns the filtered subset for the current store contents, filter
// state, time window and free-text query. Pre-sort order: the store's load
// order. The result is memoized against the store generation and the filter
// revision, so late hydration merges and removals invalidate it while
// repeated reads (pagination, rendering) do not recompute.
func (s *Session) Filtered() []*talent.Candidate {
	gen := s.store.Generation()

	s.mu.Lock()
	if s.cacheValid && s.cachedGen == gen && s.cachedRev == s.filterRev {
		cached := s.cachedFiltered
		s.mu.Unlock()
		return cached
	}
	state, window, queryText, rev := s.state, s.window, s.queryText, s.filterRev
	s.mu.Unlock()

	filtered := filtering.Apply(s.store.Snapshot(), state, window, queryText, s.now())

	s.mu.Lock()
	if s.filterRev == rev {
		s.cachedFiltered = filtered
		s.cachedGen = gen
		s.cachedRev = rev
		s.cacheValid = true
	}
	s.mu.Unlock()

	return filtered
}

// Visible derives the current page: filtered set, score-sorted when the cache
// has entries, sliced to the page, then hydrated. Hydration merges in place so
// the returned records already carry any enrichment that arrived.
func (s *Session) Visible(ctx context.Context) []*talent.Candidate {
	filtered := s.Filtered()

	if s.ranker.Cache().Len() > 0 {
		filtered = s.ranker.Cache().SortByScore(filtered)
	}

	s.mu.Lock()
	s.pager.setTotal(len(filtered))
	s.pager.goTo(s.pager.page)
	lo, hi := s.pager.sliceBounds()
	s.mu.Unlock()

	page := filtered[lo:hi]

	if s.hydrator != nil {
		s.hydrator.HydratePage(ctx, page)
	}

	return page
}

// SetFilters replaces the filter state wholesale and resets to page 1.
func (s *Session) SetFilters(ctx context.Context, state *filtering.State) {
	if state == nil {
		state = &filtering.State{}
	}

	s.mu.Lock()
	s.state = state.Clone()
	s.filterRev++
	s.pager.reset()
	s.mu.Unlock()

	s.scheduleScoring(ctx)
}

// SetTimeWindow changes the recency window and resets to page 1.
func (s *Session) SetTimeWindow(ctx context.Context, window filtering.TimeWindow) {
	s.mu.Lock()
	s.window = window
	s.filterRev++
	s.pager.reset()
	s.mu.Unlock()

	s.scheduleScoring(ctx)
}

// SetQuery changes the free-text query and resets to page 1. A manual query
// edit supersedes any earlier translated prompt for scoring purposes.
func (s *Session) SetQuery(ctx context.Context, text string) {
	s.mu.Lock()
	s.queryText = strings.TrimSpace(text)
	s.promptText = ""
	s.filterRev++
	s.pager.reset()
	s.mu.Unlock()

	s.scheduleScoring(ctx)
}

// TranslateQuery sends the prompt through the translator adapter and replaces
// the filter state with the result. Submitting while a prior translation is
// in flight is a no-op.
func (s *Session) TranslateQuery(ctx context.Context, prompt string) error {
	if s.translator == nil {
		return errors.New("query translator is not configured")
	}

	s.mu.Lock()
	current := s.state.Clone()
	s.mu.Unlock()

	next, err := s.translator.Submit(ctx, prompt, current)
	if err != nil {
		if errors.Is(err, query.ErrBusy) {
			s.logger.Debug("translation already in flight, ignoring prompt", zap.String("prompt", prompt))
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.state = next
	s.promptText = strings.TrimSpace(prompt)
	s.filterRev++
	s.pager.reset()
	s.mu.Unlock()

	s.scheduleScoring(ctx)
	return nil
}

// Filters returns a copy of the current filter state.
func (s *Session) Filters() *filtering.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Session) TimeWindow() filtering.TimeWindow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryText
}

// GoToPage clamps the requested page into range and returns the page landed
// on. Navigation never triggers scoring.
func (s *Session) GoToPage(page int) int {
	total := len(s.Filtered())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pager.setTotal(total)
	return s.pager.goTo(page)
}

func (s *Session) NextPage() int {
	s.mu.Lock()
	page := s.pager.page + 1
	s.mu.Unlock()
	return s.GoToPage(page)
}

func (s *Session) PrevPage() int {
	s.mu.Lock()
	page := s.pager.page - 1
	s.mu.Unlock()
	return s.GoToPage(page)
}

func (s *Session) CurrentPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pager.page
}

// TotalPages derives the page count from the filtered set size.
func (s *Session) TotalPages() int {
	total := len(s.Filtered())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pager.setTotal(total)
	return s.pager.totalPages()
}

// OpenDetail marks the detail panel as showing the given candidate.
func (s *Session) OpenDetail(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailID = id
}

func (s *Session) CloseDetail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailID = ""
}

// DetailID returns the id of the open detail panel's subject, empty when
// closed.
func (s *Session) DetailID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detailID
}

// Ranker exposes the relevance ranker, mainly for its cache.
func (s *Session) Ranker() *scoring.Ranker {
	return s.ranker
}

// Close cancels any pending debounced work.
func (s *Session) Close() {
	s.ranker.Stop()
}

// scheduleScoring arms the debounced relevance call. The ranker's own gate
// keeps it silent while no dimension is active. Filtered is passed as the
// snapshot so the request that eventually fires reflects hydration merges and
// removals from the debounce window, not the set as of scheduling.
func (s *Session) scheduleScoring(ctx context.Context) {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	s.ranker.Schedule(ctx, s.scoringQuery(), state, s.Filtered, func(merged int) {
		s.logger.Debug("scores applied", zap.Int("merged", merged))
	})
}

// scoringQuery is the query string the scoring request carries: the last
// translated prompt when present, then the free-text query, otherwise a
// synthesis of the active dimensions.
func (s *Session) scoringQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.promptText != "" {
		return s.promptText
	}
	if s.queryText != "" {
		return s.queryText
	}

	parts := make([]string, 0, 3)
	parts = append(parts, s.state.Professions...)
	parts = append(parts, s.state.Skills...)
	parts = append(parts, s.state.Keywords...)
	return strings.Join(parts, " ")
}

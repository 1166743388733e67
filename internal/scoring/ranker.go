package scoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/avoronov/talentdir/internal/ai"
	"github.com/avoronov/talentdir/internal/filtering"
	"github.com/avoronov/talentdir/internal/talent"
)

const (
	// TopK bounds how many candidates one scoring request carries. The
	// prefix is taken from the filtered set's pre-sort order.
	TopK = 10

	DefaultDebounce = 600 * time.Millisecond
)

// Ranker owns the debounced remote scoring call and the score cache. It fires
// only when at least one filter dimension is active and the filtered set is
// non-empty; the time window alone never triggers it.
type Ranker struct {
	scorer    ai.Scorer
	cache     *Cache
	debouncer *Debouncer
	logger    *zap.Logger
}

func NewRanker(scorer ai.Scorer, cache *Cache, logger *zap.Logger, debounce time.Duration) *Ranker {
	if cache == nil {
		cache = NewCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Ranker{
		scorer:    scorer,
		cache:     cache,
		debouncer: NewDebouncer(debounce),
		logger:    logger,
	}
}

func (r *Ranker) Cache() *Cache {
	return r.cache
}

// ShouldScore is the scoring gate.
func ShouldScore(state *filtering.State, filtered []*talent.Candidate) bool {
	return !state.Empty() && len(filtered) > 0
}

// Schedule arms a debounced scoring call. Rapid filter edits coalesce: every
// call cancels the pending one. When the gate is closed any pending call is
// cancelled and nothing is scheduled. The snapshot is re-taken when the delay
// elapses, so enrichment merges and removals that land during the debounce
// window make it into the request instead of a stale prefix. onApplied runs
// after a successful merge so the caller can re-derive its views.
func (r *Ranker) Schedule(ctx context.Context, query string, state *filtering.State, snapshot func() []*talent.Candidate, onApplied func(merged int)) {
	if snapshot == nil || !ShouldScore(state, snapshot()) {
		r.debouncer.Stop()
		return
	}

	r.debouncer.Schedule(ctx, func(taskCtx context.Context) {
		filtered := snapshot()
		if !ShouldScore(state, filtered) {
			return
		}
		request := buildRequest(filtered)

		merged, err := r.score(taskCtx, query, request)
		if err != nil {
			r.logger.Warn("relevance scoring failed",
				zap.String("query", query),
				zap.Int("candidates", len(request)),
				zap.Error(err),
			)
			return
		}
		if onApplied != nil {
			onApplied(merged)
		}
	})
}

// ScoreNow runs the scoring call immediately, bypassing the debounce. Used
// when the caller has already settled (and by tests).
func (r *Ranker) ScoreNow(ctx context.Context, query string, state *filtering.State, filtered []*talent.Candidate) (int, error) {
	if !ShouldScore(state, filtered) {
		return 0, nil
	}

	return r.score(ctx, query, buildRequest(filtered))
}

// Stop cancels any pending scoring call.
func (r *Ranker) Stop() {
	r.debouncer.Stop()
}

func (r *Ranker) score(ctx context.Context, query string, request []ai.ScoringCandidate) (int, error) {
	if r.scorer == nil {
		return 0, nil
	}

	entries, err := r.scorer.Score(ctx, query, request)
	if err != nil {
		return 0, err
	}

	r.cache.Merge(entries)

	r.logger.Debug("relevance scores merged",
		zap.Int("entries", len(entries)),
		zap.Int("cache_size", r.cache.Len()),
	)

	return len(entries), nil
}

// buildRequest takes the top-K prefix of the unsorted filtered set and
// projects each record onto the scoring payload.
func buildRequest(filtered []*talent.Candidate) []ai.ScoringCandidate {
	limit := len(filtered)
	if limit > TopK {
		limit = TopK
	}

	request := make([]ai.ScoringCandidate, 0, limit)
	for _, record := range filtered[:limit] {
		request = append(request, ai.ScoringCandidate{
			ID:              record.ID,
			Name:            record.Name,
			Profession:      record.Profession,
			YearsExperience: record.YearsExperience,
			Skills:          record.Skills,
			Summary:         record.Summary,
		})
	}

	return request
}

package hydrate

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/avoronov/talentdir/internal/directory"
	"github.com/avoronov/talentdir/internal/talent"
)

const defaultConcurrency = 4

// DetailFetcher is the slice of the talent client the hydrator needs.
type DetailFetcher interface {
	GetDetail(id string) (*talent.CandidateDetail, error)
}

// Hydrator fills in enrichment fields for the records currently on screen.
// Each record is fetched independently; one record's failure never blocks
// another's success, and failures are swallowed after logging. The record
// simply stays unenriched until a later pass retries it.
type Hydrator struct {
	fetcher     DetailFetcher
	store       *directory.Store
	logger      *zap.Logger
	concurrency int
}

func New(fetcher DetailFetcher, store *directory.Store, logger *zap.Logger) *Hydrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hydrator{
		fetcher:     fetcher,
		store:       store,
		logger:      logger,
		concurrency: defaultConcurrency,
	}
}

// HydratePage enriches the given page's records that still lack enrichment
// data. Returns how many records were merged. Merges are applied one partial
// at a time as each fetch completes, so out-of-order completion is harmless.
func (h *Hydrator) HydratePage(ctx context.Context, page []*talent.Candidate) int {
	missing := make([]string, 0, len(page))
	for _, record := range page {
		if record == nil || record.Hydrated() {
			continue
		}
		missing = append(missing, record.ID)
	}

	if len(missing) == 0 {
		return 0
	}

	h.logger.Debug("hydrating page records", zap.Int("missing", len(missing)))

	merged := make(chan int, len(missing))
	var group errgroup.Group
	group.SetLimit(h.concurrency)

	for _, id := range missing {
		id := id
		group.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			detail, err := h.fetcher.GetDetail(id)
			if err != nil {
				h.logger.Warn("candidate detail fetch failed",
					zap.String("candidate_id", id),
					zap.Error(err),
				)
				return nil
			}

			partial := &talent.Enrichment{
				ID:         id,
				Skills:     detail.Skills,
				Summary:    detail.Summary,
				SearchText: BuildSearchText(detail),
			}

			merged <- h.store.MergeEnrichment([]*talent.Enrichment{partial})
			return nil
		})
	}

	group.Wait()
	close(merged)

	total := 0
	for n := range merged {
		total += n
	}

	return total
}

package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobscout/internal/model"
)

const (
	DefaultWorkers        = 4
	DefaultExtractTimeout = 60 * time.Second
)

// Outcomes reported to an Observer.
const (
	OutcomeLinked   = "linked"
	OutcomeFailed   = "failed"
	OutcomeRaced    = "already_enriched"
	OutcomeSkipped  = "skipped"
	OutcomeStoreErr = "store_error"
)

// Store is the storage surface the pipeline needs.
type Store interface {
	model.PostingStore
	model.SummaryStore
}

// Observer receives one call per processed posting. metrics.Metrics implements it.
type Observer interface {
	ObserveEnrichment(outcome string, elapsed time.Duration)
}

// Options tunes a Pipeline.
type Options struct {
	Workers        int
	ExtractTimeout time.Duration
	Observer       Observer // optional
}

// Pipeline links a Summary to every pending posting. Concurrent passes are
// safe; the store's one-shot link decides which summary wins.
type Pipeline struct {
	store     Store
	extractor model.Extractor
	opts      Options
	logger    *slog.Logger
}

func NewPipeline(store Store, extractor model.Extractor, opts Options, logger *slog.Logger) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.ExtractTimeout <= 0 {
		opts.ExtractTimeout = DefaultExtractTimeout
	}
	return &Pipeline{
		store:     store,
		extractor: extractor,
		opts:      opts,
		logger:    logger,
	}
}

// EnrichPending processes every pending posting and returns how many were
// linked in this pass. Individual failures are logged and leave the posting
// pending for the next pass; only a failing pending query is returned.
func (p *Pipeline) EnrichPending(ctx context.Context) (int, error) {
	pending, err := p.store.FindPendingEnrichment(ctx)
	if err != nil {
		return 0, fmt.Errorf("finding pending postings: %w", err)
	}
	if len(pending) == 0 {
		p.logger.Debug("no postings pending enrichment")
		return 0, nil
	}

	var linked atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(p.opts.Workers)

	for _, posting := range pending {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			start := time.Now()
			outcome := p.enrichOne(ctx, posting)
			if outcome == OutcomeLinked {
				linked.Add(1)
			}
			if p.opts.Observer != nil {
				p.opts.Observer.ObserveEnrichment(outcome, time.Since(start))
			}
			return nil
		})
	}
	g.Wait()

	n := int(linked.Load())
	p.logger.Info("enrichment pass complete", "pending", len(pending), "linked", n)
	return n, nil
}

func (p *Pipeline) enrichOne(ctx context.Context, posting model.Posting) string {
	if !posting.Persisted() {
		p.logger.Warn("skipping unpersisted posting", "title", posting.Title, "company", posting.Company)
		return OutcomeSkipped
	}
	log := p.logger.With("posting_id", posting.ID)

	extractCtx, cancel := context.WithTimeout(ctx, p.opts.ExtractTimeout)
	sum, err := p.extractor.Extract(extractCtx, posting.Description)
	cancel()
	if err != nil {
		if !errors.Is(err, model.ErrExtractionFailed) {
			err = model.ExtractionFailed(err)
		}
		log.Warn("extraction failed", "error", err)
		return OutcomeFailed
	}

	sum.PostingID = posting.ID
	sum, err = p.store.CreateSummary(ctx, sum)
	if err != nil {
		log.Warn("saving summary failed", "error", err)
		return OutcomeStoreErr
	}

	if _, err := p.store.LinkSummary(ctx, posting.ID, sum); err != nil {
		if delErr := p.store.DeleteSummary(ctx, sum.ID); delErr != nil {
			log.Warn("deleting orphaned summary failed", "summary_id", sum.ID, "error", delErr)
		}
		if errors.Is(err, model.ErrAlreadyEnriched) {
			log.Debug("posting already enriched", "summary_id", sum.ID)
			return OutcomeRaced
		}
		log.Warn("linking summary failed", "error", err)
		return OutcomeStoreErr
	}

	log.Debug("posting enriched", "summary_id", sum.ID)
	return OutcomeLinked
}

package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amishk599/jobscout/internal/aggregate"
	"github.com/amishk599/jobscout/internal/model"
)

// Aggregator runs one search across every source. *aggregate.Coordinator
// implements it.
type Aggregator interface {
	Run(ctx context.Context, q model.SearchQuery) (aggregate.Result, error)
}

// Store is the storage surface a poll needs.
type Store interface {
	model.PostingStore
	model.QueryRecorder
}

// Report summarizes one poll cycle.
type Report struct {
	QueryID  int64
	Fetched  int
	Matched  int
	New      []model.Posting
	Existing int
	Failed   int // sources that errored
	// StoreErrors counts matched postings that could not be checked or
	// stored. They are skipped and retried by the next cycle.
	StoreErrors int
}

// QueryPoller owns the discovery pipeline for a single search:
// record → aggregate → filter → cross-run dedup → persist → notify.
type QueryPoller struct {
	query      model.SearchQuery
	aggregator Aggregator
	filter     model.PostingFilter
	store      Store
	notifier   model.Notifier
	logger     *slog.Logger
}

// NewQueryPoller creates a poller wired with all its dependencies.
// filter may be nil to keep every aggregated posting.
func NewQueryPoller(
	query model.SearchQuery,
	aggregator Aggregator,
	filter model.PostingFilter,
	store Store,
	notifier model.Notifier,
	logger *slog.Logger,
) *QueryPoller {
	return &QueryPoller{
		query:      query.WithDefaults(),
		aggregator: aggregator,
		filter:     filter,
		store:      store,
		notifier:   notifier,
		logger:     logger,
	}
}

// Query returns the search this poller issues.
func (p *QueryPoller) Query() model.SearchQuery { return p.query }

// Poll runs one cycle. Postings already stored under the same identity are
// left untouched; new ones are added with SearchQueryID pointing at this run.
func (p *QueryPoller) Poll(ctx context.Context) (Report, error) {
	if err := p.query.Validate(); err != nil {
		return Report{}, err
	}

	queryID, err := p.store.RecordQuery(ctx, p.query)
	if err != nil {
		return Report{}, fmt.Errorf("polling %q: recording query: %w", p.query.Keywords, err)
	}
	report := Report{QueryID: queryID}

	res, err := p.aggregator.Run(ctx, p.query)
	if err != nil {
		return report, fmt.Errorf("polling %q: %w", p.query.Keywords, err)
	}
	report.Fetched = len(res.Postings)
	report.Failed = res.Failed()

	var lastErr error
	for _, posting := range res.Postings {
		if ctx.Err() != nil {
			break
		}
		if p.filter != nil && !p.filter.Match(posting) {
			continue
		}
		report.Matched++

		stored, isNew, err := p.persist(ctx, posting, queryID)
		if err != nil {
			report.StoreErrors++
			lastErr = err
			p.logger.Warn("failed to store posting",
				"keywords", p.query.Keywords,
				"title", posting.Title,
				"company", posting.Company,
				"error", err,
			)
			continue
		}
		if !isNew {
			report.Existing++
			continue
		}
		report.New = append(report.New, stored)
	}

	if len(report.New) > 0 && p.notifier != nil {
		if err := p.notifier.Notify(report.New); err != nil {
			p.logger.Warn("failed to notify new postings", "keywords", p.query.Keywords, "error", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("polling %q: %w", p.query.Keywords, err)
	}
	if report.StoreErrors > 0 && report.StoreErrors == report.Matched {
		return report, fmt.Errorf("polling %q: no posting could be stored: %w", p.query.Keywords, lastErr)
	}

	p.logger.Info("polled search",
		"keywords", p.query.Keywords,
		"location", p.query.Location,
		"query_id", queryID,
		"fetched", report.Fetched,
		"matched", report.Matched,
		"new", len(report.New),
		"existing", report.Existing,
		"store_errors", report.StoreErrors,
		"failed_sources", report.Failed,
	)
	return report, nil
}

// persist adds posting unless its identity is already stored. A concurrent
// insert of the same identity resolves to the stored row.
func (p *QueryPoller) persist(ctx context.Context, posting model.Posting, queryID int64) (model.Posting, bool, error) {
	existing, err := p.store.GetByIdentity(ctx, posting.Title, posting.Company)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, model.ErrNotFound):
		return model.Posting{}, false, fmt.Errorf("checking %q at %q: %w", posting.Title, posting.Company, err)
	}

	posting.SearchQueryID = queryID
	added, err := p.store.Add(ctx, posting)
	if errors.Is(err, model.ErrDuplicateIdentity) {
		p.logger.Debug("posting stored concurrently", "title", posting.Title, "company", posting.Company)
		return model.Posting{}, false, nil
	}
	if err != nil {
		return model.Posting{}, false, fmt.Errorf("adding %q at %q: %w", posting.Title, posting.Company, err)
	}
	return added, true, nil
}

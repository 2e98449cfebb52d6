package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobscout/internal/model"
)

// DefaultSourceTimeout bounds one adapter fetch when Options leaves it unset.
const DefaultSourceTimeout = 30 * time.Second

// Observer receives one call per adapter fetch. metrics.Metrics implements it.
type Observer interface {
	ObserveFetch(source string, postings int, err error, elapsed time.Duration)
}

// Options tunes a Coordinator.
type Options struct {
	SourceTimeout time.Duration
	Observer      Observer // optional
}

// SourceReport records how one adapter fared during a run.
type SourceReport struct {
	Name     string
	Fetched  int
	Err      error
	Duration time.Duration
}

// Result is the merged, deduplicated, truncated output of one run.
type Result struct {
	Postings   []model.Posting
	Sources    []SourceReport
	Duplicates int
}

// Failed returns the number of sources that errored.
func (r Result) Failed() int {
	n := 0
	for _, s := range r.Sources {
		if s.Err != nil {
			n++
		}
	}
	return n
}

// Skipped is an adapter excluded at construction because Ready failed.
type Skipped struct {
	Name   string
	Reason error
}

// Coordinator fans one SearchQuery out to every active adapter and merges
// the results. It never persists anything.
type Coordinator struct {
	active  []model.SourceAdapter
	skipped []Skipped
	opts    Options
	logger  *slog.Logger
}

// NewCoordinator partitions adapters into the active set (Ready returns nil)
// and the skipped set. Registration order is preserved in both.
func NewCoordinator(adapters []model.SourceAdapter, opts Options, logger *slog.Logger) *Coordinator {
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = DefaultSourceTimeout
	}

	c := &Coordinator{opts: opts, logger: logger}
	for _, a := range adapters {
		if err := a.Ready(); err != nil {
			logger.Info("source disabled", "source", a.Name(), "reason", err)
			c.skipped = append(c.skipped, Skipped{Name: a.Name(), Reason: err})
			continue
		}
		c.active = append(c.active, a)
	}
	return c
}

// Active returns the names of the adapters that will be queried.
func (c *Coordinator) Active() []string {
	names := make([]string, len(c.active))
	for i, a := range c.active {
		names[i] = a.Name()
	}
	return names
}

// Skipped returns the adapters excluded at construction.
func (c *Coordinator) Skipped() []Skipped {
	return c.skipped
}

// Run queries every active adapter concurrently. Adapter failures are
// reported in Result.Sources and contribute no postings; they never fail
// the run. Postings are concatenated in registration order, deduplicated by
// identity key (first occurrence wins) and truncated to q.MaxResults.
func (c *Coordinator) Run(ctx context.Context, q model.SearchQuery) (Result, error) {
	if err := q.Validate(); err != nil {
		return Result{}, err
	}
	if len(c.active) == 0 {
		return Result{}, model.ErrNoSources
	}

	batches := make([][]model.Posting, len(c.active))
	reports := make([]SourceReport, len(c.active))

	var g errgroup.Group
	for i, a := range c.active {
		g.Go(func() error {
			start := time.Now()
			postings, err := c.fetch(ctx, a, q)
			elapsed := time.Since(start)

			reports[i] = SourceReport{Name: a.Name(), Fetched: len(postings), Err: err, Duration: elapsed}
			if c.opts.Observer != nil {
				c.opts.Observer.ObserveFetch(a.Name(), len(postings), err, elapsed)
			}
			if err != nil {
				c.logger.Warn("source fetch failed", "source", a.Name(), "elapsed", elapsed, "error", err)
				return nil
			}
			batches[i] = postings
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return Result{Sources: reports}, fmt.Errorf("aggregation cancelled: %w", err)
	}

	merged, dups := merge(batches, q.MaxResults)
	res := Result{Postings: merged, Sources: reports, Duplicates: dups}

	c.logger.Info("aggregation complete",
		"keywords", q.Keywords,
		"location", q.Location,
		"sources", len(c.active),
		"failed", res.Failed(),
		"duplicates", dups,
		"postings", len(merged),
	)
	return res, nil
}

type fetchResult struct {
	postings []model.Posting
	err      error
}

// fetch runs one adapter under its own timeout. The call is abandoned when
// the timeout fires even if the adapter ignores its context.
func (c *Coordinator) fetch(ctx context.Context, a model.SourceAdapter, q model.SearchQuery) ([]model.Posting, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.SourceTimeout)
	defer cancel()

	done := make(chan fetchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fetchResult{err: fmt.Errorf("adapter panic: %v", r)}
			}
		}()
		postings, err := a.Fetch(ctx, q.Keywords, q.Location, q.MaxResults)
		done <- fetchResult{postings: postings, err: err}
	}()

	var res fetchResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = fetchResult{err: fmt.Errorf("fetch abandoned: %w", ctx.Err())}
	}
	if res.err != nil {
		return nil, model.Unavailable(a.Name(), res.err)
	}

	// merge is the only place that truncates, so duplicates within one
	// batch cannot cost unique postings their slot.
	postings := res.postings
	if len(postings) > q.MaxResults {
		c.logger.Debug("source returned more than requested", "source", a.Name(), "limit", q.MaxResults, "postings", len(postings))
	}
	for i := range postings {
		if postings[i].Source == "" {
			postings[i].Source = a.Name()
		}
	}
	return postings, nil
}

// merge concatenates batches in order, drops repeated identity keys and
// truncates to limit. It returns the number of dropped duplicates.
func merge(batches [][]model.Posting, limit int) ([]model.Posting, int) {
	seen := make(map[model.IdentityKey]struct{})
	var out []model.Posting
	dups := 0
	for _, batch := range batches {
		for _, p := range batch {
			key := p.Identity()
			if _, ok := seen[key]; ok {
				dups++
				continue
			}
			seen[key] = struct{}{}
			out = append(out, p)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, dups
}

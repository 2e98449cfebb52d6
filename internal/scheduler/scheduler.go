package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/amishk599/jobscout/internal/poller"
)

// Poller runs one discovery cycle for a search. *poller.QueryPoller implements it.
type Poller interface {
	Poll(ctx context.Context) (poller.Report, error)
}

// Enricher runs one enrichment pass. *enrich.Pipeline implements it.
type Enricher interface {
	EnrichPending(ctx context.Context) (int, error)
}

// Options holds the cron specs for both jobs, e.g. "@every 6h" or "0 */2 * * *".
// An empty EnrichmentSpec runs enrichment right after each discovery cycle.
type Options struct {
	DiscoverySpec  string
	EnrichmentSpec string
}

// Scheduler drives discovery and enrichment on cron schedules. A job that is
// still running when its next tick fires is skipped for that tick.
type Scheduler struct {
	pollers  []Poller
	enricher Enricher
	opts     Options
	logger   *slog.Logger

	discovering sync.Mutex
	mu          sync.Mutex // serializes enrichment passes
}

func NewScheduler(pollers []Poller, enricher Enricher, opts Options, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		pollers:  pollers,
		enricher: enricher,
		opts:     opts,
		logger:   logger,
	}
}

// Run registers the jobs, runs one immediate discovery cycle, then blocks
// until ctx is cancelled. It returns nil on graceful shutdown, after any
// running job has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	cl := cronLogger{s.logger}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))

	if _, err := c.AddFunc(s.opts.DiscoverySpec, func() { s.discover(ctx) }); err != nil {
		return fmt.Errorf("scheduling discovery %q: %w", s.opts.DiscoverySpec, err)
	}
	if s.opts.EnrichmentSpec != "" && s.enricher != nil {
		if _, err := c.AddFunc(s.opts.EnrichmentSpec, func() { s.enrich(ctx) }); err != nil {
			return fmt.Errorf("scheduling enrichment %q: %w", s.opts.EnrichmentSpec, err)
		}
	}

	s.logger.Info("starting scheduler",
		"discovery", s.opts.DiscoverySpec,
		"enrichment", s.opts.EnrichmentSpec,
		"searches", len(s.pollers),
	)

	c.Start()
	s.discover(ctx)

	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	return nil
}

// discover runs every poller sequentially. One failing search does not stop
// the others.
func (s *Scheduler) discover(ctx context.Context) {
	// the startup cycle runs outside cron's chain
	if !s.discovering.TryLock() {
		s.logger.Info("discovery still running, skipping cycle")
		return
	}
	defer s.discovering.Unlock()

	for _, p := range s.pollers {
		if ctx.Err() != nil {
			return
		}
		if _, err := p.Poll(ctx); err != nil {
			s.logger.Error("poll failed", "error", err)
		}
	}

	if s.opts.EnrichmentSpec == "" {
		s.enrich(ctx)
	}
}

func (s *Scheduler) enrich(ctx context.Context) {
	if s.enricher == nil || ctx.Err() != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.enricher.EnrichPending(ctx); err != nil {
		s.logger.Error("enrichment failed", "error", err)
	}
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}

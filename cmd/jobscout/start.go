package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobscout/internal/aggregate"
	"github.com/amishk599/jobscout/internal/api"
	"github.com/amishk599/jobscout/internal/enrich"
	"github.com/amishk599/jobscout/internal/metrics"
	"github.com/amishk599/jobscout/internal/notifier"
	"github.com/amishk599/jobscout/internal/query"
	"github.com/amishk599/jobscout/internal/scheduler"
)

var startNoAPI bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the discovery and enrichment daemon",
	Long:  "Runs discovery and enrichment on their cron schedules and serves the read API; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	startCmd.Flags().BoolVar(&startNoAPI, "no-api", false, "do not serve the read API")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	logger.Info("config loaded",
		"storage", cfg.Storage.Driver,
		"searches", len(cfg.Searches),
		"boards", len(cfg.Sources.Boards),
		"discovery", cfg.Discovery.Schedule,
		"enrichment", cfg.Enrichment.Schedule,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Storage, false, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer st.Close()

	adapters, closeCache, err := buildAdapters(ctx, cfg.Sources, logger)
	if err != nil {
		logger.Error("failed to build sources", "error", err)
		return err
	}
	defer closeCache()

	m := metrics.New()
	coord := aggregate.NewCoordinator(adapters, aggregate.Options{
		SourceTimeout: cfg.Sources.Timeout,
		Observer:      m,
	}, logger)

	qp := buildPollers(cfg.Searches, cfg.Filters, coord, st, notifier.NewLogNotifier(logger), logger)
	pollers := make([]scheduler.Poller, len(qp))
	for i, p := range qp {
		pollers[i] = p
	}

	var enricher scheduler.Enricher
	if extractor, err := buildExtractor(cfg.AI, logger); err != nil {
		logger.Warn("enrichment disabled", "reason", err)
	} else {
		enricher = enrich.NewPipeline(st, extractor, enrich.Options{
			Workers:        cfg.Enrichment.Workers,
			ExtractTimeout: cfg.Enrichment.Timeout,
			Observer:       m,
		}, logger)
	}

	sched := scheduler.NewScheduler(pollers, enricher, scheduler.Options{
		DiscoverySpec:  cfg.Discovery.Schedule,
		EnrichmentSpec: cfg.Enrichment.Schedule,
	}, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Run(gctx) })
	if !startNoAPI {
		srv := api.NewServer(query.NewService(st), buildCompanies(st, cfg.AI, logger), m.Handler(), logger)
		g.Go(func() error { return srv.Run(gctx, cfg.Server.Addr) })
	}

	if err := g.Wait(); err != nil {
		logger.Error("daemon error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}

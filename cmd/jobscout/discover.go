package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/aggregate"
	"github.com/amishk599/jobscout/internal/config"
	"github.com/amishk599/jobscout/internal/filter"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/notifier"
	"github.com/amishk599/jobscout/internal/poller"
	"github.com/amishk599/jobscout/internal/render"
)

var (
	discoverDryRun     bool
	discoverKeywords   string
	discoverLocation   string
	discoverMaxResults int
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Run one discovery pass and store new postings",
	Long:  "Runs every configured search (or the one given by flags) across all active sources once, stores new postings and prints them.",
	RunE:  runDiscover,
}

func init() {
	discoverCmd.Flags().BoolVar(&discoverDryRun, "dry-run", false, "use an in-memory store so nothing is persisted")
	discoverCmd.Flags().StringVarP(&discoverKeywords, "keywords", "k", "", "search keywords (overrides configured searches)")
	discoverCmd.Flags().StringVarP(&discoverLocation, "location", "l", "", "search location")
	discoverCmd.Flags().IntVarP(&discoverMaxResults, "max-results", "n", 0, "maximum postings per search")
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Storage, discoverDryRun, logger)
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

	coord := aggregate.NewCoordinator(adapters, aggregate.Options{SourceTimeout: cfg.Sources.Timeout}, logger)
	pollers := buildPollers(discoverSearches(cfg), cfg.Filters, coord, st, notifier.NewLogNotifier(logger), logger)

	var found []model.Posting
	for _, p := range pollers {
		report, err := p.Poll(ctx)
		if err != nil {
			logger.Error("poll failed", "keywords", p.Query().Keywords, "error", err)
			if errors.Is(err, model.ErrNoSources) || ctx.Err() != nil {
				return err
			}
			continue
		}
		found = append(found, report.New...)
	}

	render.Postings(cmd.OutOrStdout(), found)
	logger.Info("discovery complete", "new", len(found))
	return nil
}

// discoverSearches returns the searches to run, honoring flag overrides.
func discoverSearches(cfg *config.Config) []model.SearchQuery {
	if strings.TrimSpace(discoverKeywords) == "" {
		return cfg.Searches
	}
	return []model.SearchQuery{{
		Keywords:   discoverKeywords,
		Location:   discoverLocation,
		MaxResults: discoverMaxResults,
	}}
}

func buildPollers(searches []model.SearchQuery, fc config.FilterConfig, agg poller.Aggregator, st poller.Store, n model.Notifier, logger *slog.Logger) []*poller.QueryPoller {
	var f model.PostingFilter
	if fc.Enabled() {
		f = filter.NewTitleAndLocationFilter(fc.TitleKeywords, fc.Locations)
		logger.Info("result filter enabled", "title_keywords", fc.TitleKeywords, "locations", fc.Locations)
	}

	pollers := make([]*poller.QueryPoller, 0, len(searches))
	for _, q := range searches {
		p := poller.NewQueryPoller(q, agg, f, st, n, logger)
		pollers = append(pollers, p)
		logger.Info("registered search", "keywords", p.Query().Keywords, "location", p.Query().Location, "max_results", p.Query().MaxResults)
	}
	return pollers
}

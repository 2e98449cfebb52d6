package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/enrich"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Summarize every posting still pending enrichment",
	Long:  "Runs one enrichment pass: each pending posting is summarized by the configured LLM and linked to its summary. Failed postings stay pending.",
	RunE:  runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	extractor, err := buildExtractor(cfg.AI, logger)
	if err != nil {
		logger.Error("cannot enrich", "error", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.Storage, false, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer st.Close()

	pipeline := enrich.NewPipeline(st, extractor, enrich.Options{
		Workers:        cfg.Enrichment.Workers,
		ExtractTimeout: cfg.Enrichment.Timeout,
	}, logger)

	linked, err := pipeline.EnrichPending(ctx)
	if err != nil {
		logger.Error("enrichment failed", "error", err)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d postings enriched\n", linked)
	return nil
}

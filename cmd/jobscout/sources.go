package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/render"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources and whether each is active",
	Long:  "Reads the config and prints every enabled source, marking the ones that will be skipped because their credentials or settings are missing.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	adapters := createAdapters(cfg.Sources, http.DefaultClient, logger)
	statuses := make([]render.SourceStatus, len(adapters))
	for i, a := range adapters {
		statuses[i] = render.SourceStatus{Name: a.Name(), Active: true}
		if err := a.Ready(); err != nil {
			statuses[i].Active = false
			statuses[i].Reason = err.Error()
		}
	}

	render.Sources(cmd.OutOrStdout(), statuses)
	return nil
}

package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/render"
)

var companyCmd = &cobra.Command{
	Use:   "company <name>",
	Short: "Show a review of a company",
	Long:  "Prints the stored profile for a company. When none is stored and AI is enabled, one is generated and saved first.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompany,
}

func init() {
	rootCmd.AddCommand(companyCmd)
}

func runCompany(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	st, err := openStore(context.Background(), cfg.Storage, false, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return err
	}
	defer st.Close()

	p, err := buildCompanies(st, cfg.AI, logger).Profile(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	render.Company(cmd.OutOrStdout(), p, 100)
	return nil
}

package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobscout/internal/query"
	"github.com/amishk599/jobscout/internal/render"
)

var (
	searchLocation string
	searchSort     string
)

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search stored postings",
	Long:  "Lists stored postings whose title, company or description contains text, optionally restricted to one location.",
	RunE:  runSearch,
}

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List the distinct locations of stored postings",
	Args:  cobra.NoArgs,
	RunE:  runLocations,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one posting and its summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	searchCmd.Flags().StringVarP(&searchLocation, "location", "l", "", `exact location, or "All"`)
	searchCmd.Flags().StringVarP(&searchSort, "sort", "s", "default", "sort order: default, recent or company")
	rootCmd.AddCommand(searchCmd, locationsCmd, showCmd)
}

// openQueryService opens the configured store for reading. The caller
// must invoke the returned close func.
func openQueryService() (*query.Service, func() error, error) {
	cfg, logger, err := setup()
	if err != nil {
		return nil, nil, err
	}
	st, err := openStore(context.Background(), cfg.Storage, false, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return nil, nil, err
	}
	return query.NewService(st), st.Close, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	order, err := query.ParseSort(searchSort)
	if err != nil {
		return err
	}

	svc, closeFn, err := openQueryService()
	if err != nil {
		return err
	}
	defer closeFn()

	postings, err := svc.Search(cmd.Context(), query.Filter{
		Text:     strings.Join(args, " "),
		Location: searchLocation,
		Sort:     order,
	})
	if err != nil {
		return err
	}
	render.Postings(cmd.OutOrStdout(), postings)
	return nil
}

func runLocations(cmd *cobra.Command, args []string) error {
	svc, closeFn, err := openQueryService()
	if err != nil {
		return err
	}
	defer closeFn()

	locations, err := svc.DistinctLocations(cmd.Context())
	if err != nil {
		return err
	}
	render.Locations(cmd.OutOrStdout(), locations)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return err
	}

	svc, closeFn, err := openQueryService()
	if err != nil {
		return err
	}
	defer closeFn()

	d, err := svc.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	render.Detail(cmd.OutOrStdout(), d, 100)
	return nil
}

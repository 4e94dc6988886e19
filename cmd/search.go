package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Prakkie91/jobo-go/filter"
	"github.com/Prakkie91/jobo-go/jobo"
	"github.com/Prakkie91/jobo-go/output"
)

type searchFlags struct {
	queries     []string
	locations   []string
	sources     []string
	remote      bool
	postedAfter string
	page        int
	pageSize    int
	all         bool
	filterFlags
}

func newSearchCmd(a *app) *cobra.Command {
	f := &searchFlags{}

	cmd := &cobra.Command{
		Use:   "search [QUERY]",
		Short: "Search jobs by keyword, location and source",
		Long: `Search jobs. A single query and location use the simple search endpoint;
several queries or locations are sent to the advanced search endpoint.
With --all every page is fetched in turn.`,
		Example: `  jobo search "golang developer" --location Berlin
  jobo search -q golang -q rust --location Amsterdam --location Berlin --remote
  jobo search -q "data engineer" --all --limit 200 -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				f.queries = append([]string{args[0]}, f.queries...)
			}
			return a.runSearch(cmd, f)
		},
	}

	cmd.Flags().StringArrayVarP(&f.queries, "query", "q", nil, "search query (repeatable)")
	cmd.Flags().StringArrayVarP(&f.locations, "location", "l", nil, "location, e.g. \"San Francisco\" (repeatable)")
	cmd.Flags().StringSliceVarP(&f.sources, "source", "s", nil, "job source, e.g. greenhouse (repeatable)")
	cmd.Flags().BoolVar(&f.remote, "remote", false, "only remote jobs (--remote=false for on-site only)")
	cmd.Flags().StringVar(&f.postedAfter, "posted-after", "", "only jobs posted after this time (RFC 3339, YYYY-MM-DD, 24h, 7d)")
	cmd.Flags().IntVar(&f.page, "page", jobo.DefaultPage, "page number")
	cmd.Flags().IntVar(&f.pageSize, "page-size", jobo.DefaultPageSize, "results per page")
	cmd.Flags().BoolVar(&f.all, "all", false, "fetch every page")
	f.filterFlags.register(cmd)

	return cmd
}

func (a *app) runSearch(cmd *cobra.Command, f *searchFlags) error {
	client, err := a.apiClient()
	if err != nil {
		return err
	}

	postedAfter, err := parseTimestamp(f.postedAfter, time.Now())
	if err != nil {
		return fmt.Errorf("--posted-after: %w", err)
	}
	match, err := f.resolve(a.filters)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	remote := remoteFlag(cmd, f.remote)

	if f.all {
		opts := &jobo.AdvancedSearchOptions{
			Queries:     f.queries,
			Locations:   f.locations,
			Sources:     f.sources,
			IsRemote:    remote,
			PostedAfter: postedAfter,
			PageSize:    f.pageSize,
		}

		writer := a.printer.Jobs()
		count := 0
		for job, err := range filter.Limit(f.limit, filter.Seq(match, client.Search.Iter(ctx, opts))) {
			if err != nil {
				_ = writer.Close()
				return fmt.Errorf("search stopped after %d jobs: %w", count, err)
			}
			if err := writer.Write(job); err != nil {
				return err
			}
			count++
		}
		a.logger.Info().Int("jobs", count).Msg("Search complete")
		return writer.Close()
	}

	var resp *jobo.JobSearchResponse
	if len(f.queries) <= 1 && len(f.locations) <= 1 {
		opts := &jobo.SearchOptions{
			Query:       first(f.queries),
			Location:    first(f.locations),
			Sources:     f.sources,
			Remote:      remote,
			PostedAfter: postedAfter,
			Page:        f.page,
			PageSize:    f.pageSize,
		}
		resp, err = client.Search.Search(ctx, opts)
	} else {
		opts := &jobo.AdvancedSearchOptions{
			Queries:     f.queries,
			Locations:   f.locations,
			Sources:     f.sources,
			IsRemote:    remote,
			PostedAfter: postedAfter,
			Page:        f.page,
			PageSize:    f.pageSize,
		}
		resp, err = client.Search.SearchAdvanced(ctx, opts)
	}
	if err != nil {
		return err
	}

	jobs := filter.Jobs(match, resp.Jobs)
	if f.limit > 0 && len(jobs) > f.limit {
		jobs = jobs[:f.limit]
	}
	if err := a.printer.WriteJobs(jobs); err != nil {
		return err
	}

	if a.printer.Format() == output.FormatTable {
		fmt.Fprintf(cmd.ErrOrStderr(), "\nPage %d of %d (%d jobs total)\n", resp.Page, resp.TotalPages, resp.Total)
		if resp.HasMorePages() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Next page: --page %d\n", resp.Page+1)
		}
	}
	return nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

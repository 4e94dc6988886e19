package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Prakkie91/jobo-go/filter"
	"github.com/Prakkie91/jobo-go/jobo"
)

type feedFlags struct {
	locations   []string
	sources     []string
	remote      bool
	postedAfter string
	batchSize   int
	cursor      string
	once        bool
	filterFlags
}

func newFeedCmd(a *app) *cobra.Command {
	f := &feedFlags{}

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Stream active jobs from the job feed",
		Long: `Stream active jobs from the Jobo feed, following cursors until the feed is exhausted.

Use --once to fetch a single batch; the cursor for the next batch is logged
and can be passed back with --cursor.`,
		Example: `  jobo feed --location US:CA:"San Francisco" --source greenhouse --remote
  jobo feed --posted-after 7d --where 'MinSalary >= 100000' -o csv > jobs.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFeed(cmd, f)
		},
	}

	cmd.Flags().StringArrayVarP(&f.locations, "location", "l", nil, "location filter country[:region[:city]] (repeatable)")
	cmd.Flags().StringSliceVarP(&f.sources, "source", "s", nil, "job source, e.g. greenhouse (repeatable)")
	cmd.Flags().BoolVar(&f.remote, "remote", false, "only remote jobs (--remote=false for on-site only)")
	cmd.Flags().StringVar(&f.postedAfter, "posted-after", "", "only jobs posted after this time (RFC 3339, YYYY-MM-DD, 24h, 7d)")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", jobo.DefaultBatchSize, "jobs per request")
	cmd.Flags().StringVar(&f.cursor, "cursor", "", "resume from this cursor (implies --once)")
	cmd.Flags().BoolVar(&f.once, "once", false, "fetch a single batch")
	f.filterFlags.register(cmd)

	return cmd
}

func (a *app) runFeed(cmd *cobra.Command, f *feedFlags) error {
	client, err := a.apiClient()
	if err != nil {
		return err
	}

	opts := &jobo.FeedOptions{
		Sources:   f.sources,
		IsRemote:  remoteFlag(cmd, f.remote),
		Cursor:    f.cursor,
		BatchSize: f.batchSize,
	}
	for _, raw := range f.locations {
		loc, err := parseLocationFilter(raw)
		if err != nil {
			return err
		}
		opts.Locations = append(opts.Locations, loc)
	}
	if opts.PostedAfter, err = parseTimestamp(f.postedAfter, time.Now()); err != nil {
		return fmt.Errorf("--posted-after: %w", err)
	}

	match, err := f.resolve(a.filters)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	if f.once || f.cursor != "" {
		resp, err := client.Feed.GetJobs(ctx, opts)
		if err != nil {
			return err
		}
		jobs := filter.Jobs(match, resp.Jobs)
		if f.limit > 0 && len(jobs) > f.limit {
			jobs = jobs[:f.limit]
		}
		a.logger.Info().
			Int("received", len(resp.Jobs)).
			Int("matched", len(jobs)).
			Bool("has_more", resp.HasMore).
			Str("next_cursor", resp.NextCursor).
			Msg("Fetched feed batch")
		return a.printer.WriteJobs(jobs)
	}

	a.logger.Info().
		Int("locations", len(opts.Locations)).
		Strs("sources", opts.Sources).
		Stringer("posted_after", opts.PostedAfter).
		Msg("Streaming job feed")

	writer := a.printer.Jobs()
	count := 0
	for job, err := range filter.Limit(f.limit, filter.Seq(match, client.Feed.IterJobs(ctx, opts))) {
		if err != nil {
			_ = writer.Close()
			return fmt.Errorf("feed stopped after %d jobs: %w", count, err)
		}
		if err := writer.Write(job); err != nil {
			return err
		}
		count++
	}

	a.logger.Info().Int("jobs", count).Msg("Feed complete")
	return writer.Close()
}

type expiredFlags struct {
	since     string
	batchSize int
	limit     int
	cursor    string
	once      bool
}

func newExpiredCmd(a *app) *cobra.Command {
	f := &expiredFlags{}

	cmd := &cobra.Command{
		Use:   "expired",
		Short: "List IDs of jobs that expired since a point in time",
		Long: `List the IDs of jobs that expired since the given time, following cursors
until the list is exhausted. Use this to prune jobs previously synced from the feed.`,
		Example: `  jobo expired --since 24h
  jobo expired --since 2024-05-01 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExpired(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.since, "since", "", "expired since this time (RFC 3339, YYYY-MM-DD, 24h, 7d)")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", jobo.DefaultBatchSize, "IDs per request")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "stop after this many IDs (0 = no limit)")
	cmd.Flags().StringVar(&f.cursor, "cursor", "", "resume from this cursor (implies --once)")
	cmd.Flags().BoolVar(&f.once, "once", false, "fetch a single batch")
	_ = cmd.MarkFlagRequired("since")

	return cmd
}

func (a *app) runExpired(cmd *cobra.Command, f *expiredFlags) error {
	client, err := a.apiClient()
	if err != nil {
		return err
	}

	since, err := parseTimestamp(f.since, time.Now())
	if err != nil {
		return fmt.Errorf("--since: %w", err)
	}
	opts := jobo.ExpiredOptions{
		ExpiredSince: since,
		Cursor:       f.cursor,
		BatchSize:    f.batchSize,
	}

	ctx := cmd.Context()
	writer := a.printer.IDs()

	if f.once || f.cursor != "" {
		resp, err := client.Feed.GetExpiredJobIDs(ctx, opts)
		if err != nil {
			return err
		}
		ids := resp.JobIDs
		if f.limit > 0 && len(ids) > f.limit {
			ids = ids[:f.limit]
		}
		for _, id := range ids {
			if err := writer.Write(id); err != nil {
				return err
			}
		}
		a.logger.Info().
			Int("ids", len(ids)).
			Bool("has_more", resp.HasMore).
			Str("next_cursor", resp.NextCursor).
			Msg("Fetched expired job IDs")
		return writer.Close()
	}

	count := 0
	for id, err := range filter.Limit(f.limit, client.Feed.IterExpiredJobIDs(ctx, opts)) {
		if err != nil {
			_ = writer.Close()
			return fmt.Errorf("expired job listing stopped after %d IDs: %w", count, err)
		}
		if err := writer.Write(id); err != nil {
			return err
		}
		count++
	}

	a.logger.Info().Int("ids", count).Str("since", since.String()).Msg("Expired job IDs listed")
	return writer.Close()
}

package jobo

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strconv"
)

// DefaultBatchSize is the feed batch size used when none is given.
const DefaultBatchSize = 1000

// FeedOptions filters a job feed request.
type FeedOptions struct {
	Locations   []LocationFilter
	Sources     []string
	IsRemote    *bool
	PostedAfter Timestamp
	// Cursor resumes the feed from a previous response; ignored by IterJobs.
	Cursor    string
	BatchSize int
}

// ExpiredOptions selects expired job IDs.
type ExpiredOptions struct {
	// ExpiredSince is required.
	ExpiredSince Timestamp
	// Cursor resumes from a previous response; ignored by IterExpiredJobIDs.
	Cursor    string
	BatchSize int
}

// FeedClient accesses the job feed endpoints
type FeedClient struct {
	http *transport
}

func (o *FeedOptions) request() JobFeedRequest {
	req := JobFeedRequest{BatchSize: DefaultBatchSize}
	if o == nil {
		return req
	}
	req.Locations = o.Locations
	req.Sources = o.Sources
	req.IsRemote = o.IsRemote
	req.PostedAfter = o.PostedAfter.String()
	req.Cursor = o.Cursor
	if o.BatchSize > 0 {
		req.BatchSize = o.BatchSize
	}
	return req
}

// GetJobs fetches a single batch of jobs from the feed
func (c *FeedClient) GetJobs(ctx context.Context, opts *FeedOptions) (*JobFeedResponse, error) {
	var resp JobFeedResponse
	if err := c.http.post(ctx, "/api/feed/jobs", opts.request(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// IterJobs yields every job in the feed, following cursors until the server
// reports no more data. An error is yielded at most once and ends the sequence.
func (c *FeedClient) IterJobs(ctx context.Context, opts *FeedOptions) iter.Seq2[Job, error] {
	return func(yield func(Job, error) bool) {
		var current FeedOptions
		if opts != nil {
			current = *opts
		}
		current.Cursor = ""

		for batch := 1; ; batch++ {
			resp, err := c.GetJobs(ctx, &current)
			if err != nil {
				yield(Job{}, err)
				return
			}

			c.http.logger.Debug().
				Int("batch", batch).
				Int("count", len(resp.Jobs)).
				Bool("has_more", resp.HasMore).
				Msg("Retrieved job feed batch")

			for _, job := range resp.Jobs {
				if !yield(job, nil) {
					return
				}
			}

			if !resp.HasMore {
				return
			}
			if resp.NextCursor == "" || resp.NextCursor == current.Cursor {
				yield(Job{}, ErrMissingCursor)
				return
			}
			current.Cursor = resp.NextCursor
		}
	}
}

// GetExpiredJobIDs fetches a single batch of job IDs that expired since opts.ExpiredSince
func (c *FeedClient) GetExpiredJobIDs(ctx context.Context, opts ExpiredOptions) (*ExpiredJobIDsResponse, error) {
	if opts.ExpiredSince.IsZero() {
		return nil, fmt.Errorf("%w: ExpiredSince is required", ErrInvalidOptions)
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	params := url.Values{}
	params.Set("expired_since", opts.ExpiredSince.String())
	params.Set("batch_size", strconv.Itoa(batchSize))
	if opts.Cursor != "" {
		params.Set("cursor", opts.Cursor)
	}

	var resp ExpiredJobIDsResponse
	if err := c.http.get(ctx, "/api/feed/jobs/expired", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// IterExpiredJobIDs yields every expired job ID, following cursors until exhausted
func (c *FeedClient) IterExpiredJobIDs(ctx context.Context, opts ExpiredOptions) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		current := opts
		current.Cursor = ""

		for batch := 1; ; batch++ {
			resp, err := c.GetExpiredJobIDs(ctx, current)
			if err != nil {
				yield("", err)
				return
			}

			c.http.logger.Debug().
				Int("batch", batch).
				Int("count", len(resp.JobIDs)).
				Bool("has_more", resp.HasMore).
				Msg("Retrieved expired job ID batch")

			for _, id := range resp.JobIDs {
				if !yield(id, nil) {
					return
				}
			}

			if !resp.HasMore {
				return
			}
			if resp.NextCursor == "" || resp.NextCursor == current.Cursor {
				yield("", ErrMissingCursor)
				return
			}
			current.Cursor = resp.NextCursor
		}
	}
}

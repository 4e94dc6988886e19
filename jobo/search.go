package jobo

import (
	"context"
	"iter"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPage is the first page of search results.
	DefaultPage = 1
	// DefaultPageSize is the search page size used when none is given.
	DefaultPageSize = 25
)

// SearchOptions are the query parameters of the simple search endpoint.
type SearchOptions struct {
	Query    string
	Location string
	// Sources are sent comma-joined.
	Sources     []string
	Remote      *bool
	PostedAfter Timestamp
	Page        int
	PageSize    int
}

// AdvancedSearchOptions is the body of the advanced search endpoint.
type AdvancedSearchOptions struct {
	Queries     []string
	Locations   []string
	Sources     []string
	IsRemote    *bool
	PostedAfter Timestamp
	// Page is ignored by Iter, which always starts at the first page.
	Page     int
	PageSize int
}

// SearchClient accesses the job search endpoints
type SearchClient struct {
	http *transport
}

func pageOrDefault(page, pageSize int) (int, int) {
	if page <= 0 {
		page = DefaultPage
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return page, pageSize
}

// Search runs a simple search (GET /api/jobs)
func (c *SearchClient) Search(ctx context.Context, opts *SearchOptions) (*JobSearchResponse, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}

	params := url.Values{}
	if opts.Query != "" {
		params.Set("q", opts.Query)
	}
	if opts.Location != "" {
		params.Set("location", opts.Location)
	}
	if len(opts.Sources) > 0 {
		params.Set("sources", strings.Join(opts.Sources, ","))
	}
	if opts.Remote != nil {
		params.Set("remote", strconv.FormatBool(*opts.Remote))
	}
	if !opts.PostedAfter.IsZero() {
		params.Set("posted_after", opts.PostedAfter.String())
	}
	page, pageSize := pageOrDefault(opts.Page, opts.PageSize)
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))

	var resp JobSearchResponse
	if err := c.http.get(ctx, "/api/jobs", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (o *AdvancedSearchOptions) request() JobSearchRequest {
	if o == nil {
		o = &AdvancedSearchOptions{}
	}
	page, pageSize := pageOrDefault(o.Page, o.PageSize)
	return JobSearchRequest{
		Queries:     o.Queries,
		Locations:   o.Locations,
		Sources:     o.Sources,
		IsRemote:    o.IsRemote,
		PostedAfter: o.PostedAfter.String(),
		Page:        page,
		PageSize:    pageSize,
	}
}

// SearchAdvanced runs a search with list-valued filters (POST /api/jobs/search)
func (c *SearchClient) SearchAdvanced(ctx context.Context, opts *AdvancedSearchOptions) (*JobSearchResponse, error) {
	var resp JobSearchResponse
	if err := c.http.post(ctx, "/api/jobs/search", opts.request(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Iter yields every search result, requesting pages from the first one until
// the last page reported by the server.
func (c *SearchClient) Iter(ctx context.Context, opts *AdvancedSearchOptions) iter.Seq2[Job, error] {
	return func(yield func(Job, error) bool) {
		var current AdvancedSearchOptions
		if opts != nil {
			current = *opts
		}

		for page := DefaultPage; ; page++ {
			current.Page = page
			resp, err := c.SearchAdvanced(ctx, &current)
			if err != nil {
				yield(Job{}, err)
				return
			}

			c.http.logger.Debug().
				Int("page", page).
				Int("total_pages", resp.TotalPages).
				Int("count", len(resp.Jobs)).
				Msg("Retrieved search page")

			for _, job := range resp.Jobs {
				if !yield(job, nil) {
					return
				}
			}

			if page >= resp.TotalPages {
				return
			}
		}
	}
}

package jobo

import (
	"context"
	"iter"
)

// FeedAPI defines the job feed operations
type FeedAPI interface {
	// GetJobs fetches a single batch of jobs
	GetJobs(ctx context.Context, opts *FeedOptions) (*JobFeedResponse, error)

	// IterJobs yields all jobs, following cursors
	IterJobs(ctx context.Context, opts *FeedOptions) iter.Seq2[Job, error]

	// GetExpiredJobIDs fetches a single batch of expired job IDs
	GetExpiredJobIDs(ctx context.Context, opts ExpiredOptions) (*ExpiredJobIDsResponse, error)

	// IterExpiredJobIDs yields all expired job IDs, following cursors
	IterExpiredJobIDs(ctx context.Context, opts ExpiredOptions) iter.Seq2[string, error]
}

// SearchAPI defines the job search operations
type SearchAPI interface {
	Search(ctx context.Context, opts *SearchOptions) (*JobSearchResponse, error)
	SearchAdvanced(ctx context.Context, opts *AdvancedSearchOptions) (*JobSearchResponse, error)
	Iter(ctx context.Context, opts *AdvancedSearchOptions) iter.Seq2[Job, error]
}

// LocationsAPI defines the geocoding operations
type LocationsAPI interface {
	Geocode(ctx context.Context, location string) (*GeocodeResultItem, error)
}

// AutoApplyAPI defines the auto-apply session operations
type AutoApplyAPI interface {
	StartSession(ctx context.Context, applyURL string) (*AutoApplySessionResponse, error)
	SetAnswers(ctx context.Context, sessionID string, answers []FieldAnswer) (*AutoApplySessionResponse, error)
	EndSession(ctx context.Context, sessionID string) (bool, error)
}

var (
	_ FeedAPI      = (*FeedClient)(nil)
	_ SearchAPI    = (*SearchClient)(nil)
	_ LocationsAPI = (*LocationsClient)(nil)
	_ AutoApplyAPI = (*AutoApplyClient)(nil)
)

// Package jobo provides a client for the Jobo Enterprise Jobs API.
//
// The API exposes a bulk job feed, full-text job search, location geocoding and
// automated job applications. This package wraps each endpoint in a small typed
// method and maps HTTP failures onto structured error types.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Client: Holds the immutable configuration and exposes the sub-clients
//   - FeedClient: Cursor-paginated job feed and expired job IDs
//   - SearchClient: Simple (query string) and advanced (JSON body) search
//   - LocationsClient: Geocoding of free-form location strings
//   - AutoApplyClient: Auto-apply sessions, answers and teardown
//   - Errors: Structured error types selected from the HTTP status code
//
// # Usage
//
// Create a client with your API key:
//
//	logger := zerolog.New(os.Stderr)
//	client, err := jobo.NewClient(
//		"your-api-key",
//		jobo.WithTimeout(15*time.Second),
//		jobo.WithLogger(logger),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Stream the whole feed for remote jobs in Germany
//	ctx := context.Background()
//	for job, err := range client.Feed.IterJobs(ctx, &jobo.FeedOptions{
//		Locations: []jobo.LocationFilter{{Country: "DE"}},
//		IsRemote:  jobo.Bool(true),
//	}) {
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(job.Title)
//	}
//
// # Pagination
//
// Every paginated endpoint has a single-page method (GetJobs, GetExpiredJobIDs,
// SearchAdvanced) and an iterator (IterJobs, IterExpiredJobIDs, Iter) returning an
// iter.Seq2. Iterators fetch pages lazily, stop as soon as the server reports no
// more data, and may be abandoned at any point with break.
//
// # Error Handling
//
// Non-2xx responses are returned as one of:
//
//   - AuthenticationError: 401, invalid or missing API key
//   - RateLimitError: 429, with the Retry-After hint when present
//   - ValidationError: 400, rejected request parameters
//   - ServerError: any 5xx status
//   - APIError: every other non-2xx status
//
// All of them unwrap to *APIError, which carries the status code, the detail
// message and the decoded response body:
//
//	var apiErr *jobo.APIError
//	if errors.As(err, &apiErr) && apiErr.IsNotFound() {
//		// Handle missing resource
//	}
//
// Network failures and timeouts are returned as-is (wrapped) and are never
// retried by the client.
package jobo

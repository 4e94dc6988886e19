package jobo

import (
	"fmt"
	"net/http"
	"strings"
)

// Client represents a Jobo Enterprise API client.
//
// A Client is immutable once created and is safe for concurrent use.
type Client struct {
	// Feed accesses the bulk job feed endpoints.
	Feed *FeedClient
	// Search accesses the job search endpoints.
	Search *SearchClient
	// Locations accesses the geocoding endpoint.
	Locations *LocationsClient
	// AutoApply accesses the auto-apply session endpoints.
	AutoApply *AutoApplyClient

	transport *transport
}

// NewClient creates a new Jobo client
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if options.httpClient == nil {
		options.httpClient = &http.Client{}
	}

	t := &transport{
		baseURL:    strings.TrimRight(options.baseURL, "/"),
		apiKey:     apiKey,
		userAgent:  options.userAgent,
		timeout:    options.timeout,
		httpClient: options.httpClient,
		logger:     options.logger.With().Str("component", "jobo").Logger(),
	}

	return &Client{
		Feed:      &FeedClient{http: t},
		Search:    &SearchClient{http: t},
		Locations: &LocationsClient{http: t},
		AutoApply: &AutoApplyClient{http: t},
		transport: t,
	}, nil
}

// BaseURL returns the API host the client talks to
func (c *Client) BaseURL() string {
	return c.transport.baseURL
}

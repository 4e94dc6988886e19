package jobo

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the production Jobo API host.
	DefaultBaseURL = "https://jobs-api.jobo.world"
	// DefaultTimeout bounds every request made by the client.
	DefaultTimeout = 30 * time.Second
	// Version is the library version reported in the User-Agent header.
	Version = "2.0.0"
)

var defaultUserAgent = "jobo-go/" + Version

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	baseURL    string
	timeout    time.Duration
	userAgent  string
	httpClient *http.Client
	logger     zerolog.Logger
}

func defaultOptions() clientOptions {
	return clientOptions{
		baseURL:   DefaultBaseURL,
		timeout:   DefaultTimeout,
		userAgent: defaultUserAgent,
		logger:    zerolog.Nop(),
	}
}

// WithBaseURL overrides the API host, e.g. for a staging environment.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// WithTimeout sets the per-request timeout. Zero disables the client-side deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout >= 0 {
			o.timeout = timeout
		}
	}
}

// WithHTTPClient sets the HTTP client used for all requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

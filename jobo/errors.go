package jobo

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid jobo configuration")
	// ErrInvalidOptions indicates a request is missing a required option
	ErrInvalidOptions = errors.New("invalid request options")
	// ErrMissingCursor indicates the server reported more data without a cursor
	ErrMissingCursor = errors.New("feed reported more results but returned no cursor")
	// ErrUnauthorized indicates authentication failure
	ErrUnauthorized = errors.New("unauthorized: invalid API key")
	// ErrRateLimited indicates the rate limit was exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrValidation indicates the request was rejected as invalid
	ErrValidation = errors.New("request validation failed")
	// ErrServer indicates the API failed to process the request
	ErrServer = errors.New("jobo server error")
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
)

// APIError represents a non-2xx response from the Jobo API
type APIError struct {
	StatusCode int
	// Detail is the "detail" field of a JSON error body, or the raw body text
	Detail string
	// Body is the decoded JSON body, or the raw text if it was not JSON
	Body any
	// RawBody is the response body as received
	RawBody []byte
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("jobo API error: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("jobo API error: HTTP %d: %s", e.StatusCode, e.Detail)
}

// Is reports 404 responses as ErrNotFound
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.IsNotFound()
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsRateLimited checks if the error indicates the rate limit was hit
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsServerError checks if the error is a 5xx response
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// AuthenticationError is returned when the API key is missing or invalid (401).
type AuthenticationError struct {
	*APIError
}

func (e *AuthenticationError) Unwrap() error   { return e.APIError }
func (e *AuthenticationError) Is(t error) bool { return t == ErrUnauthorized }

// RateLimitError is returned when the rate limit is exceeded (429).
type RateLimitError struct {
	*APIError
	// RetryAfter is the delay requested by the Retry-After header, zero if absent.
	RetryAfter time.Duration
}

func (e *RateLimitError) Unwrap() error   { return e.APIError }
func (e *RateLimitError) Is(t error) bool { return t == ErrRateLimited }

// ValidationError is returned when the request is invalid (400).
type ValidationError struct {
	*APIError
}

func (e *ValidationError) Unwrap() error   { return e.APIError }
func (e *ValidationError) Is(t error) bool { return t == ErrValidation }

// ServerError is returned for any 5xx response.
type ServerError struct {
	*APIError
}

func (e *ServerError) Unwrap() error   { return e.APIError }
func (e *ServerError) Is(t error) bool { return t == ErrServer }

// newResponseError selects the error kind for a non-2xx response.
func newResponseError(statusCode int, header http.Header, data []byte) error {
	body, detail := parseErrorBody(data)
	base := &APIError{
		StatusCode: statusCode,
		Detail:     detail,
		Body:       body,
		RawBody:    data,
	}

	switch {
	case statusCode == http.StatusUnauthorized:
		return &AuthenticationError{APIError: base}
	case statusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			APIError:   base,
			RetryAfter: parseRetryAfter(header.Get("Retry-After"), time.Now()),
		}
	case statusCode == http.StatusBadRequest:
		return &ValidationError{APIError: base}
	case statusCode >= http.StatusInternalServerError:
		return &ServerError{APIError: base}
	default:
		return base
	}
}

// parseErrorBody decodes an error body best-effort and extracts its detail message.
func parseErrorBody(data []byte) (any, string) {
	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		text := string(data)
		return text, text
	}

	if obj, ok := body.(map[string]any); ok {
		if detail, ok := obj["detail"]; ok {
			return body, stringify(detail)
		}
	}
	return body, stringify(body)
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(encoded)
	}
}

// parseRetryAfter accepts both delay-seconds and HTTP-date forms.
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil && at.After(now) {
		return at.Sub(now).Round(time.Second)
	}
	return 0
}

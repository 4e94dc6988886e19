package jobo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// transport is the HTTP layer shared by all sub-clients
type transport struct {
	baseURL    string
	apiKey     string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	logger     zerolog.Logger
}

// doRequest performs an authenticated HTTP request and returns the response body
func (t *transport) doRequest(ctx context.Context, method, path string, params url.Values, body any) ([]byte, error) {
	endpoint := t.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Api-Key", t.apiKey)
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	t.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Jobo API request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newResponseError(resp.StatusCode, resp.Header, data)
	}

	return data, nil
}

// get issues a GET and decodes the JSON response into out
func (t *transport) get(ctx context.Context, path string, params url.Values, out any) error {
	data, err := t.doRequest(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return err
	}
	return decode(data, out)
}

// post issues a POST with a JSON body and decodes the JSON response into out
func (t *transport) post(ctx context.Context, path string, body, out any) error {
	data, err := t.doRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	return decode(data, out)
}

// delete issues a DELETE and discards the response body
func (t *transport) delete(ctx context.Context, path string) error {
	_, err := t.doRequest(ctx, http.MethodDelete, path, nil, nil)
	return err
}

func decode(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prakkie91/jobo-go/jobo"
)

// runCLI executes the command tree against server with an isolated config environment
func runCLI(t *testing.T, server *httptest.Server, args ...string) (string, string, error) {
	t.Helper()

	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("JOBO_API_KEY", "")

	full := []string{"--api-key", "test-key"}
	if server != nil {
		full = append(full, "--base-url", server.URL)
	}
	full = append(full, args...)

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(full)
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	data, err := io.ReadAll(r.Body)
	if !assert.NoError(t, err) {
		return nil
	}
	var body map[string]any
	assert.NoError(t, json.Unmarshal(data, &body))
	return body
}

func job(id, title string, remote bool) map[string]any {
	return map[string]any{
		"id":         id,
		"title":      title,
		"company":    map[string]any{"id": "c-" + id, "name": "Acme"},
		"source":     "greenhouse",
		"is_remote":  remote,
		"created_at": "2024-05-01T12:00:00Z",
		"updated_at": "2024-05-01T12:00:00Z",
	}
}

func jsonLineIDs(t *testing.T, out string) []string {
	t.Helper()
	var ids []string
	dec := json.NewDecoder(strings.NewReader(out))
	for dec.More() {
		var j jobo.Job
		require.NoError(t, dec.Decode(&j))
		ids = append(ids, j.ID)
	}
	return ids
}

func TestFeedCommand(t *testing.T) {
	var bodies []map[string]any
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/feed/jobs", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		body := decodeBody(t, r)
		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()

		if body["cursor"] == nil {
			writeJSON(w, http.StatusOK, map[string]any{
				"jobs":        []any{job("1", "Go Engineer", true), job("2", "Office Manager", false)},
				"next_cursor": "c2",
				"has_more":    true,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"jobs":     []any{job("3", "Rust Engineer", true)},
			"has_more": false,
		})
	}))
	defer server.Close()

	stdout, _, err := runCLI(t, server, "feed",
		"--location", "US:CA:San Francisco",
		"--location", "DE",
		"--source", "greenhouse,lever",
		"--remote",
		"--posted-after", "2024-05-01",
		"--batch-size", "2",
		"--where", "IsRemote",
		"-o", "json",
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, jsonLineIDs(t, stdout))

	require.Len(t, bodies, 2)
	first := bodies[0]
	assert.Equal(t, float64(2), first["batch_size"])
	assert.Equal(t, true, first["is_remote"])
	assert.Equal(t, "2024-05-01T00:00:00.000Z", first["posted_after"])
	assert.Equal(t, []any{"greenhouse", "lever"}, first["sources"])
	assert.Equal(t, []any{
		map[string]any{"country": "US", "region": "CA", "city": "San Francisco"},
		map[string]any{"country": "DE"},
	}, first["locations"])
	assert.Equal(t, "c2", bodies[1]["cursor"])
}

func TestFeedCommandLimitStopsPaging(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{
			"jobs":        []any{job(fmt.Sprintf("%d-a", n), "A", true), job(fmt.Sprintf("%d-b", n), "B", true)},
			"next_cursor": fmt.Sprintf("c%d", n),
			"has_more":    true,
		})
	}))
	defer server.Close()

	stdout, _, err := runCLI(t, server, "feed", "--limit", "3", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, []string{"1-a", "1-b", "2-a"}, jsonLineIDs(t, stdout))
	assert.Equal(t, int32(2), calls.Load())
}

func TestFeedCommandOnce(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "resume-here", body["cursor"])
		assert.NotContains(t, body, "is_remote")
		writeJSON(w, http.StatusOK, map[string]any{
			"jobs":        []any{job("9", "Platform Engineer", false)},
			"next_cursor": "after-9",
			"has_more":    true,
		})
	}))
	defer server.Close()

	stdout, stderr, err := runCLI(t, server, "feed", "--cursor", "resume-here")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Platform Engineer")
	assert.Contains(t, stderr, "after-9")
}

func TestFeedCommandStreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"detail": "database unavailable"})
	}))
	defer server.Close()

	_, _, err := runCLI(t, server, "feed")
	require.Error(t, err)
	assert.ErrorIs(t, err, jobo.ErrServer)
	assert.Contains(t, err.Error(), "feed stopped after 0 jobs")
}

func TestExpiredCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/feed/jobs/expired", r.URL.Path)
		assert.Equal(t, "2024-05-01T00:00:00.000Z", r.URL.Query().Get("expired_since"))
		assert.Equal(t, "500", r.URL.Query().Get("batch_size"))

		if r.URL.Query().Get("cursor") == "" {
			writeJSON(w, http.StatusOK, map[string]any{"job_ids": []string{"a", "b"}, "next_cursor": "n1", "has_more": true})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"job_ids": []string{"c"}, "has_more": false})
	}))
	defer server.Close()

	stdout, _, err := runCLI(t, server, "expired", "--since", "2024-05-01", "--batch-size", "500")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc\n", stdout)

	stdout, _, err = runCLI(t, server, "expired", "--since", "2024-05-01", "--batch-size", "500", "-o", "csv")
	require.NoError(t, err)
	assert.Equal(t, "job_id\na\nb\nc\n", stdout)
}

func TestExpiredCommandRequiresSince(t *testing.T) {
	_, _, err := runCLI(t, nil, "expired")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "since")
}

func TestSearchCommand(t *testing.T) {
	var simple, advanced atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/jobs":
			simple.Add(1)
			q := r.URL.Query()
			assert.Equal(t, "golang", q.Get("q"))
			assert.Equal(t, "Berlin", q.Get("location"))
			assert.Equal(t, "greenhouse,lever", q.Get("sources"))
			assert.Equal(t, "false", q.Get("remote"))
			assert.Equal(t, "2", q.Get("page"))
			assert.Equal(t, "10", q.Get("page_size"))
			writeJSON(w, http.StatusOK, map[string]any{
				"jobs": []any{job("1", "Go Developer", false)}, "total": 11, "page": 2, "page_size": 10, "total_pages": 2,
			})
		case "/api/jobs/search":
			advanced.Add(1)
			body := decodeBody(t, r)
			assert.Equal(t, []any{"golang", "rust"}, body["queries"])
			writeJSON(w, http.StatusOK, map[string]any{
				"jobs": []any{job("2", "Rust Developer", true)}, "total": 1, "page": 1, "page_size": 25, "total_pages": 1,
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	stdout, stderr, err := runCLI(t, server, "search", "golang",
		"--location", "Berlin", "--source", "greenhouse", "--source", "lever",
		"--remote=false", "--page", "2", "--page-size", "10")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Go Developer")
	assert.Contains(t, stderr, "Page 2 of 2 (11 jobs total)")
	assert.NotContains(t, stderr, "Next page")

	stdout, _, err = runCLI(t, server, "search", "-q", "golang", "-q", "rust", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, jsonLineIDs(t, stdout))

	assert.Equal(t, int32(1), simple.Load())
	assert.Equal(t, int32(1), advanced.Load())
}

func TestSearchCommandAll(t *testing.T) {
	var pages []float64
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		page, _ := body["page"].(float64)
		mu.Lock()
		pages = append(pages, page)
		mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{
			"jobs":        []any{job(fmt.Sprintf("p%.0f", page), "Engineer", page != 2)},
			"total":       3,
			"page":        page,
			"page_size":   1,
			"total_pages": 3,
		})
	}))
	defer server.Close()

	stdout, _, err := runCLI(t, server, "search", "-q", "engineer", "--all", "--page-size", "1", "--where", "IsRemote", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3"}, jsonLineIDs(t, stdout))
	assert.Equal(t, []float64{1, 2, 3}, pages)
}

func TestPresetFromConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"jobs": []any{job("1", "Go Engineer", true), job("2", "Java Engineer", true)},
			"total": 2, "page": 1, "page_size": 25, "total_pages": 1,
		})
	}))
	defer server.Close()

	configPath := filepath.Join(t.TempDir(), "jobo.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("filter:\n  presets:\n    gophers: 'Title contains \"Go\"'\n"), 0o600))

	stdout, _, err := runCLI(t, server, "--config", configPath, "search", "engineer", "--preset", "gophers", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, jsonLineIDs(t, stdout))

	_, _, err = runCLI(t, server, "--config", configPath, "search", "engineer", "--preset", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gophers")
}

func TestGeocodeCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		input := r.URL.Query().Get("location")
		writeJSON(w, http.StatusOK, map[string]any{
			"input":     input,
			"succeeded": true,
			"method":    "lookup",
			"locations": []any{map[string]any{"display_name": strings.ToUpper(input), "country": "XX"}},
		})
	}))
	defer server.Close()

	stdout, _, err := runCLI(t, server, "geocode", "berlin", "paris", "-o", "json")
	require.NoError(t, err)

	var results []jobo.GeocodeResultItem
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "BERLIN", results[0].Locations[0].DisplayName)
	assert.Equal(t, "PARIS", results[1].Locations[0].DisplayName)
}

type fakeLocations struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	fail     map[string]error
}

func (f *fakeLocations) Geocode(ctx context.Context, location string) (*jobo.GeocodeResultItem, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	if err := f.fail[location]; err != nil {
		return nil, err
	}
	return &jobo.GeocodeResultItem{
		Input:     location,
		Succeeded: true,
		Locations: []jobo.GeocodedLocation{{DisplayName: location}},
	}, nil
}

func TestGeocodeAll(t *testing.T) {
	inputs := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	t.Run("preserves order and bounds concurrency", func(t *testing.T) {
		api := &fakeLocations{}
		results, err := geocodeAll(context.Background(), api, inputs, 3, 0, zerolog.Nop())
		require.NoError(t, err)
		require.Len(t, results, len(inputs))
		for i, r := range results {
			assert.Equal(t, inputs[i], r.Input)
		}
		assert.LessOrEqual(t, api.peak.Load(), int32(3))
	})

	t.Run("records per-input failures", func(t *testing.T) {
		api := &fakeLocations{fail: map[string]error{"c": errors.New("lookup failed")}}
		results, err := geocodeAll(context.Background(), api, inputs, 2, 0, zerolog.Nop())
		require.NoError(t, err)
		assert.False(t, results[2].Succeeded)
		assert.Equal(t, "c", results[2].Input)
		assert.Equal(t, "lookup failed", results[2].Error)
		assert.True(t, results[3].Succeeded)
	})

	t.Run("blank input keeps the argument as given", func(t *testing.T) {
		api := &fakeLocations{}
		results, err := geocodeAll(context.Background(), api, []string{"a", "  ", "b"}, 2, 0, zerolog.Nop())
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "  ", results[1].Input)
		assert.Equal(t, "empty location", results[1].Error)
		assert.False(t, results[1].Succeeded)
		assert.True(t, results[2].Succeeded)
	})

	t.Run("aborts on authentication failure", func(t *testing.T) {
		authErr := &jobo.AuthenticationError{APIError: &jobo.APIError{StatusCode: http.StatusUnauthorized, Detail: "bad key"}}
		api := &fakeLocations{fail: map[string]error{"a": authErr}}
		_, err := geocodeAll(context.Background(), api, inputs, 1, 0, zerolog.Nop())
		require.Error(t, err)
		assert.ErrorIs(t, err, jobo.ErrUnauthorized)
	})

	t.Run("rate limited", func(t *testing.T) {
		api := &fakeLocations{}
		start := time.Now()
		_, err := geocodeAll(context.Background(), api, inputs[:3], 3, 20, zerolog.Nop())
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 2*time.Second)
	})
}

func TestApplyCommands(t *testing.T) {
	var answers []any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/auto-apply/start":
			body := decodeBody(t, r)
			assert.Equal(t, "https://boards.example.com/jobs/1", body["apply_url"])
			writeJSON(w, http.StatusOK, map[string]any{
				"session_id": "sess-1",
				"status":     "awaiting_answers",
				"fields": []any{
					map[string]any{"id": "email", "type": "text", "label": "Email", "is_required": true},
				},
			})
		case r.URL.Path == "/api/auto-apply/set-answers":
			body := decodeBody(t, r)
			assert.Equal(t, "sess-1", body["session_id"])
			answers, _ = body["answers"].([]any)
			writeJSON(w, http.StatusOK, map[string]any{"session_id": "sess-1", "status": "ready", "success": true})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/auto-apply/sessions/sess-1":
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodDelete:
			writeJSON(w, http.StatusNotFound, map[string]any{"detail": "session not found"})
		}
	}))
	defer server.Close()

	stdout, _, err := runCLI(t, server, "apply", "start", "https://boards.example.com/jobs/1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Session:  sess-1")
	assert.Contains(t, stdout, "Fields (1, 1 required)")

	resume := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(resume, []byte("Ada Lovelace"), 0o600))

	_, _, err = runCLI(t, server, "apply", "answer", "sess-1",
		"--field", "email=ada@example.com",
		"--bool", "consent=true",
		"--multi", "languages=en, de",
		"--file", "resume="+resume,
	)
	require.NoError(t, err)
	require.Len(t, answers, 4)
	assert.Equal(t, map[string]any{"field_id": "email", "value": "ada@example.com"}, answers[0])
	assert.Equal(t, map[string]any{"field_id": "consent", "value": true}, answers[1])
	assert.Equal(t, map[string]any{"field_id": "languages", "values": []any{"en", "de"}}, answers[2])
	files := answers[3].(map[string]any)["files"].([]any)
	file := files[0].(map[string]any)
	assert.Equal(t, "cv.txt", file["file_name"])
	assert.Equal(t, "QWRhIExvdmVsYWNl", file["data"])
	assert.True(t, strings.HasPrefix(file["content_type"].(string), "text/plain"))

	stdout, _, err = runCLI(t, server, "apply", "end", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "Session sess-1 ended\n", stdout)

	stdout, _, err = runCLI(t, server, "apply", "end", "gone")
	require.NoError(t, err)
	assert.Equal(t, "Session gone not found\n", stdout)
}

func TestAnswerFlagErrors(t *testing.T) {
	tests := []struct {
		name  string
		flags answerFlags
		want  string
	}{
		{"no answers", answerFlags{}, "no answers given"},
		{"missing separator", answerFlags{fields: []string{"email"}}, "expected FIELD_ID=VALUE"},
		{"empty id", answerFlags{fields: []string{"=x"}}, "expected FIELD_ID=VALUE"},
		{"bad bool", answerFlags{bools: []string{"consent=maybe"}}, "not a boolean"},
		{"missing file", answerFlags{files: []string{"cv=/does/not/exist"}}, "failed to read attachment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.flags.answers()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMissingAPIKey(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("JOBO_API_KEY", "")

	root := newRootCmd()
	root.SetArgs([]string{"feed"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JOBO_API_KEY")
}

func TestUnauthorizedHint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid API key"})
	}))
	defer server.Close()

	_, _, err := runCLI(t, server, "search", "go")
	require.Error(t, err)
	assert.ErrorIs(t, err, jobo.ErrUnauthorized)
	assert.Contains(t, describeError(err), "check api.key")

	rateErr := &jobo.RateLimitError{APIError: &jobo.APIError{StatusCode: 429}, RetryAfter: 30 * time.Second}
	assert.Contains(t, describeError(rateErr), "retry after 30s")
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3", "2024-05-01")
	t.Cleanup(func() { SetVersion("dev", "unknown") })

	stdout, _, err := runCLI(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "jobo 1.2.3 (built 2024-05-01")
	assert.Contains(t, stdout, "SDK "+jobo.Version)
}

func TestUpdateRefusesDevBuild(t *testing.T) {
	_, _, err := runCLI(t, nil, "update")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "development build")
}

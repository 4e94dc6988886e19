package jobo

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJob(id string) Job {
	return Job{
		ID:       id,
		Title:    "Engineer " + id,
		Company:  JobCompany{ID: "c-1", Name: "Acme"},
		Source:   "greenhouse",
		SourceID: "gh-" + id,
	}
}

func TestFeedGetJobs(t *testing.T) {
	t.Run("no filters sends only batch_size", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/feed/jobs", r.URL.Path)
			assert.Equal(t, map[string]any{"batch_size": float64(1000)}, readBody(t, r))
			writeJSON(t, w, http.StatusOK, JobFeedResponse{Jobs: []Job{testJob("1")}, HasMore: false})
		})

		resp, err := client.Feed.GetJobs(context.Background(), nil)
		require.NoError(t, err)
		require.Len(t, resp.Jobs, 1)
		assert.Equal(t, "1", resp.Jobs[0].ID)
		assert.False(t, resp.HasMore)
	})

	t.Run("all filters", func(t *testing.T) {
		posted := time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC)
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			body := readBody(t, r)
			assert.Equal(t, []any{map[string]any{"country": "US", "city": "Austin"}}, body["locations"])
			assert.Equal(t, []any{"greenhouse", "lever"}, body["sources"])
			assert.Equal(t, true, body["is_remote"])
			assert.Equal(t, "2024-03-01T08:30:00.000Z", body["posted_after"])
			assert.Equal(t, "abc", body["cursor"])
			assert.Equal(t, float64(50), body["batch_size"])
			writeJSON(t, w, http.StatusOK, JobFeedResponse{NextCursor: "def", HasMore: true})
		})

		resp, err := client.Feed.GetJobs(context.Background(), &FeedOptions{
			Locations:   []LocationFilter{{Country: "US", City: "Austin"}},
			Sources:     []string{"greenhouse", "lever"},
			IsRemote:    Bool(true),
			PostedAfter: At(posted),
			Cursor:      "abc",
			BatchSize:   50,
		})
		require.NoError(t, err)
		assert.Equal(t, "def", resp.NextCursor)
		assert.True(t, resp.HasMore)
	})

	t.Run("explicit false remote flag is sent", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			body := readBody(t, r)
			assert.Equal(t, false, body["is_remote"])
			writeJSON(t, w, http.StatusOK, JobFeedResponse{})
		})

		_, err := client.Feed.GetJobs(context.Background(), &FeedOptions{IsRemote: Bool(false)})
		require.NoError(t, err)
	})
}

// cursorFeed serves pages keyed by the incoming cursor and records the cursors requested
func cursorFeed(t *testing.T, pages map[string]JobFeedResponse, seen *[]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cursor, _ := readBody(t, r)["cursor"].(string)
		*seen = append(*seen, cursor)
		page, ok := pages[cursor]
		if !ok {
			writeJSON(t, w, http.StatusBadRequest, map[string]string{"detail": "unknown cursor " + cursor})
			return
		}
		writeJSON(t, w, http.StatusOK, page)
	}
}

func TestFeedIterJobs(t *testing.T) {
	pages := map[string]JobFeedResponse{
		"":   {Jobs: []Job{testJob("1"), testJob("2")}, NextCursor: "c1", HasMore: true},
		"c1": {Jobs: []Job{testJob("3")}, NextCursor: "c2", HasMore: true},
		"c2": {Jobs: []Job{testJob("4")}, HasMore: false},
	}

	t.Run("follows cursors until has_more is false", func(t *testing.T) {
		var seen []string
		client := newTestClient(t, cursorFeed(t, pages, &seen))

		var ids []string
		for job, err := range client.Feed.IterJobs(context.Background(), &FeedOptions{Cursor: "ignored"}) {
			require.NoError(t, err)
			ids = append(ids, job.ID)
		}

		assert.Equal(t, []string{"1", "2", "3", "4"}, ids)
		assert.Equal(t, []string{"", "c1", "c2"}, seen)
	})

	t.Run("early break stops fetching", func(t *testing.T) {
		var seen []string
		client := newTestClient(t, cursorFeed(t, pages, &seen))

		var ids []string
		for job, err := range client.Feed.IterJobs(context.Background(), nil) {
			require.NoError(t, err)
			ids = append(ids, job.ID)
			if len(ids) == 2 {
				break
			}
		}

		assert.Equal(t, []string{"1", "2"}, ids)
		assert.Equal(t, []string{""}, seen)
	})

	t.Run("error ends the sequence", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				writeJSON(t, w, http.StatusOK, JobFeedResponse{Jobs: []Job{testJob("1")}, NextCursor: "c1", HasMore: true})
				return
			}
			writeJSON(t, w, http.StatusInternalServerError, map[string]string{"detail": "boom"})
		})

		var ids []string
		var errs []error
		for job, err := range client.Feed.IterJobs(context.Background(), nil) {
			if err != nil {
				errs = append(errs, err)
				continue
			}
			ids = append(ids, job.ID)
		}

		assert.Equal(t, []string{"1"}, ids)
		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], ErrServer)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("missing cursor is reported instead of refetching", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			writeJSON(t, w, http.StatusOK, JobFeedResponse{Jobs: []Job{testJob("1")}, HasMore: true})
		})

		var errs []error
		for _, err := range client.Feed.IterJobs(context.Background(), nil) {
			if err != nil {
				errs = append(errs, err)
			}
		}

		require.Len(t, errs, 1)
		assert.ErrorIs(t, errs[0], ErrMissingCursor)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestFeedGetExpiredJobIDs(t *testing.T) {
	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("query parameters", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/api/feed/jobs/expired", r.URL.Path)
			q := r.URL.Query()
			assert.Equal(t, "2024-05-01T00:00:00.000Z", q.Get("expired_since"))
			assert.Equal(t, "1000", q.Get("batch_size"))
			assert.False(t, q.Has("cursor"))
			writeJSON(t, w, http.StatusOK, ExpiredJobIDsResponse{JobIDs: []string{"a", "b"}})
		})

		resp, err := client.Feed.GetExpiredJobIDs(context.Background(), ExpiredOptions{ExpiredSince: At(since)})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, resp.JobIDs)
	})

	t.Run("string and time inputs are equivalent", func(t *testing.T) {
		var got []string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			got = append(got, r.URL.Query().Get("expired_since"))
			writeJSON(t, w, http.StatusOK, ExpiredJobIDsResponse{})
		})

		ctx := context.Background()
		_, err := client.Feed.GetExpiredJobIDs(ctx, ExpiredOptions{ExpiredSince: At(since.In(time.FixedZone("CEST", 2*3600)))})
		require.NoError(t, err)
		_, err = client.Feed.GetExpiredJobIDs(ctx, ExpiredOptions{ExpiredSince: ISO("2024-05-01T00:00:00.000Z")})
		require.NoError(t, err)

		require.Len(t, got, 2)
		assert.Equal(t, got[0], got[1])
	})

	t.Run("cursor and batch size", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "xyz", q.Get("cursor"))
			assert.Equal(t, "10", q.Get("batch_size"))
			writeJSON(t, w, http.StatusOK, ExpiredJobIDsResponse{})
		})

		_, err := client.Feed.GetExpiredJobIDs(context.Background(), ExpiredOptions{
			ExpiredSince: At(since),
			Cursor:       "xyz",
			BatchSize:    10,
		})
		require.NoError(t, err)
	})

	t.Run("expired since is required", func(t *testing.T) {
		client, err := NewClient("test-key")
		require.NoError(t, err)

		_, err = client.Feed.GetExpiredJobIDs(context.Background(), ExpiredOptions{})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidOptions)
	})
}

func TestFeedIterExpiredJobIDs(t *testing.T) {
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		cursor := r.URL.Query().Get("cursor")
		seen = append(seen, cursor)
		switch cursor {
		case "":
			writeJSON(t, w, http.StatusOK, ExpiredJobIDsResponse{JobIDs: []string{"a", "b"}, NextCursor: "n1", HasMore: true})
		case "n1":
			writeJSON(t, w, http.StatusOK, ExpiredJobIDsResponse{JobIDs: []string{"c"}, HasMore: false})
		default:
			t.Errorf("unexpected cursor %q", cursor)
		}
	})

	var ids []string
	for id, err := range client.Feed.IterExpiredJobIDs(context.Background(), ExpiredOptions{ExpiredSince: ISO("2024-05-01T00:00:00Z")}) {
		require.NoError(t, err)
		ids = append(ids, id)
	}

	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, []string{"", "n1"}, seen)
}

func ExampleFeedClient_IterJobs() {
	client, err := NewClient("your-api-key")
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	for job, err := range client.Feed.IterJobs(ctx, &FeedOptions{Sources: []string{"greenhouse"}}) {
		if err != nil {
			fmt.Println("feed failed:", err)
			break
		}
		fmt.Println(job.Title)
	}
}

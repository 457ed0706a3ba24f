package neynar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func replyJSON(fid int, text, ts string) string {
	return fmt.Sprintf(`{"hash":"0x%d","text":%q,"timestamp":%q,"author":{"fid":%d,"username":"user%d"}}`, fid, text, ts, fid, fid)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{Endpoint: srv.URL, APIKey: "key", CastHash: "0xroot", Timeout: 5 * time.Second})
}

func TestRootCreatedAt(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/farcaster/cast", r.URL.Path)
		assert.Equal(t, "0xroot", r.URL.Query().Get("identifier"))
		assert.Equal(t, "key", r.Header.Get("api_key"))
		fmt.Fprint(w, `{"cast":{"hash":"0xroot","timestamp":"2024-01-01T08:00:00.000Z"}}`)
	})

	ts, err := c.RootCreatedAt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), ts)
}

func TestRootCreatedAtHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	})

	_, err := c.RootCreatedAt(context.Background())
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestRepliesFollowsCursor(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/farcaster/cast/conversation", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "chron", r.URL.Query().Get("sort_type"))
		switch r.URL.Query().Get("cursor") {
		case "":
			fmt.Fprintf(w, `{"conversation":{"cast":{"direct_replies":[%s]}},"next":{"cursor":"c2"}}`,
				replyJSON(1, "05", "2024-01-01T09:00:00Z"))
		case "c2":
			fmt.Fprintf(w, `{"conversation":{"cast":{"direct_replies":[%s,%s]}},"next":null}`,
				replyJSON(2, "17", "2024-01-01T09:10:00Z"), replyJSON(3, "gm", "2024-01-01T09:20:00Z"))
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
	})

	replies, err := c.Replies(context.Background())
	require.NoError(t, err)
	require.Len(t, replies, 3)
	assert.Equal(t, int64(2), replies[1].FID)
	assert.Equal(t, "user2", replies[1].Username)
	assert.Equal(t, "17", replies[1].Text)
	assert.Equal(t, time.Date(2024, 1, 1, 9, 10, 0, 0, time.UTC), replies[1].Timestamp)
}

func TestRepliesPageCeiling(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		fmt.Fprintf(w, `{"conversation":{"cast":{"direct_replies":[%s]}},"next":{"cursor":"c%d"}}`,
			replyJSON(int(n), "1", "2024-01-01T09:00:00Z"), n)
	})

	replies, err := c.Replies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(DefaultMaxPages), calls.Load())
	assert.Len(t, replies, DefaultMaxPages)
}

func TestRepliesFailureDiscardsPages(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprintf(w, `{"conversation":{"cast":{"direct_replies":[%s]}},"next":{"cursor":"more"}}`,
			replyJSON(1, "1", "2024-01-01T09:00:00Z"))
	})

	replies, err := c.Replies(context.Background())
	assert.Nil(t, replies)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
}

func TestRepliesMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	})

	_, err := c.Replies(context.Background())
	assert.Error(t, err)
}

func TestRepliesHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Replies(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsRateLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := c.Replies(context.Background())
	assert.True(t, IsRateLimit(err))

	assert.False(t, IsRateLimit(nil))
	assert.False(t, IsRateLimit(&HTTPError{StatusCode: http.StatusBadGateway}))
	assert.False(t, IsRateLimit(fmt.Errorf("cast 0xabc429 failed: %w", errors.New("HTTP 502"))))
}

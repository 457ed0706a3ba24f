package neynar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/stake-plus/castlotto/src/lottery"
	"github.com/stake-plus/castlotto/src/webclient"
	"go.uber.org/zap"
)

const (
	// DefaultEndpoint is the Neynar v2 API base.
	DefaultEndpoint = "https://api.neynar.com/v2"
	// PageSize is the number of replies requested per conversation page.
	PageSize = 50
	// DefaultMaxPages bounds pagination to roughly 500 replies.
	DefaultMaxPages = 11
)

// Options configures a Client.
type Options struct {
	Endpoint string
	APIKey   string
	CastHash string
	Timeout  time.Duration
	MaxPages int
	Logger   *zap.Logger
}

// Client reads a single root cast and its replies from the Neynar API.
type Client struct {
	endpoint   string
	apiKey     string
	castHash   string
	maxPages   int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Neynar client bound to one root cast.
func NewClient(opts Options) *Client {
	endpoint := strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     opts.APIKey,
		castHash:   strings.TrimSpace(opts.CastHash),
		maxPages:   maxPages,
		httpClient: webclient.NewDefault(opts.Timeout),
		logger:     logger,
	}
}

// HTTPError represents a non-2xx API response.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// IsRateLimit reports whether err wraps a 429 response from the API.
func IsRateLimit(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests
}

// Author is the author block of a cast.
type Author struct {
	FID      int64  `json:"fid"`
	Username string `json:"username"`
}

// Cast is the subset of a Neynar cast this client reads.
type Cast struct {
	Hash          string `json:"hash"`
	Text          string `json:"text"`
	Timestamp     string `json:"timestamp"`
	Author        Author `json:"author"`
	DirectReplies []Cast `json:"direct_replies"`
}

// ParsedTimestamp converts the cast timestamp into time.Time.
func (c Cast) ParsedTimestamp() (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, c.Timestamp); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cast %s: unparseable timestamp %q", c.Hash, c.Timestamp)
}

type castResponse struct {
	Cast Cast `json:"cast"`
}

type conversationResponse struct {
	Conversation struct {
		Cast Cast `json:"cast"`
	} `json:"conversation"`
	Next *struct {
		Cursor string `json:"cursor"`
	} `json:"next"`
}

var _ lottery.Source = (*Client)(nil)

// RootHash returns the hash of the root cast.
func (c *Client) RootHash() string {
	return c.castHash
}

// RootCreatedAt returns the creation time of the root cast.
func (c *Client) RootCreatedAt(ctx context.Context) (time.Time, error) {
	q := url.Values{}
	q.Set("identifier", c.castHash)
	q.Set("type", "hash")

	body, err := c.get(ctx, "/farcaster/cast", q)
	if err != nil {
		return time.Time{}, fmt.Errorf("get root cast: %w", err)
	}
	var resp castResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return time.Time{}, fmt.Errorf("parse root cast response: %w", err)
	}
	return resp.Cast.ParsedTimestamp()
}

// Page fetches one page of direct replies. The returned cursor is empty on
// the last page.
func (c *Client) Page(ctx context.Context, cursor string) ([]lottery.Reply, string, error) {
	q := url.Values{}
	q.Set("identifier", c.castHash)
	q.Set("type", "hash")
	q.Set("reply_depth", "2")
	q.Set("include_chronological_parent_casts", "false")
	q.Set("viewer_fid", "1")
	q.Set("sort_type", "chron")
	q.Set("limit", fmt.Sprint(PageSize))
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	body, err := c.get(ctx, "/farcaster/cast/conversation", q)
	if err != nil {
		return nil, "", fmt.Errorf("get conversation: %w", err)
	}
	var resp conversationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, "", fmt.Errorf("parse conversation response: %w", err)
	}

	replies := make([]lottery.Reply, 0, len(resp.Conversation.Cast.DirectReplies))
	for _, cast := range resp.Conversation.Cast.DirectReplies {
		ts, err := cast.ParsedTimestamp()
		if err != nil {
			return nil, "", err
		}
		replies = append(replies, lottery.Reply{
			Hash:      cast.Hash,
			FID:       cast.Author.FID,
			Username:  cast.Author.Username,
			Text:      cast.Text,
			Timestamp: ts,
		})
	}

	next := ""
	if resp.Next != nil {
		next = resp.Next.Cursor
	}
	return replies, next, nil
}

// Replies walks the conversation pages until there is no next cursor or the
// page ceiling is reached. Any page failure discards everything fetched.
func (c *Client) Replies(ctx context.Context) ([]lottery.Reply, error) {
	var all []lottery.Reply
	cursor := ""
	for page := 1; page <= c.maxPages; page++ {
		replies, next, err := c.Page(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		all = append(all, replies...)
		c.logger.Debug("Fetched reply page",
			zap.Int("page", page),
			zap.Int("replies", len(replies)),
			zap.Bool("more", next != ""))
		if next == "" {
			return all, nil
		}
		cursor = next
	}
	c.logger.Warn("Reply page ceiling reached", zap.Int("pages", c.maxPages), zap.Int("replies", len(all)))
	return all, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api_key", c.apiKey)
	req.Header.Set("x-neynar-experimental", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
		}
	}

	return respBody, nil
}

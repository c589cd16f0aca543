// Package stackexchange provides a client for the Stack Exchange 2.3 API
// covering user search and per-user top tags.
package stackexchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/scoutline/sourcing-cli/internal/resilience"
)

// Client defines the Stack Exchange operations the pipeline uses.
type Client interface {
	// SearchUsers finds users whose display name contains the term.
	SearchUsers(ctx context.Context, inname string, page, pageSize int) (*UsersResponse, error)
	// TopTags returns a user's most-answered tags.
	TopTags(ctx context.Context, userID int64, pageSize int) (*TopTagsResponse, error)
}

// UsersResponse is one page of /users results.
type UsersResponse struct {
	Items   []User `json:"items"`
	HasMore bool   `json:"has_more"`
	Total   int    `json:"total"`
	// QuotaRemaining is decremented by the API per request; zero means the
	// key is exhausted for the day.
	QuotaRemaining int `json:"quota_remaining"`
}

// User is a Stack Exchange user record.
type User struct {
	UserID       int64  `json:"user_id"`
	DisplayName  string `json:"display_name"`
	Location     string `json:"location"`
	AboutMe      string `json:"about_me"`
	ProfileImage string `json:"profile_image"`
	Link         string `json:"link"`
	Reputation   int    `json:"reputation"`
	UserType     string `json:"user_type"`
	CreationDate int64  `json:"creation_date"`
	LastAccess   int64  `json:"last_access_date"`
}

// TopTagsResponse is one page of /users/{id}/top-answer-tags results.
type TopTagsResponse struct {
	Items []TopTag `json:"items"`
}

// TopTag is one tag with answer volume for a user.
type TopTag struct {
	TagName     string `json:"tag_name"`
	AnswerCount int    `json:"answer_count"`
	AnswerScore int    `json:"answer_score"`
}

// Option configures the Stack Exchange client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	key     string
	site    string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Stack Exchange API client for the given site
// (e.g., "stackoverflow"). The key may be empty (shared IP quota).
func NewClient(key, site string, opts ...Option) Client {
	c := &httpClient{
		key:     key,
		site:    site,
		baseURL: "https://api.stackexchange.com/2.3",
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SearchUsers(ctx context.Context, inname string, page, pageSize int) (*UsersResponse, error) {
	q := c.baseQuery()
	q.Set("inname", inname)
	q.Set("page", strconv.Itoa(page))
	q.Set("pagesize", strconv.Itoa(pageSize))
	q.Set("sort", "reputation")
	q.Set("order", "desc")
	q.Set("filter", "!BTeL*PY4DLb2Y2DjUMRfU2)kMr-rt*") // includes about_me and total

	body, err := c.get(ctx, c.baseURL+"/users?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var resp UsersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "stackexchange: decode users response")
	}
	if resp.QuotaRemaining == 0 && len(resp.Items) == 0 {
		return nil, &resilience.QuotaError{Platform: "stackoverflow"}
	}
	return &resp, nil
}

func (c *httpClient) TopTags(ctx context.Context, userID int64, pageSize int) (*TopTagsResponse, error) {
	q := c.baseQuery()
	q.Set("pagesize", strconv.Itoa(pageSize))

	path := fmt.Sprintf("%s/users/%d/top-answer-tags?%s", c.baseURL, userID, q.Encode())
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var resp TopTagsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "stackexchange: decode top tags response")
	}
	return &resp, nil
}

func (c *httpClient) baseQuery() url.Values {
	q := url.Values{}
	q.Set("site", c.site)
	if c.key != "" {
		q.Set("key", c.key)
	}
	return q
}

func (c *httpClient) get(ctx context.Context, fullURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "stackexchange: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "stackexchange: build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "stackexchange: request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "stackexchange: read response body")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &resilience.QuotaError{Platform: "stackoverflow"}
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return nil, resilience.NewTransientError(
			fmt.Errorf("stackexchange: status %d", resp.StatusCode), resp.StatusCode)
	default:
		return nil, eris.Errorf("stackexchange: status %d", resp.StatusCode)
	}
}

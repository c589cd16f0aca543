// Package github provides a minimal client for the GitHub REST API covering
// user search and profile/repository lookups.
package github

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

// Client defines the GitHub operations the pipeline uses.
type Client interface {
	// SearchUsers runs a user search query and returns one page of results.
	SearchUsers(ctx context.Context, query string, page, perPage int) (*UserSearchResponse, error)
	// GetUser fetches the full profile for a login.
	GetUser(ctx context.Context, login string) (*User, error)
	// ListRepos returns the user's repositories, most recently updated first.
	ListRepos(ctx context.Context, login string, perPage int) ([]Repo, error)
}

// UserSearchResponse is one page of /search/users results.
type UserSearchResponse struct {
	TotalCount int          `json:"total_count"`
	Items      []SearchUser `json:"items"`
}

// SearchUser is the abbreviated user shape returned by search.
type SearchUser struct {
	Login     string `json:"login"`
	Type      string `json:"type"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// User is a full GitHub user profile.
type User struct {
	Login       string     `json:"login"`
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	Email       string     `json:"email"`
	Bio         string     `json:"bio"`
	AvatarURL   string     `json:"avatar_url"`
	HTMLURL     string     `json:"html_url"`
	PublicRepos int        `json:"public_repos"`
	Followers   int        `json:"followers"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// Repo is an abbreviated repository record.
type Repo struct {
	Name            string     `json:"name"`
	Language        string     `json:"language"`
	StargazersCount int        `json:"stargazers_count"`
	Fork            bool       `json:"fork"`
	UpdatedAt       *time.Time `json:"updated_at"`
}

// Option configures the GitHub client.
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
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a GitHub API client. The token may be empty for
// unauthenticated access (much lower quota).
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: "https://api.github.com",
		http: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		// Search API allows 30 requests/minute authenticated.
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 3),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SearchUsers(ctx context.Context, query string, page, perPage int) (*UserSearchResponse, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	body, err := c.get(ctx, c.baseURL+"/search/users?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var resp UserSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "github: decode user search response")
	}
	return &resp, nil
}

func (c *httpClient) GetUser(ctx context.Context, login string) (*User, error) {
	body, err := c.get(ctx, c.baseURL+"/users/"+url.PathEscape(login))
	if err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, eris.Wrap(err, "github: decode user response")
	}
	return &user, nil
}

func (c *httpClient) ListRepos(ctx context.Context, login string, perPage int) ([]Repo, error) {
	q := url.Values{}
	q.Set("sort", "updated")
	q.Set("per_page", strconv.Itoa(perPage))

	body, err := c.get(ctx, c.baseURL+"/users/"+url.PathEscape(login)+"/repos?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var repos []Repo
	if err := json.Unmarshal(body, &repos); err != nil {
		return nil, eris.Wrap(err, "github: decode repos response")
	}
	return repos, nil
}

// get issues a single GET and classifies failures. Retry policy lives with
// the caller; this layer only decides transient vs quota vs fatal.
func (c *httpClient) get(ctx context.Context, fullURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "github: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "github: build request")
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "github: request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "github: read response body")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return nil, &resilience.QuotaError{Platform: "github"}
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return nil, resilience.NewTransientError(
			fmt.Errorf("github: status %d", resp.StatusCode), resp.StatusCode)
	default:
		return nil, eris.Errorf("github: status %d: %s", resp.StatusCode, truncate(body, 200))
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Package websearch provides a client for a Jina-style web search and reader
// API, used by the web search and professional-network collectors.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/scoutline/sourcing-cli/internal/resilience"
)

// Client defines the search and reader operations.
type Client interface {
	// Search performs a web search and returns ranked results.
	Search(ctx context.Context, query string, opts ...SearchOption) (*SearchResponse, error)
	// Read fetches a URL through the reader endpoint and returns its content.
	Read(ctx context.Context, targetURL string) (*ReadResponse, error)
}

// SearchResponse is the parsed search API response.
type SearchResponse struct {
	Code int            `json:"code"`
	Data []SearchResult `json:"data"`
}

// SearchResult represents a single web search result.
type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// ReadResponse is the parsed reader API response.
type ReadResponse struct {
	Code int      `json:"code"`
	Data ReadData `json:"data"`
}

// ReadData holds the fetched page content.
type ReadData struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
	HTML    string `json:"html,omitempty"`
}

// SearchOption configures a search request.
type SearchOption func(*searchOpts)

type searchOpts struct {
	siteFilter string
}

// WithSiteFilter restricts search results to a specific domain.
func WithSiteFilter(domain string) SearchOption {
	return func(o *searchOpts) {
		o.siteFilter = domain
	}
}

// Option configures the websearch client.
type Option func(*httpClient)

// WithSearchBaseURL sets a custom search base URL (for testing).
func WithSearchBaseURL(url string) Option {
	return func(c *httpClient) {
		c.searchBaseURL = url
	}
}

// WithReaderBaseURL sets a custom reader base URL (for testing).
func WithReaderBaseURL(url string) Option {
	return func(c *httpClient) {
		c.readerBaseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey        string
	searchBaseURL string
	readerBaseURL string
	http          *http.Client
	limiter       *rate.Limiter
}

// NewClient creates a websearch client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:        apiKey,
		searchBaseURL: "https://s.jina.ai",
		readerBaseURL: "https://r.jina.ai",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string, opts ...SearchOption) (*SearchResponse, error) {
	var o searchOpts
	for _, opt := range opts {
		opt(&o)
	}
	if o.siteFilter != "" {
		query = fmt.Sprintf("site:%s %s", o.siteFilter, query)
	}

	fullURL := c.searchBaseURL + "/?q=" + url.QueryEscape(query)
	body, err := c.get(ctx, fullURL)
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "websearch: decode search response")
	}
	return &resp, nil
}

func (c *httpClient) Read(ctx context.Context, targetURL string) (*ReadResponse, error) {
	body, err := c.get(ctx, c.readerBaseURL+"/"+targetURL)
	if err != nil {
		return nil, err
	}

	var resp ReadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "websearch: decode read response")
	}
	return &resp, nil
}

func (c *httpClient) get(ctx context.Context, fullURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "websearch: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "websearch: build request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "websearch: request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "websearch: read response body")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &resilience.QuotaError{Platform: "websearch"}
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return nil, resilience.NewTransientError(
			fmt.Errorf("websearch: status %d", resp.StatusCode), resp.StatusCode)
	default:
		return nil, eris.Errorf("websearch: status %d", resp.StatusCode)
	}
}

// Package gnews wraps Google Custom Search for location news lookups.
package gnews

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// Client runs news searches against a configured custom search engine.
type Client interface {
	Search(ctx context.Context, query string, limit int) (*SearchResponse, error)
}

// SearchResponse is the custom search API response.
type SearchResponse struct {
	Items []Article `json:"items"`
}

// Article is one search result.
type Article struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	apiKey   string
	searchID string
	baseURL  string
	http     *http.Client
}

// NewClient creates a Google Custom Search client.
func NewClient(apiKey, searchID string, opts ...Option) Client {
	c := &httpClient{
		apiKey:   apiKey,
		searchID: searchID,
		baseURL:  defaultBaseURL,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("cx", c.searchID)
	q.Set("q", query)
	q.Set("num", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "gnews: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "gnews: execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "gnews: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("gnews: unexpected status %d", resp.StatusCode)
	}

	var out SearchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "gnews: decode response")
	}
	return &out, nil
}

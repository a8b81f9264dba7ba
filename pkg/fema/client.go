// Package fema wraps FEMA's open disaster-summaries API, used as a flood
// risk proxy when no dedicated flood service is available.
package fema

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://www.fema.gov/api/open/v1"

// Client fetches FEMA disaster summaries.
type Client interface {
	DisasterSummaries(ctx context.Context, state string) (*SummariesResponse, error)
}

// SummariesResponse is the disaster-summaries API response.
type SummariesResponse struct {
	DisasterSummaries []DisasterSummary `json:"DisasterSummaries"`
}

// DisasterSummary is one declared disaster.
type DisasterSummary struct {
	DisasterNumber  int    `json:"disasterNumber"`
	State           string `json:"state"`
	DeclarationType string `json:"declarationType"`
	IncidentType    string `json:"incidentType"`
	Title           string `json:"declarationTitle"`
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
	baseURL string
	http    *http.Client
}

// NewClient creates a FEMA open-data client. No credential is required.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) DisasterSummaries(ctx context.Context, state string) (*SummariesResponse, error) {
	q := url.Values{}
	q.Set("$filter", fmt.Sprintf("state eq '%s'", state))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/FemaWebDisasterSummaries?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "fema: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "fema: execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "fema: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("fema: unexpected status %d", resp.StatusCode)
	}

	var out SummariesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrap(err, "fema: decode response")
	}
	return &out, nil
}

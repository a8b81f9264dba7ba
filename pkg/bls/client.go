// Package bls wraps the BLS public timeseries API used for local-area
// unemployment series.
package bls

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.bls.gov/publicAPI/v2"

// StatusSucceeded is the API's success status string.
const StatusSucceeded = "REQUEST_SUCCEEDED"

// Client fetches BLS timeseries data.
type Client interface {
	TimeSeries(ctx context.Context, seriesID string, startYear, endYear int) (*SeriesResponse, error)
}

// SeriesResponse is the timeseries API response.
type SeriesResponse struct {
	Status  string   `json:"status"`
	Message []string `json:"message"`
	Results struct {
		Series []Series `json:"series"`
	} `json:"Results"`
}

// Series is one requested series with its observations, most recent first.
type Series struct {
	SeriesID string        `json:"seriesID"`
	Data     []Observation `json:"data"`
}

// Observation is a single monthly data point.
type Observation struct {
	Year   string `json:"year"`
	Period string `json:"period"` // M01..M12
	Value  string `json:"value"`
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
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a BLS API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) TimeSeries(ctx context.Context, seriesID string, startYear, endYear int) (*SeriesResponse, error) {
	payload := map[string]any{
		"seriesid":        []string{seriesID},
		"startyear":       startYear,
		"endyear":         endYear,
		"registrationkey": c.apiKey,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "bls: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/timeseries/data/", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "bls: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "bls: execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "bls: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("bls: unexpected status %d", resp.StatusCode)
	}

	var out SeriesResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, eris.Wrap(err, "bls: decode response")
	}
	return &out, nil
}

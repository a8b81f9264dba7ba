// Package census wraps the two Census Bureau endpoints the analyzer uses:
// the coordinate-to-geography lookup and the ACS 5-year data API.
package census

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL    = "https://api.census.gov/data"
	defaultGeoBaseURL = "https://geocoding.geo.census.gov/geocoder"

	acsVintage = "2022/acs/acs5"
)

// ACS variable codes requested for every tract. The analyzer's derived
// metrics depend on this exact set.
var ACSVariables = []string{
	"B01003_001E", // total population
	"B19013_001E", // median household income
	"B25001_001E", // total housing units
	"B25003_001E", // occupied housing units
	"B25003_002E", // owner occupied
	"B25003_003E", // renter occupied
	"B25077_001E", // median home value
	"B25064_001E", // median gross rent
	"B23025_002E", // labor force
	"B23025_005E", // unemployed
	"B15003_022E", // bachelor's degree
	"B15003_001E", // education universe
}

// Client calls the Census geocoder and ACS data APIs.
type Client interface {
	GeographyForCoordinates(ctx context.Context, lat, lng float64) (*GeographyResponse, error)
	ACS5(ctx context.Context, state, county, tract string) (map[string]string, error)
}

// GeographyResponse is the coordinate lookup response.
type GeographyResponse struct {
	Result struct {
		Geographies map[string][]GeoLayer `json:"geographies"`
	} `json:"result"`
}

// GeoLayer is one administrative unit returned by the geocoder.
type GeoLayer struct {
	GEOID  string `json:"GEOID"`
	Name   string `json:"NAME"`
	State  string `json:"STATE"`
	County string `json:"COUNTY"`
	Tract  string `json:"TRACT"`
}

// Layer names used by the Census geocoder response.
const (
	LayerTracts      = "Census Tracts"
	LayerBlockGroups = "Census Block Groups"
	LayerCounties    = "Counties"
	LayerStates      = "States"
	LayerPlaces      = "Incorporated Places"
	LayerZCTAs       = "Zip Code Tabulation Areas"
)

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the ACS data API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = u }
}

// WithGeoBaseURL overrides the geocoder base URL.
func WithGeoBaseURL(u string) Option {
	return func(c *httpClient) { c.geoBaseURL = u }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	apiKey     string
	baseURL    string
	geoBaseURL string
	http       *http.Client
}

// NewClient creates a Census API client. The geocoder endpoint needs no key;
// the ACS data API does.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		geoBaseURL: defaultGeoBaseURL,
		http:       &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) GeographyForCoordinates(ctx context.Context, lat, lng float64) (*GeographyResponse, error) {
	q := url.Values{}
	q.Set("x", fmt.Sprintf("%f", lng))
	q.Set("y", fmt.Sprintf("%f", lat))
	q.Set("benchmark", "Public_AR_Current")
	q.Set("vintage", "Current_Current")
	q.Set("format", "json")

	body, err := c.get(ctx, c.geoBaseURL+"/geographies/coordinates?"+q.Encode())
	if err != nil {
		return nil, eris.Wrap(err, "census: geography lookup")
	}

	var resp GeographyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "census: decode geography response")
	}
	return &resp, nil
}

// ACS5 fetches the fixed variable set for a tract and returns it keyed by
// variable code.
func (c *httpClient) ACS5(ctx context.Context, state, county, tract string) (map[string]string, error) {
	q := url.Values{}
	q.Set("get", strings.Join(ACSVariables, ","))
	q.Set("for", "tract:"+tract)
	q.Set("in", fmt.Sprintf("state:%s county:%s", state, county))
	q.Set("key", c.apiKey)

	body, err := c.get(ctx, c.baseURL+"/"+acsVintage+"?"+q.Encode())
	if err != nil {
		return nil, eris.Wrap(err, "census: acs5 fetch")
	}

	// The ACS API returns a row-oriented array: header row then value rows.
	var rows [][]string
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, eris.Wrap(err, "census: decode acs5 response")
	}
	if len(rows) < 2 {
		return nil, eris.New("census: acs5 returned no data rows")
	}

	out := make(map[string]string, len(rows[0]))
	for i, header := range rows[0] {
		if i < len(rows[1]) {
			out[header] = rows[1][i]
		}
	}
	return out, nil
}

func (c *httpClient) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

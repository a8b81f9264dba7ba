// Package googlemaps wraps the Google Maps Platform endpoints the analyzer
// uses: forward geocoding and nearby place search.
package googlemaps

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

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

// StatusOK is the provider's success status for both endpoints.
const StatusOK = "OK"

// Client calls the Google Maps geocoding and places APIs.
type Client interface {
	Geocode(ctx context.Context, address string) (*GeocodeResponse, error)
	PlacesNearby(ctx context.Context, lat, lng float64, radiusM int, placeType string) (*PlacesResponse, error)
}

// GeocodeResponse is the geocoding API response.
type GeocodeResponse struct {
	Status  string          `json:"status"`
	Results []GeocodeResult `json:"results"`
}

// GeocodeResult is one candidate match for an address.
type GeocodeResult struct {
	FormattedAddress string   `json:"formatted_address"`
	PlaceID          string   `json:"place_id"`
	Geometry         Geometry `json:"geometry"`
}

// Geometry holds the resolved location of a geocode result.
type Geometry struct {
	Location LatLng `json:"location"`
}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlacesResponse is the nearby-search API response.
type PlacesResponse struct {
	Status  string  `json:"status"`
	Results []Place `json:"results"`
}

// Place is one nearby place result.
type Place struct {
	Name     string   `json:"name"`
	Vicinity string   `json:"vicinity"`
	Rating   float64  `json:"rating"`
	Geometry Geometry `json:"geometry"`
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

// NewClient creates a Google Maps API client.
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

func (c *httpClient) Geocode(ctx context.Context, address string) (*GeocodeResponse, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("key", c.apiKey)

	var resp GeocodeResponse
	if err := c.get(ctx, "/geocode/json?"+q.Encode(), &resp); err != nil {
		return nil, eris.Wrap(err, "googlemaps: geocode")
	}
	return &resp, nil
}

func (c *httpClient) PlacesNearby(ctx context.Context, lat, lng float64, radiusM int, placeType string) (*PlacesResponse, error) {
	q := url.Values{}
	q.Set("location", fmt.Sprintf("%f,%f", lat, lng))
	q.Set("radius", fmt.Sprintf("%d", radiusM))
	q.Set("type", placeType)
	q.Set("key", c.apiKey)

	var resp PlacesResponse
	if err := c.get(ctx, "/place/nearbysearch/json?"+q.Encode(), &resp); err != nil {
		return nil, eris.Wrap(err, "googlemaps: places nearby")
	}
	return &resp, nil
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "decode response")
	}
	return nil
}

package census

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeographyForCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geographies/coordinates", r.URL.Path)
		assert.Equal(t, "Public_AR_Current", r.URL.Query().Get("benchmark"))
		assert.NotEmpty(t, r.URL.Query().Get("x"))
		assert.NotEmpty(t, r.URL.Query().Get("y"))

		var resp GeographyResponse
		resp.Result.Geographies = map[string][]GeoLayer{
			LayerTracts: {{GEOID: "08031000201", Name: "Census Tract 2.01", State: "08", County: "031", Tract: "000201"}},
			LayerStates: {{GEOID: "08", Name: "Colorado", State: "08"}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	c := NewClient("", WithGeoBaseURL(srv.URL))
	resp, err := c.GeographyForCoordinates(context.Background(), 39.7392, -104.9903)
	require.NoError(t, err)

	tracts := resp.Result.Geographies[LayerTracts]
	require.Len(t, tracts, 1)
	assert.Equal(t, "000201", tracts[0].Tract)
}

func TestACS5(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2022/acs/acs5", r.URL.Path)
		assert.Equal(t, "tract:000201", r.URL.Query().Get("for"))
		assert.Equal(t, "state:08 county:031", r.URL.Query().Get("in"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		// Row-oriented: header row then one value row.
		json.NewEncoder(w).Encode([][]string{
			{"B01003_001E", "B19013_001E", "state", "county", "tract"},
			{"4821", "72500", "08", "031", "000201"},
		})
	}))
	t.Cleanup(srv.Close)

	c := NewClient("test-key", WithBaseURL(srv.URL))
	data, err := c.ACS5(context.Background(), "08", "031", "000201")
	require.NoError(t, err)
	assert.Equal(t, "4821", data["B01003_001E"])
	assert.Equal(t, "72500", data["B19013_001E"])
}

func TestACS5NoRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([][]string{{"B01003_001E"}})
	}))
	t.Cleanup(srv.Close)

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.ACS5(context.Background(), "08", "031", "000201")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data rows")
}

func TestACS5ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.ACS5(context.Background(), "08", "031", "000201")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
}

package bls

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/timeseries/data/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []any{"LAUMT19740000000003"}, req["seriesid"])
		assert.Equal(t, "test-key", req["registrationkey"])

		var resp SeriesResponse
		resp.Status = StatusSucceeded
		resp.Results.Series = []Series{{
			SeriesID: "LAUMT19740000000003",
			Data: []Observation{
				{Year: "2026", Period: "M07", Value: "3.8"},
				{Year: "2026", Period: "M06", Value: "3.9"},
			},
		}}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	c := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.TimeSeries(context.Background(), "LAUMT19740000000003", 2023, 2026)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, resp.Status)
	require.Len(t, resp.Results.Series, 1)
	assert.Equal(t, "3.8", resp.Results.Series[0].Data[0].Value)
}

func TestTimeSeriesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.TimeSeries(context.Background(), "LAUMT19740000000003", 2023, 2026)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 429")
}

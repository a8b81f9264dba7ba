package fema

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisasterSummaries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/FemaWebDisasterSummaries", r.URL.Path)
		assert.Equal(t, "state eq 'CO'", r.URL.Query().Get("$filter"))

		json.NewEncoder(w).Encode(SummariesResponse{
			DisasterSummaries: []DisasterSummary{
				{DisasterNumber: 4581, State: "CO", DeclarationType: "DR", IncidentType: "Flood", Title: "Severe Storms and Flooding"},
				{DisasterNumber: 4498, State: "CO", DeclarationType: "EM", IncidentType: "Fire", Title: "Wildfires"},
			},
		})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithBaseURL(srv.URL))
	resp, err := c.DisasterSummaries(context.Background(), "CO")
	require.NoError(t, err)
	require.Len(t, resp.DisasterSummaries, 2)
	assert.Equal(t, "Flood", resp.DisasterSummaries[0].IncidentType)
}

func TestDisasterSummariesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.DisasterSummaries(context.Background(), "CO")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 503")
}

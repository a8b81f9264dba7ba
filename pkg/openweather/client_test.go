package openweather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "imperial", r.URL.Query().Get("units"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))

		w.Write([]byte(`{"main":{"temp":72.5,"humidity":40},"weather":[{"description":"clear sky"}]}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := c.Current(context.Background(), 39.7392, -104.9903)
	require.NoError(t, err)
	require.NotNil(t, resp.Main)
	assert.InDelta(t, 72.5, resp.Main.Temp, 1e-9)
	assert.Equal(t, 40, resp.Main.Humidity)
	require.Len(t, resp.Weather, 1)
	assert.Equal(t, "clear sky", resp.Weather[0].Description)
}

func TestCurrentUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	c := NewClient("bad-key", WithBaseURL(srv.URL))
	_, err := c.Current(context.Background(), 39.7392, -104.9903)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 401")
}

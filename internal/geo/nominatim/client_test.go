package nominatim_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vayuair/vayuair/internal/fault"
	"github.com/vayuair/vayuair/internal/geo/nominatim"
)

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "hinjewadi", r.URL.Query().Get("q"))
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"lat": "18.5912716",
				"lon": "73.7389969",
				"name": "Hinjawadi",
				"display_name": "Hinjawadi, Mulshi, Pune District, Maharashtra, India",
				"address": {"state": "Maharashtra"}
			},
			{
				"lat": "18.6",
				"lon": "73.71",
				"name": "Hinjawadi Phase 2",
				"display_name": "Hinjawadi Phase 2, Maharashtra, India",
				"address": {"state": "Maharashtra"}
			}
		]`))
	}))
	defer server.Close()

	client := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	places, err := client.Search(context.Background(), "hinjewadi")
	require.NoError(t, err)
	require.Len(t, places, 2)

	assert.Equal(t, "Hinjawadi", places[0].Name)
	assert.Equal(t, "Maharashtra", places[0].Region)
	assert.InDelta(t, 18.5912716, places[0].Latitude, 1e-9)
	assert.InDelta(t, 73.7389969, places[0].Longitude, 1e-9)
}

func TestClient_Search_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	places, err := client.Search(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestClient_Search_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	_, err := client.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindNetwork))
}

func TestClient_ReverseGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "18.52", r.URL.Query().Get("lat"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"lat": "18.52",
			"lon": "73.86",
			"name": "Shaniwar Peth",
			"display_name": "Shaniwar Peth, Pune, Maharashtra, India",
			"address": {"city": "Pune", "state": "Maharashtra"}
		}`))
	}))
	defer server.Close()

	client := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: http.DefaultClient,
	})

	label, err := client.ReverseGeocode(context.Background(), 18.52, 73.86)
	require.NoError(t, err)
	assert.Equal(t, "Pune", label)
}

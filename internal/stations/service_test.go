package stations_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vayuair/vayuair/internal/fault"
	"github.com/vayuair/vayuair/internal/geo"
	"github.com/vayuair/vayuair/internal/stations"
)

type mockFinder struct {
	searchResults []stations.Candidate
	boundsResults []stations.Candidate
	err           error
}

func (m *mockFinder) SearchStations(context.Context, string) ([]stations.Candidate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.searchResults, nil
}

func (m *mockFinder) StationsInBounds(context.Context, float64, float64, float64, float64) ([]stations.Candidate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.boundsResults, nil
}

type mockGeocoder struct {
	places []geo.Place
	err    error
}

func (m *mockGeocoder) Search(context.Context, string) ([]geo.Place, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.places, nil
}

func newService(finder stations.Finder, geocoder geo.Geocoder) *stations.Service {
	return stations.NewService(stations.ServiceConfig{
		Finder:   finder,
		Geocoder: geocoder,
		Logger:   zerolog.New(io.Discard),
	})
}

func TestService_SearchByText_KnownCityFirst(t *testing.T) {
	finder := &mockFinder{searchResults: []stations.Candidate{
		{Label: "Karve Road, Pune", LookupKey: "@7397", Latitude: 18.5, Longitude: 73.81},
	}}

	candidates, err := newService(finder, nil).SearchByText(context.Background(), "pune")
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	// The curated city entry outranks provider stations.
	assert.Equal(t, "Pune", candidates[0].Label)
	assert.Equal(t, "pune", candidates[0].LookupKey)
	assert.Contains(t, candidates, stations.Candidate{
		Label: "Karve Road, Pune", LookupKey: "@7397", Latitude: 18.5, Longitude: 73.81,
	})
}

func TestService_SearchByText_FinderFailureDegrades(t *testing.T) {
	finder := &mockFinder{err: fault.New(fault.KindNetwork, "aqicn.search", "unreachable")}

	candidates, err := newService(finder, nil).SearchByText(context.Background(), "pune")
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	assert.Equal(t, "Pune", candidates[0].Label)
}

func TestService_SearchByText_GeocoderSupplement(t *testing.T) {
	geocoder := &mockGeocoder{places: []geo.Place{
		{Name: "Lonar", Region: "Maharashtra", Latitude: 19.98, Longitude: 76.52},
	}}

	candidates, err := newService(nil, geocoder).SearchByText(context.Background(), "lonar")
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	assert.Equal(t, "Lonar", candidates[0].Label)
	// Places without a station id resolve by coordinates.
	assert.Equal(t, "19.98,76.52", candidates[0].LookupKey)
}

func TestService_SearchByText_DedupeAndCap(t *testing.T) {
	var results []stations.Candidate
	for i := 0; i < 20; i++ {
		results = append(results, stations.Candidate{
			Label:     fmt.Sprintf("Station %d", i%15), // duplicates past 15
			LookupKey: fmt.Sprintf("@%d", i%15),
		})
	}
	finder := &mockFinder{searchResults: results}

	candidates, err := newService(finder, nil).SearchByText(context.Background(), "zzz-no-known-city")
	require.NoError(t, err)
	assert.Len(t, candidates, stations.MaxResults)

	seen := make(map[string]bool)
	for _, c := range candidates {
		assert.False(t, seen[c.LookupKey], "duplicate %s", c.LookupKey)
		seen[c.LookupKey] = true
	}
}

func TestService_SearchByText_BlankQuery(t *testing.T) {
	candidates, err := newService(nil, nil).SearchByText(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestService_SearchByBounds(t *testing.T) {
	finder := &mockFinder{boundsResults: []stations.Candidate{
		{Label: "Karve Road, Pune", LookupKey: "@7397", Latitude: 18.5, Longitude: 73.81},
	}}

	candidates, err := newService(finder, nil).SearchByBounds(context.Background(), 18.4, 73.7, 18.6, 73.9)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "@7397", candidates[0].LookupKey)
}

func TestService_SearchByBounds_NoFinder(t *testing.T) {
	// No station index is a normal condition, not an error.
	candidates, err := newService(nil, nil).SearchByBounds(context.Background(), 18.4, 73.7, 18.6, 73.9)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestService_SearchByBounds_ProviderError(t *testing.T) {
	finder := &mockFinder{err: fault.New(fault.KindNetwork, "aqicn.map_bounds", "unreachable")}

	_, err := newService(finder, nil).SearchByBounds(context.Background(), 18.4, 73.7, 18.6, 73.9)
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindNetwork))
}

package geo_test

import (
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vayuair/vayuair/internal/fault"
	"github.com/vayuair/vayuair/internal/geo"
)

type mockGeocoder struct {
	places      []geo.Place
	err         error
	searchCount atomic.Int32
}

func (m *mockGeocoder) Search(_ context.Context, _ string) ([]geo.Place, error) {
	m.searchCount.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.places, nil
}

func TestResolver_KnownCity_SkipsGeocoder(t *testing.T) {
	geocoder := &mockGeocoder{}
	resolver := geo.NewResolver(geocoder, zerolog.New(io.Discard))

	coords, err := resolver.Resolve(context.Background(), "pune")
	require.NoError(t, err)
	assert.Equal(t, geo.Coordinates{Latitude: 18.52, Longitude: 73.86}, coords)
	assert.Equal(t, int32(0), geocoder.searchCount.Load())
}

func TestResolver_KnownCity_CaseInsensitive(t *testing.T) {
	resolver := geo.NewResolver(nil, zerolog.New(io.Discard))

	byKey, err := resolver.Resolve(context.Background(), "PUNE")
	require.NoError(t, err)

	byName, err := resolver.Resolve(context.Background(), "Pune")
	require.NoError(t, err)

	assert.Equal(t, byKey, byName)
}

func TestResolver_Idempotent(t *testing.T) {
	resolver := geo.NewResolver(nil, zerolog.New(io.Discard))
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, "delhi")
	require.NoError(t, err)
	second, err := resolver.Resolve(ctx, "delhi")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolver_CoordinatesPassThrough(t *testing.T) {
	geocoder := &mockGeocoder{}
	resolver := geo.NewResolver(geocoder, zerolog.New(io.Discard))

	coords, err := resolver.Resolve(context.Background(), "18.52, 73.86")
	require.NoError(t, err)
	assert.Equal(t, geo.Coordinates{Latitude: 18.52, Longitude: 73.86}, coords)
	assert.Equal(t, int32(0), geocoder.searchCount.Load())
}

func TestResolver_GeocoderFallback(t *testing.T) {
	geocoder := &mockGeocoder{places: []geo.Place{
		{Name: "Hinjewadi", Region: "Maharashtra", Latitude: 18.59, Longitude: 73.74},
		{Name: "Hinjewadi Phase 2", Region: "Maharashtra", Latitude: 18.6, Longitude: 73.71},
	}}
	resolver := geo.NewResolver(geocoder, zerolog.New(io.Discard))

	// Top-ranked result wins.
	coords, err := resolver.Resolve(context.Background(), "Hinjewadi")
	require.NoError(t, err)
	assert.Equal(t, geo.Coordinates{Latitude: 18.59, Longitude: 73.74}, coords)
	assert.Equal(t, int32(1), geocoder.searchCount.Load())
}

func TestResolver_NotFound(t *testing.T) {
	geocoder := &mockGeocoder{}
	resolver := geo.NewResolver(geocoder, zerolog.New(io.Discard))

	_, err := resolver.Resolve(context.Background(), "nowhere-at-all")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindNotFound))
}

func TestResolver_GeocoderError_Propagates(t *testing.T) {
	geocoder := &mockGeocoder{err: fault.New(fault.KindNetwork, "nominatim.search", "503")}
	resolver := geo.NewResolver(geocoder, zerolog.New(io.Discard))

	_, err := resolver.Resolve(context.Background(), "somewhere")
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindNetwork))
}

func TestFindKnownCity_EmptyIdentifier(t *testing.T) {
	_, ok := geo.FindKnownCity("  ")
	assert.False(t, ok)
}

func TestSearchKnownCities(t *testing.T) {
	matches := geo.SearchKnownCities("maharashtra", 10)
	require.NotEmpty(t, matches)
	assert.LessOrEqual(t, len(matches), 10)
	for _, city := range matches {
		assert.Equal(t, "Maharashtra", city.Region)
	}
}

func TestCoordinates_Valid(t *testing.T) {
	assert.True(t, geo.Coordinates{Latitude: 18.52, Longitude: 73.86}.Valid())
	assert.False(t, geo.Coordinates{}.Valid())
	assert.False(t, geo.Coordinates{Latitude: 91, Longitude: 0.1}.Valid())
}

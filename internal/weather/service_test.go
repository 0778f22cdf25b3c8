package weather_test

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vayuair/vayuair/internal/cache"
	"github.com/vayuair/vayuair/internal/fault"
	"github.com/vayuair/vayuair/internal/geo"
	"github.com/vayuair/vayuair/internal/weather"
)

type mockProvider struct {
	observation *weather.Observation
	err         error
	callCount   atomic.Int32
}

func (m *mockProvider) CurrentObservation(context.Context, float64, float64) (*weather.Observation, error) {
	m.callCount.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	obs := *m.observation
	return &obs, nil
}

func (m *mockProvider) Name() string { return "mock" }

func puneObservation() *weather.Observation {
	return &weather.Observation{
		Temperature:   29.5,
		Humidity:      62,
		WindSpeed:     8.2,
		WindDirection: 270,
		Pressure:      1012,
		Code:          2,
		IsDay:         true,
		Coordinates:   geo.Coordinates{Latitude: 18.52, Longitude: 73.86},
		ObservedAt:    time.Date(2026, 1, 15, 13, 0, 0, 0, time.UTC),
	}
}

func newService(provider weather.Provider) *weather.Service {
	return weather.NewService(weather.ServiceConfig{
		Provider: provider,
		Cache:    cache.New(cache.Config{Store: cache.NewMemoryStore(), Logger: zerolog.New(io.Discard)}),
		Logger:   zerolog.New(io.Discard),
	})
}

func TestService_Observe_Cached(t *testing.T) {
	provider := &mockProvider{observation: puneObservation()}
	svc := newService(provider)
	ctx := context.Background()

	first, err := svc.Observe(ctx, 18.52, 73.86)
	require.NoError(t, err)
	assert.Equal(t, 29.5, first.Temperature)

	// Nearby coordinates reuse the rounded cache entry.
	second, err := svc.Observe(ctx, 18.5211, 73.8595)
	require.NoError(t, err)
	assert.Equal(t, first.Temperature, second.Temperature)
	assert.Equal(t, int32(1), provider.callCount.Load())
}

func TestService_Observe_ProviderError(t *testing.T) {
	provider := &mockProvider{err: fault.New(fault.KindNetwork, "wx", "unreachable")}
	svc := newService(provider)

	_, err := svc.Observe(context.Background(), 18.52, 73.86)
	require.Error(t, err)
	assert.True(t, fault.IsKind(err, fault.KindNetwork))
}

func TestService_Current_ConvertsConditions(t *testing.T) {
	provider := &mockProvider{observation: puneObservation()}
	svc := newService(provider)

	conditions, err := svc.Current(context.Background(), 18.52, 73.86)
	require.NoError(t, err)
	assert.Equal(t, 29.5, conditions.Temperature)
	assert.Equal(t, 62.0, conditions.Humidity)
	assert.Equal(t, 8.2, conditions.WindSpeed)
	assert.Equal(t, 1012.0, conditions.Pressure)
}

func TestObservation_Description(t *testing.T) {
	assert.Equal(t, "Partly cloudy", weather.Observation{Code: 2}.Description())
	assert.Equal(t, "Thunderstorm", weather.Observation{Code: 95}.Description())
	assert.Equal(t, "Unknown", weather.Observation{Code: 42}.Description())
}

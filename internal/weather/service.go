package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vayuair/vayuair/internal/airquality"
	"github.com/vayuair/vayuair/internal/cache"
)

// DefaultTTL is how long observations stay cached. Weather moves
// slower than air quality, so the window is generous.
const DefaultTTL = 10 * time.Minute

// Provider fetches current weather from an upstream.
type Provider interface {
	CurrentObservation(ctx context.Context, lat, lon float64) (*Observation, error)
	Name() string
}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	Provider Provider

	// Cache is optional; without one every call goes upstream.
	Cache *cache.Cache

	// TTL overrides DefaultTTL.
	TTL time.Duration

	Logger zerolog.Logger
}

// Service provides cached weather observations. It also feeds the air
// quality snapshot's weather block through Current.
type Service struct {
	provider Provider
	cache    *cache.Cache
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewService creates a weather service.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		provider: cfg.Provider,
		cache:    cfg.Cache,
		ttl:      ttl,
		logger:   cfg.Logger,
	}
}

// Observe returns the current observation for a point, from cache when
// fresh. Nearby points share entries through the same coordinate
// rounding the air quality cache uses.
func (s *Service) Observe(ctx context.Context, lat, lon float64) (*Observation, error) {
	key := fmt.Sprintf("wx:%.*f:%.*f",
		airquality.CoordinateKeyPrecision, lat,
		airquality.CoordinateKeyPrecision, lon)

	if s.cache != nil {
		if obs, ok := cache.Get[Observation](ctx, s.cache, key); ok {
			return &obs, nil
		}
	}

	obs, err := s.provider.CurrentObservation(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := cache.Put(ctx, s.cache, key, *obs, s.ttl); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("weather cache write rejected")
		}
	}
	return obs, nil
}

// Current implements the snapshot decorator's weather source.
func (s *Service) Current(ctx context.Context, lat, lon float64) (*airquality.Conditions, error) {
	obs, err := s.Observe(ctx, lat, lon)
	if err != nil {
		return nil, err
	}
	return &airquality.Conditions{
		Temperature: obs.Temperature,
		Humidity:    obs.Humidity,
		WindSpeed:   obs.WindSpeed,
		Pressure:    obs.Pressure,
	}, nil
}

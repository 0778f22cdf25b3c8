package airquality

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vayuair/vayuair/internal/cache"
	"github.com/vayuair/vayuair/internal/fault"
	"github.com/vayuair/vayuair/internal/geo"
)

// CoordinateKeyPrecision is the number of decimal places kept when
// building coordinate cache keys. Two decimals are roughly 1 km buckets:
// near-identical coordinates deliberately share a cache entry.
const CoordinateKeyPrecision = 2

// Provider fetches a snapshot for coordinates.
type Provider interface {
	FetchByCoordinates(ctx context.Context, lat, lon float64) (*Snapshot, error)
	Name() string
}

// StationProvider additionally supports station-feed lookups by city or
// station identifier.
type StationProvider interface {
	Provider
	FetchByStation(ctx context.Context, stationID string) (*Snapshot, error)
}

// Forecaster supplies daily pollutant buckets. Forecast data is
// supplementary, so the signature cannot fail; a failing aggregator
// returns an empty map.
type Forecaster interface {
	Forecast(ctx context.Context, lat, lon float64) map[Pollutant][]DailyBucket
}

// WeatherSource supplies a best-effort current weather observation.
type WeatherSource interface {
	Current(ctx context.Context, lat, lon float64) (*Conditions, error)
}

// HealthChecker reports whether an upstream is currently usable.
type HealthChecker interface {
	Healthy(name string) bool
}

// ProviderObserver receives provider call telemetry.
type ProviderObserver interface {
	ObserveProviderCall(ctx context.Context, provider string, err error, elapsed time.Duration)
}

// CoordinateResolver maps a free-text identifier to coordinates.
type CoordinateResolver interface {
	Resolve(ctx context.Context, identifier string) (geo.Coordinates, error)
}

// ServiceConfig holds configuration for the snapshot service.
type ServiceConfig struct {
	// Primary is the station-feed provider (required).
	Primary StationProvider

	// Secondary is the model-based provider used when the primary has no
	// nearby station or its circuit is open (optional).
	Secondary Provider

	// Forecaster populates Snapshot.Forecast (optional).
	Forecaster Forecaster

	// Weather populates Snapshot.Weather (optional).
	Weather WeatherSource

	// ReverseGeocoder labels snapshots that arrive without a place name
	// (optional).
	ReverseGeocoder geo.ReverseGeocoder

	// Health gates the primary provider (optional).
	Health HealthChecker

	// Cache stores snapshots (required).
	Cache *cache.Cache

	// CacheTTL for snapshot entries (default: cache.DefaultAQITTL).
	CacheTTL time.Duration

	// Logger for service operations.
	Logger zerolog.Logger

	// Observer receives provider call telemetry (optional).
	Observer ProviderObserver

	// Resolver maps free-text identifiers to coordinates for Fetch
	// (optional).
	Resolver CoordinateResolver
}

// Service resolves coordinates or city identifiers to snapshots,
// consulting the cache before upstream providers.
type Service struct {
	primary    StationProvider
	secondary  Provider
	forecaster Forecaster
	weather    WeatherSource
	reverse    geo.ReverseGeocoder
	health     HealthChecker
	cache      *cache.Cache
	cacheTTL   time.Duration
	logger     zerolog.Logger
	observer   ProviderObserver
	resolver   CoordinateResolver
}

// NewService creates a snapshot service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = cache.DefaultAQITTL
	}

	return &Service{
		primary:    cfg.Primary,
		secondary:  cfg.Secondary,
		forecaster: cfg.Forecaster,
		weather:    cfg.Weather,
		reverse:    cfg.ReverseGeocoder,
		health:     cfg.Health,
		cache:      cfg.Cache,
		cacheTTL:   cacheTTL,
		logger:     cfg.Logger,
		observer:   cfg.Observer,
		resolver:   cfg.Resolver,
	}
}

// Fetch dispatches an identifier to the right lookup: "lat,lon"
// literals and resolvable place names go by coordinates, known city
// keys and "@uid" station ids go through the station feed.
func (s *Service) Fetch(ctx context.Context, identifier string, forceRefresh bool) (*Snapshot, error) {
	identifier = strings.TrimSpace(identifier)

	if coords, ok := geo.ParseCoordinates(identifier); ok {
		return s.FetchByCoordinates(ctx, coords.Latitude, coords.Longitude, forceRefresh)
	}
	if strings.HasPrefix(identifier, "@") {
		return s.FetchByCity(ctx, identifier, forceRefresh)
	}
	if _, ok := geo.FindKnownCity(identifier); ok {
		return s.FetchByCity(ctx, identifier, forceRefresh)
	}

	if s.resolver != nil {
		coords, err := s.resolver.Resolve(ctx, identifier)
		if err != nil {
			return nil, err
		}
		return s.FetchByCoordinates(ctx, coords.Latitude, coords.Longitude, forceRefresh)
	}

	// No resolver: let the station feed try it as a city id.
	return s.FetchByCity(ctx, identifier, forceRefresh)
}

// FetchByCoordinates returns the snapshot for a location. Unless
// forceRefresh is set, a structurally valid cache entry is served first.
// A forced refresh always issues a live call and overwrites the entry.
func (s *Service) FetchByCoordinates(ctx context.Context, lat, lon float64, forceRefresh bool) (*Snapshot, error) {
	key := coordinateKey(lat, lon)

	if !forceRefresh {
		if snap, ok := s.cachedSnapshot(ctx, key); ok {
			return snap, nil
		}
	}

	snap, err := s.fetchLive(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	s.decorate(ctx, snap, lat, lon)
	s.storeSnapshot(ctx, key, snap)
	return snap, nil
}

// FetchByCity returns the snapshot for a known city or station feed
// identifier, using the primary provider's station lookup.
func (s *Service) FetchByCity(ctx context.Context, cityID string, forceRefresh bool) (*Snapshot, error) {
	key := "aqi:city:" + strings.ToLower(strings.TrimSpace(cityID))

	if !forceRefresh {
		if snap, ok := s.cachedSnapshot(ctx, key); ok {
			return snap, nil
		}
	}

	snap, err := s.callStation(ctx, cityID)
	if err != nil {
		return nil, err
	}

	s.decorate(ctx, snap, snap.Coordinates.Latitude, snap.Coordinates.Longitude)
	s.storeSnapshot(ctx, key, snap)
	return snap, nil
}

// ClearCache removes all snapshot entries.
func (s *Service) ClearCache(ctx context.Context) {
	s.cache.Clear(ctx, "aqi:")
}

// cachedSnapshot returns a cache hit only when the entry carries
// coordinates, which proves it matches the current schema version.
// Stale-shaped entries from earlier schemas fall through to a live fetch.
func (s *Service) cachedSnapshot(ctx context.Context, key string) (*Snapshot, bool) {
	snap, ok := cache.Get[Snapshot](ctx, s.cache, key)
	if !ok {
		return nil, false
	}
	if !snap.Coordinates.Valid() {
		s.logger.Debug().Str("key", key).Msg("cached snapshot predates current schema, refetching")
		return nil, false
	}
	snap.ServedFromCache = true
	return &snap, true
}

func (s *Service) storeSnapshot(ctx context.Context, key string, snap *Snapshot) {
	if err := cache.Put(ctx, s.cache, key, snap, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache snapshot")
	}
}

// fetchLive picks a provider and fetches. The primary is skipped when
// its circuit is open; a primary "no station nearby" answer falls back
// to the secondary's model-based estimates.
func (s *Service) fetchLive(ctx context.Context, lat, lon float64) (*Snapshot, error) {
	primaryUsable := s.health == nil || s.health.Healthy(s.primary.Name())

	if primaryUsable {
		snap, err := s.callCoordinates(ctx, s.primary, lat, lon)
		if err == nil {
			return snap, nil
		}
		if s.secondary == nil || !fault.IsKind(err, fault.KindNotFound) {
			return nil, err
		}
		s.logger.Debug().
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("no station nearby, falling back to model-based provider")
	} else {
		s.logger.Warn().
			Str("provider", s.primary.Name()).
			Msg("primary provider unhealthy, using secondary")
		if s.secondary == nil {
			return nil, fault.New(fault.KindUnavailable, "airquality.fetch", "primary provider unavailable")
		}
	}

	return s.callCoordinates(ctx, s.secondary, lat, lon)
}

func (s *Service) callCoordinates(ctx context.Context, p Provider, lat, lon float64) (*Snapshot, error) {
	start := time.Now()
	snap, err := p.FetchByCoordinates(ctx, lat, lon)
	s.observe(ctx, p.Name(), err, time.Since(start))
	return snap, err
}

func (s *Service) callStation(ctx context.Context, stationID string) (*Snapshot, error) {
	start := time.Now()
	snap, err := s.primary.FetchByStation(ctx, stationID)
	s.observe(ctx, s.primary.Name(), err, time.Since(start))
	return snap, err
}

func (s *Service) observe(ctx context.Context, provider string, err error, elapsed time.Duration) {
	if s.observer != nil {
		s.observer.ObserveProviderCall(ctx, provider, err, elapsed)
	}
}

// decorate fills the supplementary fields: forecast, weather, and a
// reverse-geocoded label when the provider returned none. All of them
// are best-effort.
func (s *Service) decorate(ctx context.Context, snap *Snapshot, lat, lon float64) {
	if s.forecaster != nil {
		snap.Forecast = s.forecaster.Forecast(ctx, lat, lon)
	}

	if s.weather != nil {
		conditions, err := s.weather.Current(ctx, lat, lon)
		if err != nil {
			s.logger.Warn().Err(err).Msg("weather unavailable, omitting from snapshot")
		} else {
			snap.Weather = conditions
		}
	}

	if snap.LocationLabel == "" && s.reverse != nil {
		label, err := s.reverse.ReverseGeocode(ctx, lat, lon)
		if err != nil {
			s.logger.Debug().Err(err).Msg("reverse geocode failed, leaving label empty")
		} else {
			snap.LocationLabel = label
			if snap.StationLabel == "" {
				snap.StationLabel = label
			}
		}
	}
}

// coordinateKey quantizes coordinates into the shared cache key format.
func coordinateKey(lat, lon float64) string {
	return "aqi:geo:" +
		strconv.FormatFloat(lat, 'f', CoordinateKeyPrecision, 64) + ":" +
		strconv.FormatFloat(lon, 'f', CoordinateKeyPrecision, 64)
}

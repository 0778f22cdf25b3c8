package geo

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vayuair/vayuair/internal/fault"
)

// Geocoder turns free-text place names into ranked candidate places.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]Place, error)
}

// ReverseGeocoder labels coordinates with a human-readable place name.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// Resolver maps a user-facing identifier (known lookup key, free-text
// name, or "lat,lon" literal) to coordinates. The static city table is
// consulted before the geocoder: table lookups are instant and free,
// geocoding is rate-limited and slow.
type Resolver struct {
	geocoder Geocoder
	logger   zerolog.Logger
}

// NewResolver creates a resolver with the given geocoding fallback.
// A nil geocoder disables the fallback; unknown identifiers then fail
// with a not-found error.
func NewResolver(geocoder Geocoder, logger zerolog.Logger) *Resolver {
	return &Resolver{geocoder: geocoder, logger: logger}
}

// Resolve returns coordinates for an identifier. Pure lookup, no caching:
// coordinates are cheap to recompute and the downstream fetcher caches.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (Coordinates, error) {
	const op = "geo.resolve"

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return Coordinates{}, fault.New(fault.KindNotFound, op, "empty identifier")
	}

	// Already-resolved coordinates pass through.
	if coords, ok := ParseCoordinates(identifier); ok {
		return coords, nil
	}

	if city, ok := FindKnownCity(identifier); ok {
		return city.Coordinates(), nil
	}

	if r.geocoder == nil {
		return Coordinates{}, fault.New(fault.KindNotFound, op, "no match for "+identifier)
	}

	places, err := r.geocoder.Search(ctx, identifier)
	if err != nil {
		return Coordinates{}, err
	}
	if len(places) == 0 {
		return Coordinates{}, fault.New(fault.KindNotFound, op, "no match for "+identifier)
	}

	top := places[0]
	r.logger.Debug().
		Str("identifier", identifier).
		Str("place", top.Name).
		Msg("resolved via geocoder")

	return Coordinates{Latitude: top.Latitude, Longitude: top.Longitude}, nil
}

// ParseCoordinates accepts "lat,lon" literals.
func ParseCoordinates(s string) (Coordinates, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinates{}, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinates{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinates{}, false
	}

	coords := Coordinates{Latitude: lat, Longitude: lon}
	if !coords.Valid() {
		return Coordinates{}, false
	}
	return coords, true
}

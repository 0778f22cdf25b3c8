// Package stations finds candidate stations and places for the user to
// pick from, by free-text query or by map bounding box.
package stations

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vayuair/vayuair/internal/geo"
)

// MaxResults caps every search result list.
const MaxResults = 10

// Candidate is one pickable station or place.
type Candidate struct {
	// Label is the display name.
	Label string `json:"label"`

	// Region is the state or country context, if known.
	Region string `json:"region,omitempty"`

	// LookupKey feeds straight back into the fetcher (city id or
	// station feed id).
	LookupKey string `json:"lookupKey"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Finder searches the station provider's own index.
type Finder interface {
	// SearchStations finds stations matching a keyword.
	SearchStations(ctx context.Context, keyword string) ([]Candidate, error)

	// StationsInBounds lists stations inside a bounding box.
	StationsInBounds(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]Candidate, error)
}

// ServiceConfig holds configuration for the search service.
type ServiceConfig struct {
	// Finder is the station provider's search capability (optional:
	// some providers have no station index).
	Finder Finder

	// Geocoder supplements text search with general places (optional).
	Geocoder geo.Geocoder

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service performs candidate searches. Results are query-shaped and
// cheap, so nothing here is cached.
type Service struct {
	finder   Finder
	geocoder geo.Geocoder
	logger   zerolog.Logger
}

// NewService creates a search service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		finder:   cfg.Finder,
		geocoder: cfg.Geocoder,
		logger:   cfg.Logger,
	}
}

// SearchByText returns candidates for a free-text query: known-city
// table matches first, then provider station search, then geocoded
// places, deduplicated and capped at MaxResults.
func (s *Service) SearchByText(ctx context.Context, query string) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	var candidates []Candidate
	for _, city := range geo.SearchKnownCities(query, MaxResults) {
		candidates = append(candidates, Candidate{
			Label:     city.DisplayName,
			Region:    city.Region,
			LookupKey: city.LookupKey,
			Latitude:  city.Latitude,
			Longitude: city.Longitude,
		})
	}

	if s.finder != nil && len(candidates) < MaxResults {
		found, err := s.finder.SearchStations(ctx, query)
		if err != nil {
			s.logger.Warn().Err(err).Str("query", query).Msg("station search failed, using table matches only")
		} else {
			candidates = append(candidates, found...)
		}
	}

	if s.geocoder != nil && len(candidates) < MaxResults {
		places, err := s.geocoder.Search(ctx, query)
		if err != nil {
			s.logger.Warn().Err(err).Str("query", query).Msg("geocoder search failed")
		} else {
			for _, place := range places {
				candidates = append(candidates, Candidate{
					Label:     place.Name,
					Region:    place.Region,
					LookupKey: coordinateLookupKey(place.Latitude, place.Longitude),
					Latitude:  place.Latitude,
					Longitude: place.Longitude,
				})
			}
		}
	}

	return capResults(dedupe(candidates)), nil
}

// SearchByBounds lists stations inside a bounding box. Providers without
// a station index yield an empty list; callers must treat "no
// candidates" as a normal, renderable state.
func (s *Service) SearchByBounds(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]Candidate, error) {
	if s.finder == nil {
		return nil, nil
	}

	candidates, err := s.finder.StationsInBounds(ctx, minLat, minLon, maxLat, maxLon)
	if err != nil {
		return nil, err
	}
	return capResults(candidates), nil
}

func dedupe(candidates []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		key := c.LookupKey
		if key == "" {
			key = c.Label
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

func capResults(candidates []Candidate) []Candidate {
	if len(candidates) > MaxResults {
		return candidates[:MaxResults]
	}
	return candidates
}

func coordinateLookupKey(lat, lon float64) string {
	return geo.Coordinates{Latitude: lat, Longitude: lon}.String()
}

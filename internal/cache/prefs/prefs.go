// Package prefs stores small user preferences in the shared local store:
// the recently used cities, the selected city, and the preferred language.
// Everything lives under the common namespace so a full cache reset wipes
// preferences too.
package prefs

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/vayuair/vayuair/internal/cache"
)

// MaxRecentCities bounds the most-recent-first city list.
const MaxRecentCities = 5

const (
	recentCitiesKey = cache.Namespace + "recent_cities"
	selectedCityKey = cache.Namespace + "selected_city"
	languageKey     = cache.Namespace + "language"
)

// Prefs reads and writes user preferences. Store failures degrade to
// zero values; preferences are never load-bearing.
type Prefs struct {
	store  cache.Store
	logger zerolog.Logger
}

// New creates a preference accessor over the given store.
func New(store cache.Store, logger zerolog.Logger) *Prefs {
	return &Prefs{store: store, logger: logger}
}

// RecentCities returns the recently used city identifiers,
// most recent first.
func (p *Prefs) RecentCities(ctx context.Context) []string {
	raw, err := p.store.Get(ctx, recentCitiesKey)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			p.logger.Warn().Err(err).Msg("failed to read recent cities")
		}
		return nil
	}

	var cities []string
	if err := json.Unmarshal(raw, &cities); err != nil {
		p.logger.Warn().Err(err).Msg("recent cities entry corrupt")
		return nil
	}
	return cities
}

// AddRecentCity records a city as most recently used. The list is
// deduplicated and capped at MaxRecentCities.
func (p *Prefs) AddRecentCity(ctx context.Context, cityID string) {
	if cityID == "" {
		return
	}

	updated := []string{cityID}
	for _, c := range p.RecentCities(ctx) {
		if c == cityID {
			continue
		}
		updated = append(updated, c)
		if len(updated) == MaxRecentCities {
			break
		}
	}

	raw, err := json.Marshal(updated)
	if err != nil {
		return
	}
	if err := p.store.Set(ctx, recentCitiesKey, raw); err != nil {
		p.logger.Warn().Err(err).Str("city", cityID).Msg("failed to save recent city")
	}
}

// SelectedCity returns the currently selected city identifier, or "".
func (p *Prefs) SelectedCity(ctx context.Context) string {
	return p.getString(ctx, selectedCityKey)
}

// SetSelectedCity stores the currently selected city identifier.
func (p *Prefs) SetSelectedCity(ctx context.Context, cityID string) {
	p.setString(ctx, selectedCityKey, cityID)
}

// Language returns the preferred language code, or "".
func (p *Prefs) Language(ctx context.Context) string {
	return p.getString(ctx, languageKey)
}

// SetLanguage stores the preferred language code.
func (p *Prefs) SetLanguage(ctx context.Context, code string) {
	p.setString(ctx, languageKey, code)
}

func (p *Prefs) getString(ctx context.Context, key string) string {
	raw, err := p.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			p.logger.Warn().Err(err).Str("key", key).Msg("failed to read preference")
		}
		return ""
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}

func (p *Prefs) setString(ctx context.Context, key, value string) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := p.store.Set(ctx, key, raw); err != nil {
		p.logger.Warn().Err(err).Str("key", key).Msg("failed to save preference")
	}
}

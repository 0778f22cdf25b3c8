package prefs_test

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/vayuair/vayuair/internal/cache"
	"github.com/vayuair/vayuair/internal/cache/prefs"
)

func newTestPrefs() *prefs.Prefs {
	return prefs.New(cache.NewMemoryStore(), zerolog.New(io.Discard))
}

func TestRecentCities_MostRecentFirst(t *testing.T) {
	p := newTestPrefs()
	ctx := context.Background()

	p.AddRecentCity(ctx, "pune")
	p.AddRecentCity(ctx, "delhi")
	p.AddRecentCity(ctx, "mumbai")

	assert.Equal(t, []string{"mumbai", "delhi", "pune"}, p.RecentCities(ctx))
}

func TestRecentCities_Deduplicates(t *testing.T) {
	p := newTestPrefs()
	ctx := context.Background()

	p.AddRecentCity(ctx, "pune")
	p.AddRecentCity(ctx, "delhi")
	p.AddRecentCity(ctx, "pune")

	assert.Equal(t, []string{"pune", "delhi"}, p.RecentCities(ctx))
}

func TestRecentCities_Bounded(t *testing.T) {
	p := newTestPrefs()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		p.AddRecentCity(ctx, id)
	}

	cities := p.RecentCities(ctx)
	assert.Len(t, cities, prefs.MaxRecentCities)
	assert.Equal(t, []string{"g", "f", "e", "d", "c"}, cities)
}

func TestSelectedCity_RoundTrip(t *testing.T) {
	p := newTestPrefs()
	ctx := context.Background()

	assert.Empty(t, p.SelectedCity(ctx))

	p.SetSelectedCity(ctx, "pune")
	assert.Equal(t, "pune", p.SelectedCity(ctx))
}

func TestLanguage_RoundTrip(t *testing.T) {
	p := newTestPrefs()
	ctx := context.Background()

	assert.Empty(t, p.Language(ctx))

	p.SetLanguage(ctx, "hi")
	assert.Equal(t, "hi", p.Language(ctx))
}

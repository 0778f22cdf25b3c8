// Package geo resolves user-facing location identifiers to coordinates.
package geo

import (
	"math"
	"strconv"
)

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinates are inside the WGS84 envelope
// and not the (0,0) null island placeholder.
func (c Coordinates) Valid() bool {
	if c.Latitude == 0 && c.Longitude == 0 {
		return false
	}
	return math.Abs(c.Latitude) <= 90 && math.Abs(c.Longitude) <= 180
}

// String renders "lat,lon", the literal identifier form Resolve accepts.
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," +
		strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// KnownCity is static reference data for a city with a well-known
// station feed identifier. The table is immutable and loaded at startup.
type KnownCity struct {
	// DisplayName is the English city name.
	DisplayName string

	// LocalizedName is the city name in the regional language, if any.
	LocalizedName string

	// Region is the state or territory the city belongs to.
	Region string

	// LookupKey is the identifier used by the primary station feed.
	LookupKey string

	Latitude  float64
	Longitude float64
}

// Coordinates returns the city's coordinates.
func (c KnownCity) Coordinates() Coordinates {
	return Coordinates{Latitude: c.Latitude, Longitude: c.Longitude}
}

// Place is one geocoding result.
type Place struct {
	Name      string
	Region    string
	Latitude  float64
	Longitude float64
}

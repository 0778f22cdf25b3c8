// Package weather provides current meteorological conditions for the
// dashboard's weather strip.
package weather

import (
	"time"

	"github.com/vayuair/vayuair/internal/geo"
)

// Observation is current weather at a point.
type Observation struct {
	// Temperature in degrees Celsius.
	Temperature float64 `json:"temperature"`

	// ApparentTemperature is the feels-like temperature in Celsius.
	ApparentTemperature float64 `json:"apparentTemperature"`

	// Humidity is relative humidity, 0 to 100.
	Humidity float64 `json:"humidity"`

	// WindSpeed in km/h.
	WindSpeed float64 `json:"windSpeed"`

	// WindDirection in degrees, 0 is north.
	WindDirection float64 `json:"windDirection"`

	// Pressure at surface level in hPa.
	Pressure float64 `json:"pressure"`

	// Code is the WMO weather interpretation code.
	Code int `json:"code"`

	// IsDay reports whether the sun is up at the observation point.
	IsDay bool `json:"isDay"`

	Coordinates geo.Coordinates `json:"coordinates"`
	ObservedAt  time.Time       `json:"observedAt"`
}

// wmoDescriptions maps WMO interpretation codes to display text.
var wmoDescriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// Description returns display text for the observation's weather code.
func (o Observation) Description() string {
	if desc, ok := wmoDescriptions[o.Code]; ok {
		return desc
	}
	return "Unknown"
}

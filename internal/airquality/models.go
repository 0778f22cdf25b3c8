// Package airquality provides the canonical air-quality snapshot and the
// fetch-or-cache service that produces it.
package airquality

import (
	"time"

	"github.com/vayuair/vayuair/internal/geo"
)

// Pollutant identifies an air-quality pollutant.
type Pollutant string

const (
	PollutantPM25 Pollutant = "pm25"
	PollutantPM10 Pollutant = "pm10"
	PollutantO3   Pollutant = "o3"
	PollutantNO2  Pollutant = "no2"
	PollutantSO2  Pollutant = "so2"
	PollutantCO   Pollutant = "co"
)

// Pollutants lists all pollutants in declaration order. The order breaks
// ties in dominant-pollutant derivation.
var Pollutants = []Pollutant{
	PollutantPM25,
	PollutantPM10,
	PollutantO3,
	PollutantNO2,
	PollutantSO2,
	PollutantCO,
}

// regulatoryThresholds are the concentrations (µg/m³, CO in mg/m³) at
// which each pollutant alone pushes the index into the unhealthy band.
var regulatoryThresholds = map[Pollutant]float64{
	PollutantPM25: 35.4,
	PollutantPM10: 154,
	PollutantO3:   164,
	PollutantNO2:  100,
	PollutantSO2:  185,
	PollutantCO:   12.4,
}

// DominantPollutant derives the pollutant most responsible for the
// current index: the one with the largest measured/threshold ratio.
// CO values arrive in µg/m³ and are compared against an mg/m³ threshold.
// With no measurements the answer defaults to pm25.
func DominantPollutant(levels map[Pollutant]float64) Pollutant {
	dominant := PollutantPM25
	var maxRatio float64

	for _, p := range Pollutants {
		value, ok := levels[p]
		if !ok {
			continue
		}
		if p == PollutantCO {
			value /= 1000
		}
		if ratio := value / regulatoryThresholds[p]; ratio > maxRatio {
			maxRatio = ratio
			dominant = p
		}
	}
	return dominant
}

// Category returns the US EPA category label for an AQI value.
func Category(aqi int) string {
	switch {
	case aqi <= 50:
		return "Good"
	case aqi <= 100:
		return "Moderate"
	case aqi <= 150:
		return "Unhealthy for Sensitive Groups"
	case aqi <= 200:
		return "Unhealthy"
	case aqi <= 300:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}

// Conditions is a best-effort weather observation attached to a snapshot.
type Conditions struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Pressure    float64 `json:"pressure"`
}

// DailyBucket summarizes one calendar day of hourly samples.
type DailyBucket struct {
	Day time.Time `json:"day"`
	Min float64   `json:"min"`
	Max float64   `json:"max"`
	Avg float64   `json:"avg"`
}

// Snapshot is the canonical normalized air-quality record. It is
// immutable once constructed: the cache stores serialized copies, and a
// new fetch supersedes the previous snapshot rather than updating it.
type Snapshot struct {
	// AQI is the composite index on the 0-500+ scale.
	AQI int `json:"aqi"`

	// LocationLabel is the human-readable place name.
	LocationLabel string `json:"locationLabel"`

	// StationLabel identifies the reporting station or model source.
	StationLabel string `json:"stationLabel"`

	// DominantPollutant is the pollutant driving the index.
	DominantPollutant Pollutant `json:"dominantPollutant"`

	// Pollutants maps pollutant to concentration. Absent pollutants are
	// omitted, never zero.
	Pollutants map[Pollutant]float64 `json:"pollutants,omitempty"`

	// Weather is best-effort and may be entirely absent.
	Weather *Conditions `json:"weather,omitempty"`

	// Forecast holds daily buckets per pollutant.
	Forecast map[Pollutant][]DailyBucket `json:"forecast,omitempty"`

	// Coordinates of the station or estimate point. Required: cache
	// entries without coordinates predate the current schema.
	Coordinates geo.Coordinates `json:"coordinates"`

	// ObservedAt is when the upstream measured the value, not when it
	// was fetched.
	ObservedAt time.Time `json:"observedAt"`

	// Provider names the upstream that produced the record.
	Provider string `json:"provider"`

	// ServedFromCache is set by the service on cache hits; it is never
	// stored.
	ServedFromCache bool `json:"-"`
}

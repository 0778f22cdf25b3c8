package airquality_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vayuair/vayuair/internal/airquality"
)

func TestDominantPollutant(t *testing.T) {
	tests := []struct {
		name   string
		levels map[airquality.Pollutant]float64
		want   airquality.Pollutant
	}{
		{
			name: "pm25 exceeds threshold most",
			levels: map[airquality.Pollutant]float64{
				airquality.PollutantPM25: 40, // 40/35.4 = 1.13
				airquality.PollutantPM10: 60, // 60/154 = 0.39
			},
			want: airquality.PollutantPM25,
		},
		{
			name: "ozone dominates",
			levels: map[airquality.Pollutant]float64{
				airquality.PollutantPM25: 10,
				airquality.PollutantO3:   200,
			},
			want: airquality.PollutantO3,
		},
		{
			name: "co compared in mg per cubic meter",
			levels: map[airquality.Pollutant]float64{
				airquality.PollutantPM25: 5,
				airquality.PollutantCO:   20000, // 20 mg/m³, ratio 1.61
			},
			want: airquality.PollutantCO,
		},
		{
			name:   "empty levels default to pm25",
			levels: map[airquality.Pollutant]float64{},
			want:   airquality.PollutantPM25,
		},
		{
			name: "tie broken by declaration order",
			levels: map[airquality.Pollutant]float64{
				airquality.PollutantPM25: 35.4, // ratio 1.0
				airquality.PollutantNO2:  100,  // ratio 1.0
			},
			want: airquality.PollutantPM25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, airquality.DominantPollutant(tt.levels))
		})
	}
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "Good", airquality.Category(0))
	assert.Equal(t, "Good", airquality.Category(50))
	assert.Equal(t, "Moderate", airquality.Category(51))
	assert.Equal(t, "Unhealthy for Sensitive Groups", airquality.Category(150))
	assert.Equal(t, "Unhealthy", airquality.Category(161))
	assert.Equal(t, "Very Unhealthy", airquality.Category(300))
	assert.Equal(t, "Hazardous", airquality.Category(480))
}

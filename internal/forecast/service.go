// Package forecast turns hourly pollutant series into daily buckets
// for the trend charts.
package forecast

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/vayuair/vayuair/internal/airquality"
)

// Sample is one hourly reading. Value is nil when the upstream reports
// a gap for that hour.
type Sample struct {
	Time  time.Time
	Value *float64
}

// SeriesProvider supplies hourly pollutant series for a point.
type SeriesProvider interface {
	HourlySeries(ctx context.Context, lat, lon float64) (map[airquality.Pollutant][]Sample, error)
}

// ServiceConfig holds configuration for the forecast service.
type ServiceConfig struct {
	Provider SeriesProvider
	Logger   zerolog.Logger
}

// Service aggregates hourly series into per-day min/max/avg buckets.
// Forecast data is decoration, so every failure degrades to an empty
// result instead of surfacing an error.
type Service struct {
	provider SeriesProvider
	logger   zerolog.Logger
}

// NewService creates a forecast service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// Forecast returns daily buckets per pollutant, sorted by day. An
// upstream failure or an empty series yields an empty map.
func (s *Service) Forecast(ctx context.Context, lat, lon float64) map[airquality.Pollutant][]airquality.DailyBucket {
	if s.provider == nil {
		return map[airquality.Pollutant][]airquality.DailyBucket{}
	}

	series, err := s.provider.HourlySeries(ctx, lat, lon)
	if err != nil {
		s.logger.Warn().Err(err).
			Float64("lat", lat).
			Float64("lon", lon).
			Msg("hourly series unavailable, omitting forecast")
		return map[airquality.Pollutant][]airquality.DailyBucket{}
	}

	out := make(map[airquality.Pollutant][]airquality.DailyBucket, len(series))
	for pollutant, samples := range series {
		buckets := bucketize(samples)
		if len(buckets) > 0 {
			out[pollutant] = buckets
		}
	}
	return out
}

// bucketize groups samples by the sample's own calendar day and folds
// each day to min/max/avg. Days where every hour is a gap are omitted.
func bucketize(samples []Sample) []airquality.DailyBucket {
	type acc struct {
		day   time.Time
		min   float64
		max   float64
		sum   float64
		count int
	}

	byDay := make(map[string]*acc)
	for _, sample := range samples {
		if sample.Value == nil {
			continue
		}
		v := *sample.Value

		key := sample.Time.Format("2006-01-02")
		a, ok := byDay[key]
		if !ok {
			y, m, d := sample.Time.Date()
			a = &acc{
				day: time.Date(y, m, d, 0, 0, 0, 0, sample.Time.Location()),
				min: v,
				max: v,
			}
			byDay[key] = a
		}
		if v < a.min {
			a.min = v
		}
		if v > a.max {
			a.max = v
		}
		a.sum += v
		a.count++
	}

	buckets := make([]airquality.DailyBucket, 0, len(byDay))
	for _, a := range byDay {
		buckets = append(buckets, airquality.DailyBucket{
			Day: a.day,
			Min: a.min,
			Max: a.max,
			Avg: a.sum / float64(a.count),
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Day.Before(buckets[j].Day)
	})
	return buckets
}

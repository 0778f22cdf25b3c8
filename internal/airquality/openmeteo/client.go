// Package openmeteo provides a client for the Open-Meteo air quality
// API, the model-based fallback provider and the hourly forecast
// source. Unlike the station feed it has global coverage and needs no
// API key.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vayuair/vayuair/internal/airquality"
	"github.com/vayuair/vayuair/internal/fault"
	"github.com/vayuair/vayuair/internal/forecast"
	"github.com/vayuair/vayuair/internal/geo"
	"github.com/vayuair/vayuair/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the Open-Meteo air quality API base URL.
	DefaultBaseURL = "https://air-quality-api.open-meteo.com"

	// ProviderName identifies this upstream.
	ProviderName = "open-meteo"

	// hourLayout is the API's timestamp format when timezone=auto.
	hourLayout = "2006-01-02T15:04"

	defaultPastDays     = 1
	defaultForecastDays = 5
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// BaseURL overrides the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient overrides the transport. If nil, a resilient client
	// is created and registered with Registry.
	HTTPClient HTTPDoer

	// Timeout for individual requests (default: 10s).
	Timeout time.Duration

	// ForecastDays is how many days of hourly series to request
	// (default: 5).
	ForecastDays int

	// Registry receives the resilient client for health checks
	// (optional, used only when HTTPClient is nil).
	Registry *resilience.Registry
}

// Client is an Open-Meteo air quality API client.
type Client struct {
	baseURL      string
	httpClient   HTTPDoer
	forecastDays int
}

// NewClient creates an Open-Meteo client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	forecastDays := cfg.ForecastDays
	if forecastDays <= 0 {
		forecastDays = defaultForecastDays
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		resilient := resilience.NewClient(resilience.ClientConfig{
			Name:    ProviderName,
			Timeout: cfg.Timeout,
		})
		if cfg.Registry != nil {
			cfg.Registry.Register(resilient)
		}
		httpClient = resilient
	}

	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   httpClient,
		forecastDays: forecastDays,
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return ProviderName
}

type currentResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Current   struct {
		Time            string   `json:"time"`
		USAQI           *float64 `json:"us_aqi"`
		PM25            *float64 `json:"pm2_5"`
		PM10            *float64 `json:"pm10"`
		Ozone           *float64 `json:"ozone"`
		NitrogenDioxide *float64 `json:"nitrogen_dioxide"`
		SulphurDioxide  *float64 `json:"sulphur_dioxide"`
		CarbonMonoxide  *float64 `json:"carbon_monoxide"`
	} `json:"current"`
}

type hourlyResponse struct {
	Hourly struct {
		Time            []string   `json:"time"`
		PM25            []*float64 `json:"pm2_5"`
		PM10            []*float64 `json:"pm10"`
		Ozone           []*float64 `json:"ozone"`
		NitrogenDioxide []*float64 `json:"nitrogen_dioxide"`
	} `json:"hourly"`
}

// FetchByCoordinates fetches the current model-based air quality for a
// point.
func (c *Client) FetchByCoordinates(ctx context.Context, lat, lon float64) (*airquality.Snapshot, error) {
	const op = "openmeteo.fetch_by_coordinates"

	query := url.Values{}
	query.Set("latitude", formatCoord(lat))
	query.Set("longitude", formatCoord(lon))
	query.Set("current", "us_aqi,pm2_5,pm10,ozone,nitrogen_dioxide,sulphur_dioxide,carbon_monoxide")
	query.Set("timezone", "auto")

	var body currentResponse
	if err := c.getJSON(ctx, op, "/v1/air-quality", query, &body); err != nil {
		return nil, err
	}

	if body.Current.USAQI == nil {
		return nil, fault.New(fault.KindNotFound, op, "model reports no current index")
	}

	levels := make(map[airquality.Pollutant]float64)
	setLevel(levels, airquality.PollutantPM25, body.Current.PM25)
	setLevel(levels, airquality.PollutantPM10, body.Current.PM10)
	setLevel(levels, airquality.PollutantO3, body.Current.Ozone)
	setLevel(levels, airquality.PollutantNO2, body.Current.NitrogenDioxide)
	setLevel(levels, airquality.PollutantSO2, body.Current.SulphurDioxide)
	setLevel(levels, airquality.PollutantCO, body.Current.CarbonMonoxide)

	observedAt, _ := time.Parse(hourLayout, body.Current.Time)

	return &airquality.Snapshot{
		AQI:               int(math.Round(*body.Current.USAQI)),
		DominantPollutant: airquality.DominantPollutant(levels),
		Pollutants:        levels,
		Coordinates:       geo.Coordinates{Latitude: body.Latitude, Longitude: body.Longitude},
		ObservedAt:        observedAt,
		Provider:          ProviderName,
	}, nil
}

// HourlySeries fetches hourly pollutant series spanning yesterday
// through the forecast horizon.
func (c *Client) HourlySeries(ctx context.Context, lat, lon float64) (map[airquality.Pollutant][]forecast.Sample, error) {
	const op = "openmeteo.hourly_series"

	query := url.Values{}
	query.Set("latitude", formatCoord(lat))
	query.Set("longitude", formatCoord(lon))
	query.Set("hourly", "pm2_5,pm10,ozone,nitrogen_dioxide")
	query.Set("past_days", strconv.Itoa(defaultPastDays))
	query.Set("forecast_days", strconv.Itoa(c.forecastDays))
	query.Set("timezone", "auto")

	var body hourlyResponse
	if err := c.getJSON(ctx, op, "/v1/air-quality", query, &body); err != nil {
		return nil, err
	}

	times := make([]time.Time, 0, len(body.Hourly.Time))
	for _, raw := range body.Hourly.Time {
		ts, err := time.Parse(hourLayout, raw)
		if err != nil {
			return nil, fault.Wrap(fault.KindNetwork, op, err)
		}
		times = append(times, ts)
	}

	series := make(map[airquality.Pollutant][]forecast.Sample, 4)
	addSeries(series, airquality.PollutantPM25, times, body.Hourly.PM25)
	addSeries(series, airquality.PollutantPM10, times, body.Hourly.PM10)
	addSeries(series, airquality.PollutantO3, times, body.Hourly.Ozone)
	addSeries(series, airquality.PollutantNO2, times, body.Hourly.NitrogenDioxide)
	return series, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fault.Wrap(fault.KindTimeout, op, err)
		}
		return fault.Wrap(fault.KindNetwork, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fault.New(fault.KindNetwork, op, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fault.Wrap(fault.KindNetwork, op, err)
	}
	return nil
}

func setLevel(levels map[airquality.Pollutant]float64, p airquality.Pollutant, v *float64) {
	if v != nil {
		levels[p] = *v
	}
}

func addSeries(series map[airquality.Pollutant][]forecast.Sample, p airquality.Pollutant, times []time.Time, values []*float64) {
	if len(values) == 0 {
		return
	}
	samples := make([]forecast.Sample, 0, len(values))
	for i, v := range values {
		if i >= len(times) {
			break
		}
		samples = append(samples, forecast.Sample{Time: times[i], Value: v})
	}
	series[p] = samples
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

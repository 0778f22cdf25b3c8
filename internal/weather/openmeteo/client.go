// Package openmeteo provides the Open-Meteo weather forecast API
// client backing the weather service.
package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vayuair/vayuair/internal/fault"
	"github.com/vayuair/vayuair/internal/geo"
	"github.com/vayuair/vayuair/internal/provider/resilience"
	"github.com/vayuair/vayuair/internal/weather"
)

const (
	// DefaultBaseURL is the Open-Meteo forecast API base URL.
	DefaultBaseURL = "https://api.open-meteo.com"

	// ProviderName identifies this upstream.
	ProviderName = "open-meteo-weather"

	hourLayout = "2006-01-02T15:04"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the weather client.
type ClientConfig struct {
	BaseURL    string
	HTTPClient HTTPDoer
	Timeout    time.Duration
	Registry   *resilience.Registry
}

// Client is an Open-Meteo forecast API client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a weather client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
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
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
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
		Time                string  `json:"time"`
		Temperature         float64 `json:"temperature_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		Humidity            float64 `json:"relative_humidity_2m"`
		WindSpeed           float64 `json:"wind_speed_10m"`
		WindDirection       float64 `json:"wind_direction_10m"`
		Pressure            float64 `json:"surface_pressure"`
		WeatherCode         int     `json:"weather_code"`
		IsDay               int     `json:"is_day"`
	} `json:"current"`
}

// CurrentObservation fetches the current weather for a point.
func (c *Client) CurrentObservation(ctx context.Context, lat, lon float64) (*weather.Observation, error) {
	const op = "openmeteo.current_weather"

	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("current", "temperature_2m,apparent_temperature,relative_humidity_2m,"+
		"wind_speed_10m,wind_direction_10m,surface_pressure,weather_code,is_day")
	query.Set("timezone", "auto")

	endpoint := c.baseURL + "/v1/forecast?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fault.Wrap(fault.KindTimeout, op, err)
		}
		return nil, fault.Wrap(fault.KindNetwork, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fault.New(fault.KindNetwork, op, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fault.Wrap(fault.KindNetwork, op, err)
	}

	observedAt, _ := time.Parse(hourLayout, body.Current.Time)

	return &weather.Observation{
		Temperature:         body.Current.Temperature,
		ApparentTemperature: body.Current.ApparentTemperature,
		Humidity:            body.Current.Humidity,
		WindSpeed:           body.Current.WindSpeed,
		WindDirection:       body.Current.WindDirection,
		Pressure:            body.Current.Pressure,
		Code:                body.Current.WeatherCode,
		IsDay:               body.Current.IsDay == 1,
		Coordinates:         geo.Coordinates{Latitude: body.Latitude, Longitude: body.Longitude},
		ObservedAt:          observedAt,
	}, nil
}

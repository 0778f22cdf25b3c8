// Package aqicn provides a client for the World Air Quality Index
// (WAQI) station feed, the primary AQI provider.
package aqicn

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
	"github.com/vayuair/vayuair/internal/geo"
	"github.com/vayuair/vayuair/internal/provider/resilience"
	"github.com/vayuair/vayuair/internal/stations"
)

const (
	// DefaultBaseURL is the WAQI API base URL.
	DefaultBaseURL = "https://api.waqi.info"

	// ProviderName identifies this upstream.
	ProviderName = "aqicn"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the WAQI client.
type ClientConfig struct {
	// Token is the WAQI API token (required).
	Token string

	// BaseURL overrides the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient overrides the transport. If nil, a resilient client
	// is created and registered with Registry.
	HTTPClient HTTPDoer

	// Timeout for individual requests (default: 10s).
	Timeout time.Duration

	// Registry receives the resilient client for health checks
	// (optional, used only when HTTPClient is nil).
	Registry *resilience.Registry
}

// Client is a WAQI API client. It implements the fetcher's
// StationProvider and the search service's Finder.
type Client struct {
	baseURL    string
	token      string
	httpClient HTTPDoer
}

// NewClient creates a WAQI client.
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
		token:      cfg.Token,
		httpClient: httpClient,
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return ProviderName
}

// API response types (from the WAQI API).

type apiResponse struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// indexValue tolerates the feed's "-" placeholder for a missing index.
type indexValue int

func (v *indexValue) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*v = indexValue(math.Round(f))
		return nil
	}
	*v = -1
	return nil
}

type feedData struct {
	AQI  indexValue `json:"aqi"`
	City struct {
		Name string    `json:"name"`
		Geo  []float64 `json:"geo"`
	} `json:"city"`
	DominentPol string `json:"dominentpol"`
	IAQI        map[string]struct {
		V float64 `json:"v"`
	} `json:"iaqi"`
	Time struct {
		ISO string `json:"iso"`
		V   int64  `json:"v"`
	} `json:"time"`
}

type searchEntry struct {
	UID     int `json:"uid"`
	Station struct {
		Name    string    `json:"name"`
		Geo     []float64 `json:"geo"`
		Country string    `json:"country"`
	} `json:"station"`
}

type boundsEntry struct {
	UID     int     `json:"uid"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Station struct {
		Name string `json:"name"`
	} `json:"station"`
}

// FetchByCoordinates fetches the nearest station feed for a point.
func (c *Client) FetchByCoordinates(ctx context.Context, lat, lon float64) (*airquality.Snapshot, error) {
	const op = "aqicn.fetch_by_coordinates"

	feed := fmt.Sprintf("geo:%s;%s",
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64))
	return c.fetchFeed(ctx, op, feed)
}

// FetchByStation fetches the feed for a city id or "@uid" station id.
func (c *Client) FetchByStation(ctx context.Context, stationID string) (*airquality.Snapshot, error) {
	const op = "aqicn.fetch_by_station"
	return c.fetchFeed(ctx, op, stationID)
}

func (c *Client) fetchFeed(ctx context.Context, op, feed string) (*airquality.Snapshot, error) {
	endpoint := fmt.Sprintf("%s/feed/%s/?token=%s", c.baseURL, url.PathEscape(feed), url.QueryEscape(c.token))

	var data feedData
	if err := c.getData(ctx, op, endpoint, &data); err != nil {
		return nil, err
	}
	return c.toSnapshot(op, &data)
}

// SearchStations finds stations matching a keyword.
func (c *Client) SearchStations(ctx context.Context, keyword string) ([]stations.Candidate, error) {
	const op = "aqicn.search"

	endpoint := fmt.Sprintf("%s/search/?token=%s&keyword=%s",
		c.baseURL, url.QueryEscape(c.token), url.QueryEscape(keyword))

	var entries []searchEntry
	if err := c.getData(ctx, op, endpoint, &entries); err != nil {
		return nil, err
	}

	candidates := make([]stations.Candidate, 0, len(entries))
	for _, e := range entries {
		if len(e.Station.Geo) < 2 {
			continue
		}
		candidates = append(candidates, stations.Candidate{
			Label:     e.Station.Name,
			Region:    e.Station.Country,
			LookupKey: "@" + strconv.Itoa(e.UID),
			Latitude:  e.Station.Geo[0],
			Longitude: e.Station.Geo[1],
		})
	}
	return candidates, nil
}

// StationsInBounds lists stations inside a bounding box.
func (c *Client) StationsInBounds(ctx context.Context, minLat, minLon, maxLat, maxLon float64) ([]stations.Candidate, error) {
	const op = "aqicn.map_bounds"

	endpoint := fmt.Sprintf("%s/v2/map/bounds?latlng=%s,%s,%s,%s&token=%s",
		c.baseURL,
		strconv.FormatFloat(minLat, 'f', -1, 64),
		strconv.FormatFloat(minLon, 'f', -1, 64),
		strconv.FormatFloat(maxLat, 'f', -1, 64),
		strconv.FormatFloat(maxLon, 'f', -1, 64),
		url.QueryEscape(c.token))

	var entries []boundsEntry
	if err := c.getData(ctx, op, endpoint, &entries); err != nil {
		return nil, err
	}

	candidates := make([]stations.Candidate, 0, len(entries))
	for _, e := range entries {
		candidates = append(candidates, stations.Candidate{
			Label:     e.Station.Name,
			LookupKey: "@" + strconv.Itoa(e.UID),
			Latitude:  e.Lat,
			Longitude: e.Lon,
		})
	}
	return candidates, nil
}

// getData executes a GET, unwraps the {status,data} envelope, and
// decodes data into out.
func (c *Client) getData(ctx context.Context, op, endpoint string, out any) error {
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

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fault.Wrap(fault.KindNetwork, op, err)
	}

	if envelope.Status != "ok" {
		return statusError(op, envelope.Data)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fault.Wrap(fault.KindNetwork, op, err)
	}
	return nil
}

// statusError maps the feed's error payload (a bare string) to a kind.
func statusError(op string, data json.RawMessage) error {
	var msg string
	_ = json.Unmarshal(data, &msg)

	if strings.Contains(strings.ToLower(msg), "invalid key") {
		return fault.New(fault.KindUnavailable, op, msg)
	}
	if msg == "" {
		msg = "no data for this location"
	}
	return fault.New(fault.KindNotFound, op, msg)
}

func (c *Client) toSnapshot(op string, data *feedData) (*airquality.Snapshot, error) {
	if data.AQI < 0 {
		return nil, fault.New(fault.KindNotFound, op, "station reports no current index")
	}

	levels := make(map[airquality.Pollutant]float64)
	for _, p := range airquality.Pollutants {
		if v, ok := data.IAQI[string(p)]; ok {
			levels[p] = v.V
		}
	}

	dominant := airquality.Pollutant(data.DominentPol)
	if !validPollutant(dominant) {
		dominant = airquality.DominantPollutant(levels)
	}

	snap := &airquality.Snapshot{
		AQI:               int(data.AQI),
		LocationLabel:     data.City.Name,
		StationLabel:      data.City.Name,
		DominantPollutant: dominant,
		Pollutants:        levels,
		Weather:           weatherFromIAQI(data),
		ObservedAt:        observedAt(data),
		Provider:          ProviderName,
	}
	if len(data.City.Geo) >= 2 {
		snap.Coordinates = geo.Coordinates{Latitude: data.City.Geo[0], Longitude: data.City.Geo[1]}
	}
	return snap, nil
}

// weatherFromIAQI extracts the meteorological readings some stations
// interleave with pollutant measurements.
func weatherFromIAQI(data *feedData) *airquality.Conditions {
	t, hasT := data.IAQI["t"]
	h, hasH := data.IAQI["h"]
	w, hasW := data.IAQI["w"]
	p, hasP := data.IAQI["p"]
	if !hasT && !hasH && !hasW && !hasP {
		return nil
	}
	return &airquality.Conditions{
		Temperature: t.V,
		Humidity:    h.V,
		WindSpeed:   w.V,
		Pressure:    p.V,
	}
}

func observedAt(data *feedData) time.Time {
	if ts, err := time.Parse(time.RFC3339, data.Time.ISO); err == nil {
		return ts
	}
	if data.Time.V > 0 {
		return time.Unix(data.Time.V, 0).UTC()
	}
	return time.Time{}
}

func validPollutant(p airquality.Pollutant) bool {
	for _, known := range airquality.Pollutants {
		if p == known {
			return true
		}
	}
	return false
}

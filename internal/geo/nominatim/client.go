// Package nominatim provides a client for the OSM Nominatim geocoding API.
package nominatim

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
)

const (
	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// ProviderName identifies this upstream.
	ProviderName = "nominatim"

	// defaultUserAgent satisfies the Nominatim usage policy.
	defaultUserAgent = "vayuair/1.0"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL overrides the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient overrides the transport. If nil, a resilient client
	// is created.
	HTTPClient HTTPDoer

	// UserAgent identifies the app per the Nominatim usage policy.
	UserAgent string

	// Timeout for individual requests (default: 10s).
	Timeout time.Duration

	// MaxResults caps search results (default: 10).
	MaxResults int

	// Registry receives the resilient client for health checks
	// (optional, used only when HTTPClient is nil).
	Registry *resilience.Registry
}

// Client is a Nominatim API client implementing geo.Geocoder and
// geo.ReverseGeocoder.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	userAgent  string
	maxResults int
}

// NewClient creates a Nominatim client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	maxResults := cfg.MaxResults
	if maxResults == 0 {
		maxResults = 10
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
		userAgent:  userAgent,
		maxResults: maxResults,
	}
}

type placeResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
	} `json:"address"`
}

// Search returns ranked candidate places for a free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]geo.Place, error) {
	const op = "nominatim.search"

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(c.maxResults))

	var results []placeResult
	if err := c.getJSON(ctx, op, c.baseURL+"/search?"+params.Encode(), &results); err != nil {
		return nil, err
	}

	places := make([]geo.Place, 0, len(results))
	for _, r := range results {
		place, ok := toPlace(r)
		if !ok {
			continue
		}
		places = append(places, place)
	}
	return places, nil
}

// ReverseGeocode labels coordinates with a place name.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	const op = "nominatim.reverse"

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")

	var result placeResult
	if err := c.getJSON(ctx, op, c.baseURL+"/reverse?"+params.Encode(), &result); err != nil {
		return "", err
	}

	if label := result.settlement(); label != "" {
		return label, nil
	}
	if result.DisplayName != "" {
		return result.DisplayName, nil
	}
	return "", fault.New(fault.KindNotFound, op, "no place at coordinates")
}

func (r placeResult) settlement() string {
	switch {
	case r.Address.City != "":
		return r.Address.City
	case r.Address.Town != "":
		return r.Address.Town
	case r.Address.Village != "":
		return r.Address.Village
	default:
		return r.Name
	}
}

func toPlace(r placeResult) (geo.Place, bool) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return geo.Place{}, false
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return geo.Place{}, false
	}

	name := r.Name
	if name == "" {
		name = r.DisplayName
	}

	return geo.Place{
		Name:      name,
		Region:    r.Address.State,
		Latitude:  lat,
		Longitude: lon,
	}, true
}

func (c *Client) getJSON(ctx context.Context, op, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

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

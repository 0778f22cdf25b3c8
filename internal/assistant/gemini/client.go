// Package gemini provides the Google Generative Language API client
// backing the assistant.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vayuair/vayuair/internal/fault"
	"github.com/vayuair/vayuair/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the Generative Language API base URL.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-2.0-flash"

	// ProviderName identifies this upstream.
	ProviderName = "gemini"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Gemini client.
type ClientConfig struct {
	// APIKey is the Generative Language API key (required).
	APIKey string

	// Model overrides DefaultModel.
	Model string

	BaseURL    string
	HTTPClient HTTPDoer
	Timeout    time.Duration
	Registry   *resilience.Registry
}

// Client calls the generateContent endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient HTTPDoer
}

// NewClient creates a Gemini client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
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
		apiKey:     cfg.APIKey,
		model:      model,
		httpClient: httpClient,
	}
}

// Name returns the model identifier.
func (c *Client) Name() string {
	return c.model
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends a prompt and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "gemini.generate"

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fault.Wrap(fault.KindTimeout, op, err)
		}
		return "", fault.Wrap(fault.KindNetwork, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", responseError(op, resp)
	}

	var body generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fault.Wrap(fault.KindNetwork, op, err)
	}

	if len(body.Candidates) == 0 || len(body.Candidates[0].Content.Parts) == 0 {
		return "", fault.New(fault.KindUnavailable, op, "model returned no candidates")
	}
	return body.Candidates[0].Content.Parts[0].Text, nil
}

// responseError classifies non-200 responses. Exhausted free-tier
// quota must surface as its own kind so the caller can tell the user
// to retry later rather than treating it as an outage.
func responseError(op string, resp *http.Response) error {
	var body apiError
	_ = json.NewDecoder(resp.Body).Decode(&body)

	msg := body.Error.Message
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}

	if resp.StatusCode == http.StatusTooManyRequests || body.Error.Status == "RESOURCE_EXHAUSTED" {
		return fault.New(fault.KindQuota, op, msg)
	}
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized {
		return fault.New(fault.KindPermission, op, msg)
	}
	if resp.StatusCode >= 500 {
		return fault.New(fault.KindUnavailable, op, msg)
	}
	return fault.New(fault.KindNetwork, op, msg)
}

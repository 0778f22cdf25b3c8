// Package resilience wraps outbound provider calls with timeouts, retry
// with exponential backoff, and a circuit breaker per upstream.
package resilience

import (
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the upstream's circuit breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ClientConfig holds configuration for a resilient HTTP client.
type ClientConfig struct {
	// Name identifies the upstream for breaker state and health checks.
	Name string

	// Timeout per HTTP call. Default: 10s.
	Timeout time.Duration

	// MaxRetries for transient failures. Default: 3.
	MaxRetries uint64

	// InitialInterval is the first retry backoff. Default: 200ms.
	InitialInterval time.Duration

	// MaxInterval caps the retry backoff. Default: 5s.
	MaxInterval time.Duration

	// BreakerTimeout is how long the circuit stays open. Default: 60s.
	BreakerTimeout time.Duration
}

// Client is an HTTP client with retry and circuit breaker protection.
// It satisfies the HTTPDoer seam the provider clients accept.
type Client struct {
	name       string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     ClientConfig
}

// NewClient creates a resilient client for one upstream.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.5
		},
	})

	return &Client{
		name:       cfg.Name,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		config:     cfg,
	}
}

// Name returns the upstream identifier.
func (c *Client) Name() string {
	return c.name
}

// Do executes the request, retrying transient failures (network errors,
// 5xx) with exponential backoff. The circuit breaker sees 5xx responses
// as failures so a flapping upstream trips it.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var lastResp *http.Response

	operation := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			attempt := req.Clone(ctx)
			if req.GetBody != nil {
				body, bodyErr := req.GetBody()
				if bodyErr != nil {
					return nil, backoff.Permanent(bodyErr)
				}
				attempt.Body = body
			}
			r, doErr := c.httpClient.Do(attempt)
			if doErr != nil {
				return nil, doErr
			}
			if r.StatusCode >= 500 {
				return r, &serverError{status: r.StatusCode}
			}
			return r, nil
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			return err
		}

		lastResp = resp
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		// A 5xx that exhausted retries still yields the response; the
		// caller maps the status code to an error kind.
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}

	return lastResp, nil
}

// State returns the breaker state for this upstream.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

type serverError struct {
	status int
}

func (e *serverError) Error() string {
	return "server error: " + http.StatusText(e.status)
}

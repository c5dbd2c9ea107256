// Package upstream routes outbound provider calls through a per-provider
// circuit breaker with request timing. A call is attempted once; there is no
// retry, and a tripped breaker fails fast until its cool-down elapses.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/couchcryptid/hazard-risk-dashboard/internal/observability"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned while the provider's breaker is rejecting calls.
var ErrCircuitOpen = errors.New("upstream circuit open")

const userAgent = "hazard-risk-dashboard/1.0"

// Doer sends a single HTTP request. *Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps an *http.Client with a circuit breaker and metrics for one provider.
type Client struct {
	provider   string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	metrics    *observability.Metrics
}

// NewClient creates a Client whose requests time out after timeout. The
// breaker opens after five consecutive failures and probes again after 30s.
func NewClient(provider string, timeout time.Duration, metrics *observability.Metrics) *Client {
	return newClient(provider, &http.Client{Timeout: timeout}, metrics, 30*time.Second)
}

func newClient(provider string, httpClient *http.Client, metrics *observability.Metrics, coolDown time.Duration) *Client {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        provider,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     coolDown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A caller that goes away says nothing about the upstream's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &Client{
		provider:   provider,
		httpClient: httpClient,
		breaker:    cb,
		metrics:    metrics,
	}
}

// Provider returns the provider name used for breaker and metric labels.
func (c *Client) Provider() string { return c.provider }

// Do executes req once. Transport errors and 5xx responses count as breaker
// failures; a 5xx response is still returned so callers can read the body.
// Cancellation by the caller is not a failure.
// The caller closes the response body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		r, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		if r.StatusCode >= http.StatusInternalServerError {
			return r, fmt.Errorf("%s returned status %d", c.provider, r.StatusCode)
		}
		return r, nil
	})
	c.metrics.UpstreamDuration.WithLabelValues(c.provider).Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.metrics.UpstreamRequests.WithLabelValues(c.provider, "circuit_open").Inc()
		return nil, fmt.Errorf("%s: %w", c.provider, ErrCircuitOpen)
	case errors.Is(err, context.Canceled):
		c.metrics.UpstreamRequests.WithLabelValues(c.provider, "canceled").Inc()
		return nil, err
	case err != nil && resp != nil:
		// 5xx: hand back the response and let the caller decode the error body.
		c.metrics.UpstreamRequests.WithLabelValues(c.provider, "error").Inc()
		return resp, nil
	case err != nil:
		c.metrics.UpstreamRequests.WithLabelValues(c.provider, "error").Inc()
		return nil, err
	case resp.StatusCode >= http.StatusBadRequest:
		c.metrics.UpstreamRequests.WithLabelValues(c.provider, "error").Inc()
	default:
		c.metrics.UpstreamRequests.WithLabelValues(c.provider, "success").Inc()
	}
	return resp, nil
}

// Get issues a GET for rawURL with the given context.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.Do(req)
}

// CheckReadiness reports an error while the breaker is open.
func (c *Client) CheckReadiness(_ context.Context) error {
	if c.breaker.State() == gobreaker.StateOpen {
		return fmt.Errorf("%s: %w", c.provider, ErrCircuitOpen)
	}
	return nil
}

// Readiness aggregates the readiness of several clients.
type Readiness []*Client

// CheckReadiness joins the errors of every open breaker, or returns nil when all are closed.
func (r Readiness) CheckReadiness(ctx context.Context) error {
	var errs []error
	for _, c := range r {
		if err := c.CheckReadiness(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

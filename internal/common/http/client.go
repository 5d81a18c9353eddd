package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"homesurvey/internal/common/logger"
)

const (
	RequestIDHeader = "X-Request-ID"
	DefaultBackoff  = 200 * time.Millisecond
)

// RequestFunc builds a fresh request for every attempt so bodies can be
// replayed.
type RequestFunc func(ctx context.Context) (*http.Request, error)

// Client sends authenticated requests to the backend. Each attempt carries
// the bearer token and a new request id.
type Client struct {
	httpClient *http.Client
	log        logger.Logger
	maxRetries int
	backoff    time.Duration

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithRetries retries transport failures and 502/503/504 replies up to n
// times, doubling backoff between attempts.
func WithRetries(n int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = n
		c.backoff = backoff
	}
}

func WithLogger(log logger.Logger) Option {
	return func(c *Client) { c.log = log }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.NewNoOpLogger(),
		backoff:    DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func retryableStatus(code int) bool {
	return code == http.StatusBadGateway || code == http.StatusServiceUnavailable || code == http.StatusGatewayTimeout
}

// Do sends the request built by build. The caller closes the response body.
func (c *Client) Do(ctx context.Context, build RequestFunc) (*http.Response, error) {
	delay := c.backoff
	for attempt := 0; ; attempt++ {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		requestID := uuid.NewString()
		req.Header.Set(RequestIDHeader, requestID)

		resp, err := c.httpClient.Do(req)
		last := attempt >= c.maxRetries
		switch {
		case err == nil && !retryableStatus(resp.StatusCode):
			return resp, nil
		case err == nil && last:
			return resp, nil
		case err != nil && (last || errors.Is(err, context.Canceled) || ctx.Err() != nil):
			return nil, err
		}

		fields := map[string]interface{}{
			"attempt":    attempt + 1,
			"request_id": requestID,
			"url":        req.URL.String(),
		}
		if err != nil {
			fields["error"] = err.Error()
		} else {
			fields["status"] = resp.StatusCode
			resp.Body.Close()
		}
		c.log.Warn("retrying backend request", fields)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

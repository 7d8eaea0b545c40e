package edge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout  = 10 * time.Second
	functionsPath   = "/functions/v1/"
	maxResponseBody = 1 << 20
)

// Config holds configuration for the edge-function client.
type Config struct {
	// BaseURL is the project URL, e.g. https://xyz.supabase.co (required).
	BaseURL string

	// APIKey is the project key sent as bearer token and apikey header (required).
	APIKey string

	// Timeout bounds each HTTP request (default: 10s). Callers may pass
	// tighter deadlines through the context.
	Timeout time.Duration

	// Limiter throttles requests. Defaults to NewRateLimiter(DefaultRate, DefaultBurst).
	Limiter *RateLimiter
}

// StatusError is returned when a function answers with a non-2xx status.
type StatusError struct {
	Function string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("edge: %s returned status %d: %s", e.Function, e.Status, e.Body)
}

// Client invokes edge functions.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	limiter *RateLimiter
}

// NewClient creates an edge-function client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("edge: base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("edge: API key is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(DefaultRate, DefaultBurst)
	}

	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		limiter: cfg.Limiter,
	}, nil
}

// Invoke POSTs payload as JSON to the named function and returns the raw reply body.
func (c *Client) Invoke(ctx context.Context, function string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("edge: marshal %s request: %w", function, err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(function), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("edge: create %s request: %w", function, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorise(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("edge: %s: %w", function, err)
	}
	defer resp.Body.Close()
	c.limiter.Observe(resp)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("edge: read %s response: %w", function, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Function: function, Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}

// Ping sends a CORS preflight to function; any status below 500 means the
// function is deployed and reachable.
func (c *Client) Ping(ctx context.Context, function string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodOptions, c.url(function), http.NoBody)
	if err != nil {
		return fmt.Errorf("edge: create ping request: %w", err)
	}
	c.authorise(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("edge: ping %s: %w", function, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
		return &StatusError{Function: function, Status: resp.StatusCode}
	}
	return nil
}

func (c *Client) url(function string) string {
	return c.baseURL + functionsPath + function
}

func (c *Client) authorise(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("apikey", c.apiKey)
}

// Package postcodes looks up the administrative district for a UK postcode
// through postcodes.io. It feeds headquarters enrichment after matching.
package postcodes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chmatch/internal/config"
	"chmatch/internal/logging"
	"chmatch/internal/services"
)

// ErrNotFound marks an unknown or invalid postcode.
var ErrNotFound = services.Wrap(services.ErrNotFound, "postcodes", "", "postcode not found", nil)

type lookupResponse struct {
	Status int `json:"status"`
	Result *struct {
		Postcode      string `json:"postcode"`
		AdminDistrict string `json:"admin_district"`
		Region        string `json:"region"`
	} `json:"result"`
}

// Client queries postcodes.io.
type Client struct {
	baseURL    string
	httpClient *http.Client
	delay      time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRequestDelay sleeps for d before every request.
func WithRequestDelay(d time.Duration) Option {
	return func(c *Client) {
		c.delay = max(d, 0)
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "postcodes")
		}
	}
}

// New creates a postcodes.io client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("postcodes base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig builds a client from the [postcodes] config section.
func NewFromConfig(cfg config.Postcodes, logger *slog.Logger) (*Client, error) {
	return New(cfg.BaseURL,
		WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}),
		WithRequestDelay(time.Duration(cfg.RequestDelayMS)*time.Millisecond),
		WithLogger(logger),
	)
}

// AdminDistrict returns the administrative district for postcode. A postcode
// without a district yields "" and no error.
func (c *Client) AdminDistrict(ctx context.Context, postcode string) (string, error) {
	postcode = strings.TrimSpace(postcode)
	if postcode == "" {
		return "", services.Wrap(services.ErrValidation, "postcodes", "lookup", "postcode must not be empty", nil)
	}
	if err := sleep(ctx, c.delay); err != nil {
		return "", err
	}

	endpoint := c.baseURL + "/postcodes/" + url.PathEscape(postcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "postcodes", "lookup", fmt.Sprintf("latency=%v", latency), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return "", services.Wrap(services.ErrTransient, "postcodes", "lookup",
			fmt.Sprintf("status %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode postcodes response: %w", err)
	}
	if payload.Result == nil {
		return "", nil
	}
	c.logger.Debug("postcode resolved",
		logging.String("postcode", postcode),
		logging.String("admin_district", payload.Result.AdminDistrict),
		logging.Duration("latency", latency),
	)
	return strings.TrimSpace(payload.Result.AdminDistrict), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

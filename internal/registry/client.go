package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"chmatch/internal/config"
	"chmatch/internal/logging"
	"chmatch/internal/services"
	"chmatch/internal/textutil"
)

const (
	componentName  = "registry"
	maxBodyBytes   = 4 << 20
	defaultTimeout = 15 * time.Second
)

// ErrNotFound marks a lookup for which the registry holds no record.
var ErrNotFound = services.Wrap(services.ErrNotFound, componentName, "", "company not found", nil)

// Client talks to the Companies House public data API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	delay      time.Duration
	maxRetries int
	backoff    time.Duration
	cache      Cache
	cacheTTL   time.Duration
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

// WithTimeout bounds every individual request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit paces requests to at most rpm per minute. Zero disables pacing.
func WithRateLimit(rpm int) Option {
	return func(c *Client) {
		if rpm <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
	}
}

// WithRequestDelay sleeps for d after every request.
func WithRequestDelay(d time.Duration) Option {
	return func(c *Client) {
		c.delay = max(d, 0)
	}
}

// WithMaxRetries sets how many times a retriable failure is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = max(n, 0)
	}
}

// WithBackoff sets the initial retry backoff.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.backoff = d
		}
	}
}

// WithCache stores successful responses in cache for ttl.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithLogger sets the logger used for request and retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, componentName)
		}
	}
}

// New creates a registry client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, componentName, "init", "api key required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, componentName, "init", "base url required", nil)
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    defaultTimeout,
		backoff:    InitialBackoff,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig builds a client from the [registry] config section. cache may
// be nil; it is ignored when caching is disabled.
func NewFromConfig(cfg *config.Config, cache Cache, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	reg := cfg.Registry
	opts := []Option{
		WithTimeout(time.Duration(reg.TimeoutSeconds) * time.Second),
		WithRateLimit(reg.RequestsPerMinute),
		WithRequestDelay(time.Duration(reg.RequestDelayMS) * time.Millisecond),
		WithMaxRetries(reg.MaxRetries),
		WithLogger(logger),
	}
	if reg.CacheEnabled && cache != nil {
		opts = append(opts, WithCache(cache, time.Duration(reg.CacheTTLHours)*time.Hour))
	}
	return New(reg.APIKey, reg.BaseURL, opts...)
}

// LookupByID fetches the full company profile for number.
func (c *Client) LookupByID(ctx context.Context, number string) (*Company, error) {
	number = strings.ToUpper(strings.TrimSpace(number))
	if number == "" {
		return nil, services.Wrap(services.ErrValidation, componentName, "lookup", "company number must not be empty", nil)
	}
	body, err := c.get(ctx, "lookup", "/company/"+url.PathEscape(number), nil, "company:"+number)
	if err != nil {
		return nil, err
	}
	var payload profilePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, services.Wrap(services.ErrTransient, componentName, "lookup", "decode profile", err)
	}
	company := payload.company()
	return &company, nil
}

// SearchByName runs a free-text company name search.
func (c *Client) SearchByName(ctx context.Context, name string) (*SearchResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.Wrap(services.ErrValidation, componentName, "search", "query must not be empty", nil)
	}
	params := url.Values{}
	params.Set("q", name)
	body, err := c.get(ctx, "search", "/search/companies", params, "search:"+textutil.Fold(name))
	if err != nil {
		return nil, err
	}
	var payload searchPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, services.Wrap(services.ErrTransient, componentName, "search", "decode search results", err)
	}
	return payload.result(), nil
}

// Ping issues a single unpaced, uncached search to confirm the API key is
// accepted.
func (c *Client) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("q", "test")
	params.Set("items_per_page", "1")
	_, err := c.fetch(ctx, "ping", c.endpoint("/search/companies", params))
	return c.classify("ping", err)
}

func (c *Client) get(ctx context.Context, operation, path string, params url.Values, cacheKey string) ([]byte, error) {
	if body, ok := c.cached(ctx, cacheKey); ok {
		return body, nil
	}
	endpoint := c.endpoint(path, params)

	var body []byte
	var err error
	for attempt := 1; ; attempt++ {
		if err = c.wait(ctx); err != nil {
			return nil, err
		}
		body, err = c.fetch(ctx, operation, endpoint)
		if pauseErr := SleepWithContext(ctx, c.delay); pauseErr != nil && err == nil {
			err = pauseErr
		}
		if err == nil || !IsRetriable(err) || attempt > c.maxRetries || ctx.Err() != nil {
			break
		}
		backoff := backoffFor(attempt, c.backoff, err)
		c.logger.Warn("registry request failed; retrying",
			logging.String("operation", operation),
			logging.Duration("backoff", backoff),
			logging.Int("attempt", attempt),
			logging.Int("max_retries", c.maxRetries),
			logging.Error(err),
			logging.String(logging.FieldErrorKind, services.Classify(c.classify(operation, err))),
		)
		if sleepErr := SleepWithContext(ctx, backoff); sleepErr != nil {
			return nil, sleepErr
		}
	}
	if err != nil {
		return nil, c.classify(operation, err)
	}
	c.store(ctx, cacheKey, body)
	return body, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) endpoint(path string, params url.Values) string {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	return endpoint
}

func (c *Client) fetch(ctx context.Context, operation, endpoint string) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("registry request",
		logging.String("operation", operation),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", latency),
	)
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &statusError{code: resp.StatusCode, retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response (latency=%v): %w", latency, err)
	}
	return body, nil
}

// classify tags a raw request failure with a services marker.
func (c *Client) classify(operation string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var status *statusError
	if errors.As(err, &status) {
		switch status.code {
		case http.StatusNotFound:
			return ErrNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			return services.Wrap(services.ErrConfiguration, componentName, operation, "api key rejected", err)
		}
		return services.Wrap(services.ErrTransient, componentName, operation, "", err)
	}
	if isTimeout(err) {
		return services.Wrap(services.ErrTimeout, componentName, operation, "", err)
	}
	return services.Wrap(services.ErrTransient, componentName, operation, "", err)
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, ok, err := c.cache.GetRegistryResponse(ctx, key, c.cacheTTL)
	if err != nil {
		c.logger.Warn("registry cache read failed", logging.String("key", key), logging.Error(err))
		return nil, false
	}
	return body, ok
}

func (c *Client) store(ctx context.Context, key string, body []byte) {
	if c.cache == nil {
		return
	}
	if err := c.cache.PutRegistryResponse(ctx, key, body); err != nil {
		c.logger.Warn("registry cache write failed", logging.String("key", key), logging.Error(err))
	}
}

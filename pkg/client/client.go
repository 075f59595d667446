// Package client provides the core artworks API HTTP client with bounded
// retry, backoff, rate limiting, optional response caching, and error
// classification.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/artic-report/pkg/cache"
	"github.com/Sternrassler/artic-report/pkg/ratelimit"
)

// Prometheus metrics for API client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artic_requests_total",
		Help: "Total API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "artic_request_duration_seconds",
		Help:    "API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artic_errors_total",
		Help: "Total API errors by class",
	}, []string{"class"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artic_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "artic_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0.1, 0.5, 1, 2, 4, 8},
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "artic_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// maxErrorBody bounds how much of a failed response body is kept on APIError.
const maxErrorBody = 4096

// Config holds the client configuration. It is constructed once at process
// start and passed in; the client reads no environment of its own.
type Config struct {
	// BaseURL is the API base URL; the search endpoint lives at BaseURL/search.
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// APIKey, when set, is sent as a bearer credential.
	APIKey string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// Retry is the backoff schedule.
	Retry RetryConfig

	// RequestsPerSecond is the client-side courtesy rate limit (0 = unlimited).
	RequestsPerSecond float64

	// Burst is the rate limiter burst size.
	Burst int

	// Redis, when set, enables the response cache.
	Redis *redis.Client

	// CacheTTL is the lifetime of cached responses.
	CacheTTL time.Duration
}

// DefaultConfig returns a safe default configuration for the given base URL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:           baseURL,
		UserAgent:         "artic-report/1.0",
		Timeout:           20 * time.Second,
		Retry:             DefaultRetryConfig(),
		RequestsPerSecond: 5,
		Burst:             1,
		CacheTTL:          15 * time.Minute,
	}
}

// Client issues logical HTTP requests against the artworks API. One logical
// request may span several physical attempts, governed by the retry budget.
type Client struct {
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// New creates a new API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Retry.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must be >= 0 (got %d)", cfg.Retry.MaxRetries)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.Retry.BackoffBase <= 0 {
		cfg.Retry.BackoffBase = 0.8
	}
	if cfg.Retry.BackoffCap <= 0 {
		cfg.Retry.BackoffCap = 8 * time.Second
	}

	logger := log.With().Str("component", "api-client").Logger()

	var cacheManager *cache.Manager
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis, cfg.CacheTTL)
	}

	var limiter *ratelimit.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = ratelimit.New(cfg.RequestsPerSecond, cfg.Burst)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		cache:      cacheManager,
		config:     cfg,
		logger:     logger,
	}, nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Do performs one logical request with the full retry policy. It returns the
// response only on a 2xx status; any other outcome is an error:
//
//   - transport failures and 429/503 are retried up to the budget, then
//     surfaced wrapped in ErrRetryExhausted
//   - every other 4xx/5xx propagates immediately as *APIError
func (c *Client) Do(ctx context.Context, method, path string, query url.Values) (*http.Response, error) {
	endpoint := path
	if endpoint == "" {
		endpoint = "/"
	}

	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	rawURL := c.config.BaseURL + path
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	var lastErr error
	var lastClass ErrorClass

	for attempt := 0; attempt <= c.config.Retry.MaxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.config.UserAgent != "" {
			req.Header.Set("User-Agent", c.config.UserAgent)
		}
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			lastClass = ErrorClassNetwork
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()

			if attempt >= c.config.Retry.MaxRetries {
				break
			}

			wait := c.config.Retry.transportWait(attempt)
			retriesTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			retryBackoffSeconds.WithLabelValues(string(ErrorClassNetwork)).Observe(wait.Seconds())
			c.logger.Warn().
				Err(err).
				Str("endpoint", endpoint).
				Dur("wait", wait).
				Int("attempt", attempt).
				Msg("Request failure, backing off")
			if serr := sleep(ctx, wait); serr != nil {
				return nil, serr
			}
			continue
		}

		if retryableStatus(resp.StatusCode) {
			class := classifyStatus(resp.StatusCode)
			lastClass = class
			requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
			errorsTotal.WithLabelValues(string(class)).Inc()

			retryAfter := resp.Header.Get("Retry-After")
			lastErr = &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: class,
				Body:       readErrorBody(resp),
			}

			if attempt >= c.config.Retry.MaxRetries {
				break
			}

			wait := c.config.Retry.retryAfterWait(retryAfter, attempt)
			retriesTotal.WithLabelValues(string(class)).Inc()
			retryBackoffSeconds.WithLabelValues(string(class)).Observe(wait.Seconds())
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("retry_after", retryAfter).
				Dur("wait", wait).
				Int("attempt", attempt).
				Msg("Transient status, backing off")
			if serr := sleep(ctx, wait); serr != nil {
				return nil, serr
			}
			continue
		}

		if resp.StatusCode >= 400 {
			class := classifyStatus(resp.StatusCode)
			requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
			errorsTotal.WithLabelValues(string(class)).Inc()
			apiErr := &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: class,
				Body:       readErrorBody(resp),
			}
			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(class)).
				Msg("Non-retryable API error")
			return nil, apiErr
		}

		requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
		if attempt > 0 {
			c.logger.Info().
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Msg("Request succeeded after retry")
		}
		return resp, nil
	}

	retryExhaustedTotal.WithLabelValues(string(lastClass)).Inc()
	c.logger.Error().
		Err(lastErr).
		Str("endpoint", endpoint).
		Int("tries", c.config.Retry.MaxRetries+1).
		Msg("Retry attempts exhausted")
	return nil, fmt.Errorf("%w after %d tries: %w", ErrRetryExhausted, c.config.Retry.MaxRetries+1, lastErr)
}

// GetJSON performs a GET request and decodes the JSON response body into v.
// When the response cache is enabled, successful bodies are served from and
// written through it.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, v any) error {
	key := cache.Key{Endpoint: path, Query: query}

	if c.cache != nil {
		entry, err := c.cache.Get(ctx, key)
		if err == nil {
			c.logger.Debug().Str("endpoint", path).Msg("Serving response from cache")
			if uerr := json.Unmarshal(entry.Data, v); uerr != nil {
				return fmt.Errorf("decode cached response: %w", uerr)
			}
			return nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("endpoint", path).Msg("Cache get error")
		}
	}

	resp, err := c.Do(ctx, http.MethodGet, path, query)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if c.cache != nil && resp.StatusCode == http.StatusOK {
		entry := &cache.Entry{Data: body, StatusCode: resp.StatusCode, CachedAt: time.Now()}
		if cerr := c.cache.Set(ctx, key, entry); cerr != nil {
			c.logger.Warn().Err(cerr).Str("endpoint", path).Msg("Failed to cache response")
		}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readErrorBody reads a bounded prefix of a failed response body and closes it.
func readErrorBody(resp *http.Response) string {
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return ""
	}
	return string(body)
}

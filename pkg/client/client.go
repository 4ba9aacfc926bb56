// Package client provides the core WiGLE HTTP client with rate limiting,
// optional response caching, and error handling.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wigletool/wigle-export/pkg/cache"
	"github.com/wigletool/wigle-export/pkg/ratelimit"
	"github.com/wigletool/wigle-export/pkg/wigle"
)

// Prometheus metrics for WiGLE client operations.
var (
	wigleRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wigle_requests_total",
		Help: "Total WiGLE requests by endpoint and status",
	}, []string{"endpoint", "status"})

	wigleRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wigle_request_duration_seconds",
		Help:    "WiGLE request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	wigleErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wigle_errors_total",
		Help: "Total WiGLE errors by class",
	}, []string{"class"})
)

// Client is the WiGLE API client.
type Client struct {
	httpClient  *http.Client
	rateLimiter *ratelimit.Limiter
	cache       *cache.Manager
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the WiGLE API (default: wigle.DefaultBaseURL).
	BaseURL string

	// Username is the WiGLE API name used for HTTP Basic auth.
	Username string

	// APIToken is the WiGLE API token used for HTTP Basic auth.
	APIToken string

	// UserAgent header sent with every request.
	UserAgent string

	// RateLimit is the sustained request rate in requests per second.
	// Zero or negative disables local pacing.
	RateLimit float64

	// Timeout per HTTP request.
	Timeout time.Duration

	// Redis enables the detail-response cache when non-nil.
	Redis *redis.Client

	// CacheTTL is how long cached detail responses stay fresh.
	CacheTTL time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(username, apiToken string) Config {
	return Config{
		BaseURL:   wigle.DefaultBaseURL,
		Username:  username,
		APIToken:  apiToken,
		UserAgent: "wigle-export/1.0",
		RateLimit: 2,
		Timeout:   60 * time.Second,
		CacheTTL:  24 * time.Hour,
	}
}

// New creates a new WiGLE client.
func New(cfg Config) (*Client, error) {
	if cfg.Username == "" {
		return nil, fmt.Errorf("username (API name) is required")
	}

	if cfg.APIToken == "" {
		return nil, fmt.Errorf("api token is required")
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = wigle.DefaultBaseURL
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	logger := log.With().Str("component", "wigle-client").Logger()

	var cacheManager *cache.Manager
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: ratelimit.New(cfg.RateLimit, logger),
		cache:       cacheManager,
		config:      cfg,
		logger:      logger,
	}, nil
}

// Get performs a GET request against a WiGLE endpoint path with the given
// query parameters and returns the response body. Transient failures
// (timeouts, 5xx, 429) are retried with exponential backoff; authorization
// failures and other 4xx errors surface immediately as *APIError.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	startTime := time.Now()
	defer func() {
		wigleRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	reqURL := c.config.BaseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Msg("Executing WiGLE request")

	var body []byte

	retryErr := retryWithBackoff(ctx, func() error {
		// Each attempt is paced individually so retries cannot burst.
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrContextCancelled, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.SetBasicAuth(c.config.Username, c.config.APIToken)
		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set("Accept", "application/json")

		resp, reqErr := c.httpClient.Do(req)
		if reqErr != nil {
			c.logger.Error().Err(reqErr).Str("endpoint", endpoint).Msg("HTTP request failed")
			wigleErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			wigleRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return &APIError{
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				Err:        reqErr,
			}
		}
		defer resp.Body.Close()

		wigleRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

		if resp.StatusCode >= 400 {
			errClass := classifyStatus(resp.StatusCode)
			wigleErrorsTotal.WithLabelValues(string(errClass)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("WiGLE request error")

			return &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Message:    resp.Status,
			}
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			wigleErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return &APIError{
				ErrorClass: ErrorClassNetwork,
				Message:    "read response body",
				Err:        err,
			}
		}
		return nil
	}, classifyErr)

	if retryErr != nil {
		return nil, retryErr
	}

	return body, nil
}

// GetCached performs a GET request served from the detail-response cache
// when one is configured. Only successful responses are cached; cache
// errors fall back to a direct request.
func (c *Client) GetCached(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if c.cache == nil {
		return c.Get(ctx, endpoint, params)
	}

	key := cache.Key{Endpoint: endpoint, QueryParams: params}

	entry, err := c.cache.Get(ctx, key)
	if err == nil {
		c.logger.Debug().
			Str("endpoint", endpoint).
			Time("cached_at", entry.CachedAt).
			Msg("Cache hit")
		return entry.Data, nil
	}
	if err != cache.ErrCacheMiss {
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
	}

	body, err := c.Get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	if setErr := c.cache.Set(ctx, key, cache.NewEntry(body, http.StatusOK, c.config.CacheTTL)); setErr != nil {
		c.logger.Warn().Err(setErr).Str("endpoint", endpoint).Msg("Failed to cache response")
	}

	return body, nil
}

// classifyErr maps an error back to its ErrorClass for retry decisions.
func classifyErr(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorClass
	}
	return ErrorClassNetwork
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Package client provides the domains service RPC client with throttle
// tracking, optional response caching and error classification.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/domains-client/pkg/cache"
	"github.com/Sternrassler/domains-client/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for RPC calls.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domains_requests_total",
		Help: "Total domains service requests by operation and status",
	}, []string{"operation", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "domains_request_duration_seconds",
		Help:    "Domains service request duration in seconds by operation",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"operation"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domains_errors_total",
		Help: "Total domains service errors by class",
	}, []string{"class"})
)

const (
	// TargetPrefix prefixes the operation name in the X-Service-Target header.
	TargetPrefix = "DomainsService."

	// ContentType is the request and response media type of the service.
	ContentType = "application/x-amz-json-1.1"

	// maxErrorBody bounds how much of a fault body is read.
	maxErrorBody = 64 << 10
)

// Client invokes domains service operations. Every Invoke is one logical
// RPC call; with the default retry config it is exactly one network call.
type Client struct {
	httpClient *http.Client
	throttle   *ratelimit.Tracker
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Endpoint is the service URL, e.g. "https://domains.example.com/".
	Endpoint string

	// UserAgent header (required)
	UserAgent string

	// Profile partitions cache entries between credential profiles.
	Profile string

	// Redis enables the shared throttle state and the response cache.
	// Optional.
	Redis *redis.Client

	// Timeout per HTTP request
	Timeout time.Duration

	// CacheTTL is the fallback lifetime of cached responses. 0 disables caching.
	CacheTTL time.Duration

	// ThrottleDelay is the pause before calls in throttle warning state.
	ThrottleDelay time.Duration

	// Retry controls re-sending failed calls. Default: a single attempt.
	Retry RetryConfig
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(endpoint, userAgent string) Config {
	return Config{
		Endpoint:      endpoint,
		UserAgent:     userAgent,
		Timeout:       30 * time.Second,
		ThrottleDelay: ratelimit.DefaultThrottleDelay,
		Retry:         DefaultRetryConfig(),
	}
}

// New creates a new domains service client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	if !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://") {
		return nil, fmt.Errorf("endpoint must be an http(s) URL (got %q)", cfg.Endpoint)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	if cfg.CacheTTL < 0 {
		return nil, fmt.Errorf("cache_ttl must be >= 0 (got %s)", cfg.CacheTTL)
	}

	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = 1
	}

	logger := log.With().Str("component", "domains-client").Logger()

	throttle := ratelimit.NewTracker(cfg.Redis, logger)
	if cfg.ThrottleDelay > 0 {
		throttle.SetThrottleDelay(cfg.ThrottleDelay)
	}

	var cacheManager *cache.Manager
	if cfg.Redis != nil && cfg.CacheTTL > 0 {
		cacheManager = cache.NewManager(cfg.Redis)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		throttle: throttle,
		cache:    cacheManager,
		config:   cfg,
		logger:   logger,
	}, nil
}

// Invoke calls operation with in serialized as the JSON request body and
// decodes the response into out (which may be nil).
//
// Failures are returned as *ServiceError, ErrRequestBlocked or, when retries
// are configured, wrapped in ErrRetryExhausted.
func (c *Client) Invoke(ctx context.Context, operation string, in, out any) error {
	if in == nil {
		in = struct{}{}
	}
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", operation, err)
	}

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: Throttle gate
	allowed, err := c.throttle.ShouldAllowRequest(ctx)
	if err != nil {
		c.logger.Error().Err(err).Msg("Throttle check failed")
		return fmt.Errorf("%s: throttle check: %w", operation, err)
	}
	if !allowed {
		c.logger.Warn().
			Str("operation", operation).
			Msg("Request blocked by throttle tracker")
		requestsTotal.WithLabelValues(operation, "blocked").Inc()
		return fmt.Errorf("%s: %w", operation, ErrRequestBlocked)
	}

	// Step 2: Cache lookup
	cacheKey := cache.CacheKey{
		Operation: operation,
		Body:      body,
		Profile:   c.config.Profile,
	}
	if c.cache != nil {
		entry, err := c.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			c.logger.Debug().
				Str("operation", operation).
				Dur("ttl", entry.TTL()).
				Msg("Serving response from cache")
			requestsTotal.WithLabelValues(operation, "cached").Inc()
			return decodeResponse(operation, entry.Data, out)
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("operation", operation).Msg("Cache get error")
		}
	}

	// Step 3: Call the service
	c.logger.Debug().
		Str("operation", operation).
		Int("request_bytes", len(body)).
		Msg("Invoking service operation")

	var data []byte
	err = retryWithBackoff(ctx, c.config.Retry, func() error {
		var callErr error
		data, callErr = c.send(ctx, operation, body, cacheKey)
		return callErr
	})
	if err != nil {
		return err
	}

	return decodeResponse(operation, data, out)
}

// send performs one HTTP round trip.
func (c *Client) send(ctx context.Context, operation string, body []byte, cacheKey cache.CacheKey) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &ServiceError{
			Operation:  operation,
			ErrorClass: ErrorClassClient,
			Message:    "create request",
			Err:        err,
		}
	}
	req.Header.Set("Content-Type", ContentType)
	req.Header.Set("Accept", ContentType)
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Service-Target", TargetPrefix+operation)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("operation", operation).Msg("HTTP request failed")
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(operation, "network_error").Inc()
		return nil, &ServiceError{
			Operation:  operation,
			ErrorClass: ErrorClassNetwork,
			Message:    "send request",
			Err:        err,
		}
	}
	defer resp.Body.Close()

	if err := c.throttle.UpdateFromHeaders(ctx, resp.Header); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to update throttle state from headers")
	}

	status := strconv.Itoa(resp.StatusCode)
	if resp.StatusCode >= 400 {
		svcErr := decodeServiceError(operation, resp)
		errorsTotal.WithLabelValues(string(svcErr.ErrorClass)).Inc()
		requestsTotal.WithLabelValues(operation, status).Inc()

		c.logger.Warn().
			Str("operation", operation).
			Int("status", resp.StatusCode).
			Str("error_class", string(svcErr.ErrorClass)).
			Str("code", svcErr.Code).
			Str("request_id", svcErr.RequestID).
			Msg("Service returned error")
		return nil, svcErr
	}
	requestsTotal.WithLabelValues(operation, status).Inc()

	if c.cache != nil {
		c.storeResponse(ctx, cacheKey, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &ServiceError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}
	return data, nil
}

// storeResponse caches a successful response. Failures only log.
func (c *Client) storeResponse(ctx context.Context, key cache.CacheKey, resp *http.Response) {
	entry, err := cache.ResponseToEntry(resp, c.config.CacheTTL)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		return
	}
	if entry.TTL() <= 0 {
		return
	}
	if err := c.cache.Set(ctx, key, entry); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to cache response")
		return
	}
	c.logger.Debug().
		Str("operation", key.Operation).
		Dur("ttl", entry.TTL()).
		Msg("Cached response")
}

// faultBody is the JSON error document of the service.
type faultBody struct {
	Type         string `json:"__type"`
	Message      string `json:"message"`
	MessageUpper string `json:"Message"`
}

// decodeServiceError builds a ServiceError from an error response.
func decodeServiceError(operation string, resp *http.Response) *ServiceError {
	svcErr := &ServiceError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
		RequestID:  resp.Header.Get("X-Request-Id"),
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err == nil && len(raw) > 0 {
		var fault faultBody
		if json.Unmarshal(raw, &fault) == nil {
			// Fault types may be namespaced: "prefix#InvalidInput".
			if i := strings.LastIndex(fault.Type, "#"); i >= 0 {
				fault.Type = fault.Type[i+1:]
			}
			svcErr.Code = fault.Type
			switch {
			case fault.Message != "":
				svcErr.Message = fault.Message
			case fault.MessageUpper != "":
				svcErr.Message = fault.MessageUpper
			}
		}
	}

	svcErr.ErrorClass = classifyStatus(resp.StatusCode, svcErr.Code)
	return svcErr
}

func decodeResponse(operation string, data []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}

// Close releases idle connections. The Redis client stays owned by the caller.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// GetCache returns the cache manager, nil when caching is disabled.
func (c *Client) GetCache() *cache.Manager {
	return c.cache
}

// Throttle returns the throttle tracker.
func (c *Client) Throttle() *ratelimit.Tracker {
	return c.throttle
}

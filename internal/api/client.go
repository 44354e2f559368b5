package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// Default endpoint paths on the data service.
const (
	DefaultFetchPath   = "/getData"
	DefaultPredictPath = "/predictData"
)

// Client provides access to the TFR data service.
type Client struct {
	baseURL     string
	apiKey      string
	fetchPath   string
	predictPath string
	httpClient  *http.Client
	logger      *slog.Logger
	breaker     *gobreaker.CircuitBreaker

	maxResponseBytes int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new data service client.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     baseURL,
		fetchPath:   DefaultFetchPath,
		predictPath: DefaultPredictPath,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:           slog.Default(),
		maxResponseBytes: 8 << 20,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.breaker == nil {
		c.breaker = NewBreaker("tfr-source", 3, 30*time.Second)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithAPIKey sets a bearer token sent on every request.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithPaths overrides the fetch and predict endpoint paths.
func WithPaths(fetchPath, predictPath string) ClientOption {
	return func(c *Client) {
		if fetchPath != "" {
			c.fetchPath = fetchPath
		}
		if predictPath != "" {
			c.predictPath = predictPath
		}
	}
}

// WithBreaker sets the circuit breaker guarding outgoing calls.
func WithBreaker(cb *gobreaker.CircuitBreaker) ClientOption {
	return func(c *Client) {
		c.breaker = cb
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewBreaker builds a breaker that opens after maxFailures consecutive
// failures and stays open for openTimeout before letting a trial call through.
func NewBreaker(name string, maxFailures uint32, openTimeout time.Duration) *gobreaker.CircuitBreaker {
	if maxFailures == 0 {
		maxFailures = 1
	}
	st := gobreaker.Settings{
		Name:    name,
		Timeout: openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Default().Info("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}
	return gobreaker.NewCircuitBreaker(st)
}

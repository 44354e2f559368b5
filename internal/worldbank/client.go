// Package worldbank downloads indicator series from the World Bank API.
//
// The API answers GET /country/{country}/indicator/{indicator} with a
// two-element JSON array: paging metadata, then the observations. Errors come
// back as a one-element array carrying a message list.
package worldbank

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/rickgao/tfr-chart/internal/api"
)

// DefaultPerPage keeps a full 1939-2023 range on one page.
const DefaultPerPage = 1000

// Query selects one indicator for one country over a year range.
type Query struct {
	Country   string
	Indicator string
	FromYear  int
	ToYear    int
}

// Observation is one yearly value. Value is nil where the API has no data.
type Observation struct {
	Year  int
	Value *float64
}

// Client fetches indicator observations.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	breaker    *gobreaker.CircuitBreaker
	perPage    int
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a World Bank API client for baseURL, e.g.
// "https://api.worldbank.org/v2".
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:  slog.Default(),
		perPage: DefaultPerPage,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.breaker == nil {
		c.breaker = api.NewBreaker("worldbank", 3, 30*time.Second)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithBreaker sets the circuit breaker guarding requests.
func WithBreaker(cb *gobreaker.CircuitBreaker) ClientOption {
	return func(c *Client) {
		c.breaker = cb
	}
}

// WithPerPage sets the page size requested from the API.
func WithPerPage(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// Observations fetches every page of q, ordered as the API returns them.
func (c *Client) Observations(ctx context.Context, q Query) ([]Observation, error) {
	var out []Observation
	for page := 1; ; page++ {
		body, err := c.get(ctx, c.pageURL(q, page))
		if err != nil {
			return nil, err
		}

		meta, entries, err := decodePage(body)
		if err != nil {
			return nil, err
		}

		for _, e := range entries {
			obs, err := e.observation()
			if err != nil {
				return nil, err
			}
			out = append(out, obs)
		}

		c.logger.Debug("worldbank page fetched",
			"indicator", q.Indicator,
			"country", q.Country,
			"page", page,
			"pages", int(meta.Pages),
			"entries", len(entries),
		)

		if page >= int(meta.Pages) {
			return out, nil
		}
	}
}

func (c *Client) pageURL(q Query, page int) string {
	v := url.Values{}
	v.Set("date", fmt.Sprintf("%d:%d", q.FromYear, q.ToYear))
	v.Set("format", "json")
	v.Set("per_page", strconv.Itoa(c.perPage))
	v.Set("page", strconv.Itoa(page))

	return fmt.Sprintf("%s/country/%s/indicator/%s?%s",
		c.baseURL, url.PathEscape(q.Country), url.PathEscape(q.Indicator), v.Encode())
}

// get performs one request through the breaker. Failures are *api.NetworkError.
func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	var status int
	out, err := c.breaker.Execute(func() (interface{}, error) {
		b, code, err := c.doRequest(ctx, fullURL)
		status = code
		return b, err
	})
	if err != nil {
		c.logger.Warn("worldbank request failed", "url", fullURL, "status", status, "error", err)
		return nil, &api.NetworkError{Op: "download", URL: fullURL, StatusCode: status, Err: err}
	}
	return out.([]byte), nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("unsuccessful status: %d", resp.StatusCode)
	}

	return body, resp.StatusCode, nil
}

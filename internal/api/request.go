package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rickgao/tfr-chart/internal/model"
	"github.com/rickgao/tfr-chart/internal/series"
)

// errStatus marks a non-2xx response inside the breaker.
var errStatus = errors.New("unsuccessful status")

// FetchRaw retrieves the precomputed series as raw JSON.
func (c *Client) FetchRaw(ctx context.Context) ([]byte, error) {
	return c.do(ctx, "fetch", http.MethodGet, c.fetchPath, nil)
}

// PredictRaw posts the historical series and returns the extended series as raw JSON.
func (c *Client) PredictRaw(ctx context.Context, historical model.TimeSeries) ([]byte, error) {
	body, err := json.Marshal(historical.HistoricalRecords())
	if err != nil {
		return nil, fmt.Errorf("marshal predict body: %w", err)
	}
	return c.do(ctx, "predict", http.MethodPost, c.predictPath, body)
}

// FetchSeries retrieves and validates the precomputed series.
func (c *Client) FetchSeries(ctx context.Context, opts series.Options) (model.TimeSeries, error) {
	raw, err := c.FetchRaw(ctx)
	if err != nil {
		return model.TimeSeries{}, err
	}
	return series.ParseWith(raw, opts)
}

// PredictSeries posts historical data and validates the returned series.
func (c *Client) PredictSeries(ctx context.Context, historical model.TimeSeries) (model.TimeSeries, error) {
	raw, err := c.PredictRaw(ctx, historical)
	if err != nil {
		return model.TimeSeries{}, err
	}
	return series.Parse(raw)
}

// do performs one request through the circuit breaker.
func (c *Client) do(ctx context.Context, op, method, path string, body []byte) ([]byte, error) {
	fullURL := c.baseURL + path

	var status int
	out, err := c.breaker.Execute(func() (interface{}, error) {
		b, code, err := c.doRequest(ctx, method, fullURL, body)
		status = code
		return b, err
	})
	if err != nil {
		nErr := &NetworkError{Op: op, URL: fullURL, StatusCode: status, Err: err}
		c.logger.Warn("data service call failed",
			"op", op,
			"url", fullURL,
			"status", status,
			"error", err,
		)
		return nil, nErr
	}

	return out.([]byte), nil
}

// doRequest performs an HTTP request and returns the body and status code.
func (c *Client) doRequest(ctx context.Context, method, fullURL string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("data service request", "method", method, "url", fullURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("%w: %d", errStatus, resp.StatusCode)
	}

	return respBody, resp.StatusCode, nil
}

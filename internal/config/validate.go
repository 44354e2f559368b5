package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	u, err := url.Parse(c.Source.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("source.base_url must be an absolute URL, got %q", c.Source.BaseURL)
	}
	if !strings.HasPrefix(c.Source.FetchPath, "/") {
		return errors.New("source.fetch_path must start with /")
	}
	if !strings.HasPrefix(c.Source.PredictPath, "/") {
		return errors.New("source.predict_path must start with /")
	}
	if c.Source.MaxFileSize < 1 {
		return errors.New("source.max_file_size must be >= 1")
	}

	if c.Chart.RefreshInterval < 0 {
		return errors.New("chart.refresh_interval must be >= 0")
	}
	if c.Chart.Width < 1 || c.Chart.Height < 1 {
		return errors.New("chart.width and chart.height must be >= 1")
	}

	if c.Predict.Steps < 1 {
		return errors.New("predict.steps must be >= 1")
	}
	if c.Predict.MinValue >= c.Predict.MaxValue {
		return fmt.Errorf("predict.min_value (%g) must be below predict.max_value (%g)", c.Predict.MinValue, c.Predict.MaxValue)
	}

	switch c.Store.Driver {
	case "file":
		if c.Store.Path == "" {
			return errors.New("store.path is required for the file driver")
		}
	case "postgres":
		if err := c.Database.validate("database"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("store.driver must be file or postgres, got %q", c.Store.Driver)
	}

	if c.RateLimit.RPS <= 0 {
		return errors.New("rate_limit.rps must be > 0")
	}
	if c.RateLimit.Burst < 1 {
		return errors.New("rate_limit.burst must be >= 1")
	}

	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}

	u, err = url.Parse(c.Download.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("download.base_url must be an absolute URL, got %q", c.Download.BaseURL)
	}
	if c.Download.FromYear < 1 || c.Download.ToYear > 9999 || c.Download.FromYear > c.Download.ToYear {
		return fmt.Errorf("download.from_year (%d) and download.to_year (%d) must form a range within 1..9999",
			c.Download.FromYear, c.Download.ToYear)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

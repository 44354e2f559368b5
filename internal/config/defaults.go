package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 5000
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultAllowOrigin     = "*"
	DefaultBaseURL         = "http://localhost:5000"
	DefaultFetchPath       = "/getData"
	DefaultPredictPath     = "/predictData"
	DefaultSourceTimeout   = 30 * time.Second
	DefaultMaxFileSize     = 1 << 20
	DefaultChartTitle      = "Total Fertility Rate (TFR): historical and predicted"
	DefaultHistoricalUntil = 2023
	DefaultChartWidth      = 1000
	DefaultChartHeight     = 500
	DefaultPredictSteps    = 10
	DefaultPredictMax      = 10.0
	DefaultStoreDriver     = "file"
	DefaultStorePath       = "data/fertility_historical.json"
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "prefer"
	DefaultMaxConns        = 4
	DefaultMinConns        = 1
	DefaultBreakerFailures = 3
	DefaultBreakerTimeout  = 30 * time.Second
	DefaultRateLimitRPS    = 2
	DefaultRateLimitBurst  = 4
	DefaultMetricsPath     = "/metrics"
	DefaultDownloadURL     = "https://api.worldbank.org/v2"
	DefaultCountry         = "PL"
	DefaultIndicator       = "SP.DYN.TFRT.IN"
	DefaultFromYear        = 1939
	DefaultToYear          = 2023
)

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = DefaultIdleTimeout
	}
	if c.Server.AllowOrigin == "" {
		c.Server.AllowOrigin = DefaultAllowOrigin
	}

	// Source defaults
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = DefaultBaseURL
	}
	if c.Source.FetchPath == "" {
		c.Source.FetchPath = DefaultFetchPath
	}
	if c.Source.PredictPath == "" {
		c.Source.PredictPath = DefaultPredictPath
	}
	if c.Source.Timeout == 0 {
		c.Source.Timeout = DefaultSourceTimeout
	}
	if c.Source.MaxFileSize == 0 {
		c.Source.MaxFileSize = DefaultMaxFileSize
	}

	// Chart defaults
	if c.Chart.Title == "" {
		c.Chart.Title = DefaultChartTitle
	}
	if c.Chart.HistoricalUntil == 0 {
		c.Chart.HistoricalUntil = DefaultHistoricalUntil
	}
	if c.Chart.Width == 0 {
		c.Chart.Width = DefaultChartWidth
	}
	if c.Chart.Height == 0 {
		c.Chart.Height = DefaultChartHeight
	}

	// Predict defaults; MinValue keeps its zero default.
	if c.Predict.Steps == 0 {
		c.Predict.Steps = DefaultPredictSteps
	}
	if c.Predict.MaxValue == 0 {
		c.Predict.MaxValue = DefaultPredictMax
	}

	// Store defaults
	if c.Store.Driver == "" {
		c.Store.Driver = DefaultStoreDriver
	}
	if c.Store.Driver == "file" && c.Store.Path == "" {
		c.Store.Path = DefaultStorePath
	}
	applyDBDefaults(&c.Database)

	// Breaker defaults
	if c.Breaker.MaxFailures == 0 {
		c.Breaker.MaxFailures = DefaultBreakerFailures
	}
	if c.Breaker.OpenTimeout == 0 {
		c.Breaker.OpenTimeout = DefaultBreakerTimeout
	}

	// Rate limit defaults
	if c.RateLimit.RPS == 0 {
		c.RateLimit.RPS = DefaultRateLimitRPS
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = DefaultRateLimitBurst
	}

	// Metrics defaults
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Download defaults
	if c.Download.BaseURL == "" {
		c.Download.BaseURL = DefaultDownloadURL
	}
	if c.Download.Country == "" {
		c.Download.Country = DefaultCountry
	}
	if c.Download.Indicator == "" {
		c.Download.Indicator = DefaultIndicator
	}
	if c.Download.FromYear == 0 {
		c.Download.FromYear = DefaultFromYear
	}
	if c.Download.ToYear == 0 {
		c.Download.ToYear = DefaultToYear
	}
	if c.Download.Timeout == 0 {
		c.Download.Timeout = DefaultSourceTimeout
	}
	if c.Download.Output == "" {
		c.Download.Output = c.Store.Path
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}

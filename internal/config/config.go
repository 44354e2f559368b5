package config

import "time"

// Config is the root configuration for the data service and the chart app.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Source    SourceConfig    `yaml:"source"`
	Chart     ChartConfig     `yaml:"chart"`
	Predict   PredictConfig   `yaml:"predict"`
	Store     StoreConfig     `yaml:"store"`
	Database  DBConfig        `yaml:"database"`
	Breaker   BreakerConfig   `yaml:"breaker"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Download  DownloadConfig  `yaml:"download"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	AllowOrigin  string        `yaml:"allow_origin"` // CORS origin, "*" for any
}

// SourceConfig points the chart app at the data service.
type SourceConfig struct {
	BaseURL     string        `yaml:"base_url"`
	FetchPath   string        `yaml:"fetch_path"`
	PredictPath string        `yaml:"predict_path"`
	APIKey      string        `yaml:"api_key"` // Optional bearer token
	Timeout     time.Duration `yaml:"timeout"`
	MaxFileSize int64         `yaml:"max_file_size"` // Upload cap in bytes
}

// ChartConfig holds display settings.
type ChartConfig struct {
	Title           string        `yaml:"title"`
	HistoricalUntil int           `yaml:"historical_until"` // Unflagged years above this are estimated
	RefreshInterval time.Duration `yaml:"refresh_interval"` // 0 disables periodic refresh
	Width           int           `yaml:"width"`
	Height          int           `yaml:"height"`
}

// PredictConfig holds forecast settings for the data service.
type PredictConfig struct {
	Steps    int     `yaml:"steps"`
	MinValue float64 `yaml:"min_value"`
	MaxValue float64 `yaml:"max_value"`
}

// StoreConfig selects where historical observations live.
type StoreConfig struct {
	Driver string `yaml:"driver"` // "file" or "postgres"
	Path   string `yaml:"path"`   // JSON file for the file driver
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// BreakerConfig guards the predict call.
type BreakerConfig struct {
	MaxFailures uint32        `yaml:"max_failures"` // Consecutive failures before opening
	OpenTimeout time.Duration `yaml:"open_timeout"` // Time spent open before a trial request
}

// RateLimitConfig throttles POST /predictData.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DownloadConfig points tfrserver -download at the World Bank indicator API.
type DownloadConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Country   string        `yaml:"country"`   // ISO code, e.g. "PL"
	Indicator string        `yaml:"indicator"` // e.g. "SP.DYN.TFRT.IN"
	FromYear  int           `yaml:"from_year"`
	ToYear    int           `yaml:"to_year"`
	Timeout   time.Duration `yaml:"timeout"`
	Output    string        `yaml:"output"` // Defaults to store.path
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the fixed production endpoint for the AMB dynamic tariff.
const DefaultAPIURL = "https://amb-dynamic-current-api.uschti.ch/amb-data"

// Config holds all application configuration.
type Config struct {
	Source struct {
		APIURL         string `yaml:"api_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"source"`
	Refresh struct {
		IntervalHours           float64 `yaml:"interval_hours"`
		FastAttempts            int     `yaml:"fast_attempts"`
		FastIntervalMinutes     int     `yaml:"fast_interval_minutes"`
		ExtendedAttempts        int     `yaml:"extended_attempts"`
		ExtendedIntervalMinutes int     `yaml:"extended_interval_minutes"`
	} `yaml:"refresh"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"server"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is fine; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("AMB_API_URL"); v != "" {
		cfg.Source.APIURL = v
	}
	if v := os.Getenv("AMB_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Source.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("REFRESH_INTERVAL_HOURS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Refresh.IntervalHours = f
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}

	// Defaults
	if cfg.Source.APIURL == "" {
		cfg.Source.APIURL = DefaultAPIURL
	}
	if cfg.Source.TimeoutSeconds == 0 {
		cfg.Source.TimeoutSeconds = 15
	}
	if cfg.Refresh.IntervalHours == 0 {
		cfg.Refresh.IntervalHours = 2
	}
	if cfg.Refresh.FastAttempts == 0 {
		cfg.Refresh.FastAttempts = 5
	}
	if cfg.Refresh.FastIntervalMinutes == 0 {
		cfg.Refresh.FastIntervalMinutes = 1
	}
	if cfg.Refresh.ExtendedAttempts == 0 {
		cfg.Refresh.ExtendedAttempts = 20
	}
	if cfg.Refresh.ExtendedIntervalMinutes == 0 {
		cfg.Refresh.ExtendedIntervalMinutes = 10
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/tariffwatch.db"
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8480"
	}

	return cfg, nil
}

// Validate checks that all values are inside their allowed ranges.
func (c *Config) Validate() error {
	if c.Source.APIURL == "" {
		return fmt.Errorf("source.api_url is required")
	}
	if c.Source.TimeoutSeconds <= 0 {
		return fmt.Errorf("source.timeout_seconds must be positive")
	}
	if c.Refresh.IntervalHours < 0.5 || c.Refresh.IntervalHours > 24 {
		return fmt.Errorf("refresh.interval_hours must be between 0.5 and 24")
	}
	if c.Refresh.FastAttempts <= 0 || c.Refresh.ExtendedAttempts <= 0 {
		return fmt.Errorf("retry attempt counts must be positive")
	}
	if c.Refresh.FastIntervalMinutes <= 0 || c.Refresh.ExtendedIntervalMinutes <= 0 {
		return fmt.Errorf("retry intervals must be positive")
	}
	return nil
}

// Timeout is the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Source.TimeoutSeconds) * time.Second
}

// RefreshInterval is the period between scheduled refreshes.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Refresh.IntervalHours * float64(time.Hour))
}

// FastInterval is the sleep between fast-tier retry attempts.
func (c *Config) FastInterval() time.Duration {
	return time.Duration(c.Refresh.FastIntervalMinutes) * time.Minute
}

// ExtendedInterval is the sleep between extended-tier retry attempts.
func (c *Config) ExtendedInterval() time.Duration {
	return time.Duration(c.Refresh.ExtendedIntervalMinutes) * time.Minute
}

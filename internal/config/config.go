package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Planet   PlanetConfig   `mapstructure:"planet"`
	Database DatabaseConfig `mapstructure:"database"`
	Tides    TidesConfig    `mapstructure:"tides"`
	Search   SearchConfig   `mapstructure:"search"`
	Export   ExportConfig   `mapstructure:"export"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type PlanetConfig struct {
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	TilesURL string `mapstructure:"tiles_url"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type TidesConfig struct {
	LocalOffsetHours int `mapstructure:"local_offset_hours"`
}

type SearchConfig struct {
	DaysBack       int     `mapstructure:"days_back"`
	MinVisible     float64 `mapstructure:"min_visible"`
	GridSize       int     `mapstructure:"grid_size"`
	ItemType       string  `mapstructure:"item_type"`
	MaxTideGapMins int     `mapstructure:"max_tide_gap_mins"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("planet.base_url", "https://api.planet.com")
	v.SetDefault("planet.tiles_url", "https://tiles0.planet.com")
	v.SetDefault("database.path", "data/tidesat.db")
	v.SetDefault("tides.local_offset_hours", 10)
	v.SetDefault("search.days_back", 365)
	v.SetDefault("search.min_visible", 80.0)
	v.SetDefault("search.grid_size", 3)
	v.SetDefault("search.item_type", "SkySatCollect")
	v.SetDefault("search.max_tide_gap_mins", 30)
	v.SetDefault("export.dir", "exports")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: TIDESAT_PLANET_API_KEY maps to planet.api_key
	v.SetEnvPrefix("TIDESAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// PL_API_KEY is the conventional Planet variable, accept it too.
	_ = v.BindEnv("planet.api_key", "TIDESAT_PLANET_API_KEY", "PL_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that configuration fields are sane. The Planet API key
// is not required here since local tide parsing works without one.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Search.GridSize < 1 || c.Search.GridSize > 9 {
		errs = append(errs, fmt.Sprintf("search.grid_size must be 1-9, got %d", c.Search.GridSize))
	}
	if c.Search.DaysBack <= 0 {
		errs = append(errs, "search.days_back must be positive")
	}
	if c.Search.MinVisible < 0 || c.Search.MinVisible > 100 {
		errs = append(errs, fmt.Sprintf("search.min_visible must be 0-100, got %g", c.Search.MinVisible))
	}
	if c.Search.MaxTideGapMins <= 0 {
		errs = append(errs, "search.max_tide_gap_mins must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

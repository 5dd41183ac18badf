// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig            `yaml:"server"`
	Log       LogConfig               `yaml:"log"`
	Spotify   SpotifyConfig           `yaml:"spotify"`
	Catalog   CatalogConfig           `yaml:"catalog"`
	Recommend RecommendConfig         `yaml:"recommend"`
	Genres    GenresConfig            `yaml:"genres"`
	Filters   map[string]FilterConfig `yaml:"filters"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr              string      `yaml:"addr" default:":8080"`
	APIToken          string      `yaml:"api_token"`
	RequestTimeoutSec int         `yaml:"request_timeout_sec" default:"30" validate:"gte=1,lte=300"`
	Hooks             HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// LogConfig represents logging configuration. Command-line flags override it.
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Output string `yaml:"output" default:"stdout"`
}

// SpotifyConfig represents Spotify API configuration.
type SpotifyConfig struct {
	ClientID          string `yaml:"client_id" validate:"required"`
	ClientSecret      string `yaml:"client_secret" validate:"required"`
	RefreshToken      string `yaml:"refresh_token" validate:"required"`
	Market            string `yaml:"market" validate:"omitempty,len=2" default:"US"`
	RequestsPerSecond int    `yaml:"requests_per_second" default:"5" validate:"gte=1,lte=100"`
	MaxRetries        int    `yaml:"max_retries" default:"3" validate:"gte=1,lte=10"`
}

// CatalogConfig represents track list caching.
type CatalogConfig struct {
	CacheTTLSec   int      `yaml:"cache_ttl_sec" default:"300" validate:"gte=0"`
	WarmPlaylists []string `yaml:"warm_playlists"`
}

// RecommendConfig represents traversal defaults.
type RecommendConfig struct {
	DefaultAlgorithm string `yaml:"default_algorithm" default:"dfs" validate:"oneof=dfs bfs"`
	MaxLimit         int    `yaml:"max_limit" default:"50" validate:"gte=1"`
	TopGenres        int    `yaml:"top_genres" default:"15" validate:"gte=1,lte=100"`
}

// GenresConfig represents genre enrichment for tracks whose artists carry no genre.
type GenresConfig struct {
	Providers []ProviderConfig `yaml:"providers" validate:"dive"`
}

// ProviderConfig represents a single genre provider configuration.
type ProviderConfig struct {
	Type     string         `yaml:"type" validate:"required,oneof=lastfm static"`
	Settings map[string]any `yaml:"settings"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse builds a configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REFRESH_TOKEN"); v != "" {
		c.Spotify.RefreshToken = v
	}
	if v := os.Getenv("LASTFM_API_KEY"); v != "" {
		for i := range c.Genres.Providers {
			if c.Genres.Providers[i].Type == "lastfm" {
				if c.Genres.Providers[i].Settings == nil {
					c.Genres.Providers[i].Settings = make(map[string]any)
				}
				c.Genres.Providers[i].Settings["api_key"] = v
				break
			}
		}
	}
	if v := os.Getenv("TUNETIED_API_TOKEN"); v != "" {
		c.Server.APIToken = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// RequestTimeout returns the per-request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSec) * time.Second
}

// CacheTTL returns how long a fetched track list stays fresh.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Catalog.CacheTTLSec) * time.Second
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}

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
	Server    ServerConfig              `yaml:"server"`
	Log       LogConfig                 `yaml:"log"`
	Admin     AdminConfig               `yaml:"admin"`
	Spotify   SpotifyConfig             `yaml:"spotify"`
	LastFM    LastFMConfig              `yaml:"lastfm"`
	Cache     CacheConfig               `yaml:"cache"`
	Recommend RecommendConfig           `yaml:"recommend"`
	Sources   []SourceConfig            `yaml:"sources" validate:"required,min=1,dive"`
	Languages map[string]LanguageConfig `yaml:"languages" validate:"dive"`
	Filters   map[string]FilterConfig   `yaml:"filters"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr               string   `yaml:"addr" default:":8080"`
	CORSOrigins        []string `yaml:"cors_origins"`
	RateLimitPerMinute int      `yaml:"rate_limit_per_minute" default:"60" validate:"gte=0"`
	ShutdownTimeoutSec int      `yaml:"shutdown_timeout_sec" default:"10" validate:"gte=1,lte=120"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Output     string `yaml:"output" default:"stdout"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" default:"50" validate:"gte=1"`
	MaxBackups int    `yaml:"max_backups" default:"5" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" default:"14" validate:"gte=0"`
}

// AdminConfig represents admin-related configuration.
type AdminConfig struct {
	Token string `yaml:"token" validate:"required"`
}

// SpotifyConfig represents Spotify API configuration.
// Missing credentials are reported per request, not at startup.
type SpotifyConfig struct {
	ClientID          string        `yaml:"client_id"`
	ClientSecret      string        `yaml:"client_secret"`
	Market            string        `yaml:"market" validate:"omitempty,len=2" default:"US"`
	RequestTimeoutMs  int           `yaml:"request_timeout_ms" default:"6000" validate:"gte=100,lte=60000"`
	MaxRetries        int           `yaml:"max_retries" default:"2" validate:"gte=0,lte=5"`
	RetryBackoffMs    int           `yaml:"retry_backoff_ms" default:"400" validate:"gte=0,lte=10000"`
	MaxRetryAfterSec  int           `yaml:"max_retry_after_sec" default:"5" validate:"gte=0,lte=60"`
	RequestsPerSecond float64       `yaml:"requests_per_second" default:"10" validate:"gte=0"`
	Burst             int           `yaml:"burst" default:"10" validate:"gte=0"`
	Breaker           BreakerConfig `yaml:"breaker"`
}

// BreakerConfig represents circuit breaker configuration.
type BreakerConfig struct {
	MaxRequests  uint32  `yaml:"max_requests" default:"3"`
	IntervalSec  int     `yaml:"interval_sec" default:"60" validate:"gte=0"`
	TimeoutSec   int     `yaml:"timeout_sec" default:"30" validate:"gte=1"`
	MinRequests  uint32  `yaml:"min_requests" default:"10"`
	FailureRatio float64 `yaml:"failure_ratio" default:"0.6" validate:"gt=0,lte=1"`
}

// LastFMConfig represents Last.fm configuration. An empty key disables tags.
type LastFMConfig struct {
	APIKey     string `yaml:"api_key"`
	TimeoutMs  int    `yaml:"timeout_ms" default:"5000" validate:"gte=100"`
	RetryCount int    `yaml:"retry_count" default:"2" validate:"gte=0,lte=5"`
}

// CacheConfig represents cache configuration.
type CacheConfig struct {
	Backend               string      `yaml:"backend" default:"memory" validate:"oneof=memory redis"`
	Redis                 RedisConfig `yaml:"redis"`
	GenreSeedsTTLMin      int         `yaml:"genre_seeds_ttl_min" default:"720" validate:"gte=1"`
	PersonalizationTTLMin int         `yaml:"personalization_ttl_min" default:"10" validate:"gte=1"`
	TagsTTLMin            int         `yaml:"tags_ttl_min" default:"1440" validate:"gte=1"`
}

// RedisConfig represents redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr" default:"localhost:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" default:"0" validate:"gte=0"`
}

// RecommendConfig represents pipeline tuning.
type RecommendConfig struct {
	PlaylistSize      int     `yaml:"playlist_size" default:"20" validate:"gte=1,lte=50"`
	MaxPlaylistSize   int     `yaml:"max_playlist_size" default:"25" validate:"gte=1,lte=50"`
	DefaultMood       string  `yaml:"default_mood"`
	Workers           int     `yaml:"workers" default:"4" validate:"gte=3,lte=6"`
	PerQueryLimit     int     `yaml:"per_query_limit" default:"20" validate:"gte=1,lte=50"`
	PoolCap           int     `yaml:"pool_cap" default:"200" validate:"gte=10"`
	RequestDeadlineMs int     `yaml:"request_deadline_ms" default:"25000" validate:"gte=1000"`
	MinPool           int     `yaml:"min_pool" default:"10" validate:"gte=1"`
	GateCoverage      float64 `yaml:"gate_coverage" default:"0.35" validate:"gt=0,lte=1"`
	RelatedArtists    int     `yaml:"related_artists" default:"3" validate:"gte=1,lte=10"`
}

// SourceConfig represents a single candidate source configuration.
type SourceConfig struct {
	Type        string         `yaml:"type" validate:"required"`
	DisplayName string         `yaml:"display_name" validate:"required"`
	Settings    map[string]any `yaml:"settings"`
}

// LanguageConfig represents a configured language class.
type LanguageConfig struct {
	Type     string         `yaml:"type" validate:"required,oneof=script"`
	Settings map[string]any `yaml:"settings" validate:"required"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// DefaultSources returns the source chain used when none is configured.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{Type: "anchors", DisplayName: "Your favorites"},
		{Type: "mood_search", DisplayName: "Mood search"},
		{Type: "genre_recommendations", DisplayName: "Genre picks"},
		{Type: "lastfm_tags", DisplayName: "Last.fm tags"},
	}
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

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = DefaultSources()
	}

	// Validate configuration
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
	if v := os.Getenv("LASTFM_API_KEY"); v != "" {
		c.LastFM.APIKey = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		c.Admin.Token = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if c.Recommend.PlaylistSize > c.Recommend.MaxPlaylistSize {
		return errors.Newf("playlist_size (%d) must not exceed max_playlist_size (%d)",
			c.Recommend.PlaylistSize, c.Recommend.MaxPlaylistSize)
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return errors.New("cache.redis.addr is required for the redis backend")
	}

	return nil
}

// IsFilterEnabled checks if a filter is enabled.
// Filters absent from the configuration are enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return true
}

// FilterSettings returns the settings for a filter.
func (c *Config) FilterSettings(filterName string) map[string]any {
	if f, ok := c.Filters[filterName]; ok {
		return f.Settings
	}
	return nil
}

// RequestDeadline returns the top-level pipeline deadline.
func (r RecommendConfig) RequestDeadline() time.Duration {
	return time.Duration(r.RequestDeadlineMs) * time.Millisecond
}

// RequestTimeout returns the per-attempt catalog timeout.
func (s SpotifyConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutMs) * time.Millisecond
}

// RetryBackoff returns the base retry backoff.
func (s SpotifyConfig) RetryBackoff() time.Duration {
	return time.Duration(s.RetryBackoffMs) * time.Millisecond
}

// MaxRetryAfter returns the cap on server-supplied retry delays.
func (s SpotifyConfig) MaxRetryAfter() time.Duration {
	return time.Duration(s.MaxRetryAfterSec) * time.Second
}

// Minutes converts a TTL setting in minutes.
func Minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

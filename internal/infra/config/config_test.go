package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) Config {
	t.Helper()
	cfg := Config{
		Admin:   AdminConfig{Token: "test-admin-token"},
		Sources: DefaultSources(),
	}
	require.NoError(t, defaults.Set(&cfg))
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing admin token",
			mutate:  func(c *Config) { c.Admin.Token = "" },
			wantErr: true,
			errMsg:  "Token",
		},
		{
			name:    "invalid market length",
			mutate:  func(c *Config) { c.Spotify.Market = "JAPAN" },
			wantErr: true,
			errMsg:  "Market",
		},
		{
			name:    "no sources",
			mutate:  func(c *Config) { c.Sources = nil },
			wantErr: true,
			errMsg:  "Sources",
		},
		{
			name: "source without type",
			mutate: func(c *Config) {
				c.Sources = []SourceConfig{{DisplayName: "Nameless"}}
			},
			wantErr: true,
			errMsg:  "Type",
		},
		{
			name:    "unknown cache backend",
			mutate:  func(c *Config) { c.Cache.Backend = "memcached" },
			wantErr: true,
			errMsg:  "Backend",
		},
		{
			name: "playlist size above max",
			mutate: func(c *Config) {
				c.Recommend.PlaylistSize = 30
				c.Recommend.MaxPlaylistSize = 25
			},
			wantErr: true,
			errMsg:  "max_playlist_size",
		},
		{
			name: "language with unknown type",
			mutate: func(c *Config) {
				c.Languages = map[string]LanguageConfig{
					"ja": {Type: "neural", Settings: map[string]any{"script": "Han"}},
				}
			},
			wantErr: true,
			errMsg:  "Type",
		},
		{
			name:    "workers outside pool bounds",
			mutate:  func(c *Config) { c.Recommend.Workers = 12 },
			wantErr: true,
			errMsg:  "Workers",
		},
		{
			name:    "zero related artists",
			mutate:  func(c *Config) { c.Recommend.RelatedArtists = 0 },
			wantErr: true,
			errMsg:  "RelatedArtists",
		},
		{
			name:    "gate coverage out of range",
			mutate:  func(c *Config) { c.Recommend.GateCoverage = 1.5 },
			wantErr: true,
			errMsg:  "GateCoverage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err, "expected validation to fail")
				assert.Contains(t, err.Error(), tt.errMsg,
					"error message should mention the problematic field")
			} else {
				assert.NoError(t, err, "expected validation to pass")
			}
		})
	}
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")
	t.Setenv("LASTFM_API_KEY", "env-lastfm")
	t.Setenv("ADMIN_TOKEN", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_PASSWORD", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
admin:
  token: file-token
spotify:
  client_id: file-id
  market: JP
recommend:
  default_mood: Chill
languages:
  ja:
    type: script
    settings:
      script: Han
      min_ratio: 0.3
filters:
  duration_limit_filter:
    enabled: true
    settings:
      max_duration_minutes: 8
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-id", cfg.Spotify.ClientID)
	assert.Equal(t, "env-secret", cfg.Spotify.ClientSecret)
	assert.Equal(t, "env-lastfm", cfg.LastFM.APIKey)
	assert.Equal(t, "file-token", cfg.Admin.Token)
	assert.Equal(t, "JP", cfg.Spotify.Market)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 20, cfg.Recommend.PlaylistSize)
	assert.Equal(t, 25, cfg.Recommend.MaxPlaylistSize)
	assert.Equal(t, "Chill", cfg.Recommend.DefaultMood)
	assert.InDelta(t, 0.35, cfg.Recommend.GateCoverage, 1e-9)
	assert.Equal(t, 25*time.Second, cfg.Recommend.RequestDeadline())
	assert.Equal(t, 6*time.Second, cfg.Spotify.RequestTimeout())
	assert.Equal(t, 2, cfg.Spotify.MaxRetries)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 12*time.Hour, Minutes(cfg.Cache.GenreSeedsTTLMin))
	assert.Equal(t, 10*time.Minute, Minutes(cfg.Cache.PersonalizationTTLMin))

	assert.Equal(t, DefaultSources(), cfg.Sources)
	require.Contains(t, cfg.Languages, "ja")
	assert.Equal(t, "Han", cfg.Languages["ja"].Settings["script"])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Filters(t *testing.T) {
	cfg := validConfig(t)
	cfg.Filters = map[string]FilterConfig{
		"market_filter":         {Enabled: false},
		"duration_limit_filter": {Enabled: true, Settings: map[string]any{"max_duration_minutes": 8}},
	}

	assert.False(t, cfg.IsFilterEnabled("market_filter"))
	assert.True(t, cfg.IsFilterEnabled("duration_limit_filter"))
	assert.True(t, cfg.IsFilterEnabled("valid_track"))
	assert.Equal(t, 8, cfg.FilterSettings("duration_limit_filter")["max_duration_minutes"])
	assert.Nil(t, cfg.FilterSettings("valid_track"))
}

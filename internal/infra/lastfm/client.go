// Package lastfm provides a client for the Last.fm API.
package lastfm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/moodbox/internal/infra/cache"
)

const defaultBaseURL = "https://ws.audioscrobbler.com/2.0"

// Client is a Last.fm API client.
type Client struct {
	apiKey string
	http   *resty.Client

	tagCache    *cache.Typed[[]Tag]
	tracksCache *cache.Typed[[]TopTrack]
}

// Config represents Last.fm client configuration.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
}

// Tag represents a Last.fm tag.
type Tag struct {
	Name  string
	Count int // Tag count/frequency
}

// TopTrack represents a top track for a tag.
type TopTrack struct {
	Name   string
	Artist string
}

// topTagsResponse represents the response from artist.getTopTags API.
type topTagsResponse struct {
	TopTags struct {
		Tag []struct {
			Name  string `json:"name"`
			Count int    `json:"count"`
		} `json:"tag"`
	} `json:"toptags"`
}

// topTracksResponse represents the response from tag.getTopTracks API.
type topTracksResponse struct {
	Tracks struct {
		Track []struct {
			Name   string `json:"name"`
			Artist struct {
				Name string `json:"name"`
			} `json:"artist"`
		} `json:"track"`
	} `json:"tracks"`
}

// apiError represents an error response from Last.fm API.
type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// New creates a new Last.fm client. store backs the tag caches and may be nil.
func New(cfg Config, store cache.Store) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("last.fm API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(300 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	c := &Client{apiKey: cfg.APIKey, http: httpClient}
	if store != nil {
		c.tagCache = cache.NewTyped[[]Tag](store)
		c.tracksCache = cache.NewTyped[[]TopTrack](store)
	}
	return c, nil
}

// ArtistTopTags retrieves top tags for an artist.
// Reference: https://www.last.fm/api/show/artist.getTopTags
func (c *Client) ArtistTopTags(ctx context.Context, artistName string, limit int) ([]Tag, error) {
	if artistName == "" {
		return nil, errors.New("artist name is required")
	}
	limit = clampLimit(limit, 10)

	cacheKey := fmt.Sprintf("artisttag:%s:%d", strings.ToLower(artistName), limit)
	if c.tagCache != nil {
		if tags, ok := c.tagCache.Get(ctx, cacheKey); ok {
			zlog.Debug().Msgf("last.fm tag cache hit: artist=%s", artistName)
			return tags, nil
		}
	}

	var response topTagsResponse
	if err := c.call(ctx, map[string]string{
		"method":      "artist.getTopTags",
		"artist":      artistName,
		"autocorrect": "1",
	}, &response); err != nil {
		return nil, err
	}

	tags := make([]Tag, 0, limit)
	for _, t := range response.TopTags.Tag {
		if len(tags) >= limit {
			break
		}
		if t.Name == "" {
			continue
		}
		tags = append(tags, Tag{Name: strings.ToLower(t.Name), Count: t.Count})
	}

	if c.tagCache != nil {
		c.tagCache.Set(ctx, cacheKey, tags)
	}
	return tags, nil
}

// TopTracks retrieves top tracks for a tag.
// Reference: https://www.last.fm/api/show/tag.getTopTracks
func (c *Client) TopTracks(ctx context.Context, tag string, limit int) ([]TopTrack, error) {
	if tag == "" {
		return nil, errors.New("tag is required")
	}
	limit = clampLimit(limit, 50)

	cacheKey := fmt.Sprintf("tagtracks:%s:%d", strings.ToLower(tag), limit)
	if c.tracksCache != nil {
		if tracks, ok := c.tracksCache.Get(ctx, cacheKey); ok {
			zlog.Debug().Msgf("last.fm tag tracks cache hit: tag=%s", tag)
			return tracks, nil
		}
	}

	var response topTracksResponse
	if err := c.call(ctx, map[string]string{
		"method": "tag.getTopTracks",
		"tag":    tag,
		"limit":  fmt.Sprintf("%d", limit),
	}, &response); err != nil {
		return nil, err
	}

	tracks := make([]TopTrack, 0, len(response.Tracks.Track))
	for _, t := range response.Tracks.Track {
		if t.Name == "" || t.Artist.Name == "" {
			continue
		}
		tracks = append(tracks, TopTrack{Name: t.Name, Artist: t.Artist.Name})
	}

	if c.tracksCache != nil {
		c.tracksCache.Set(ctx, cacheKey, tracks)
	}
	return tracks, nil
}

func (c *Client) call(ctx context.Context, params map[string]string, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("api_key", c.apiKey).
		SetQueryParam("format", "json").
		Get("/")
	if err != nil {
		return errors.Wrapf(err, "failed to call %s", params["method"])
	}

	body := resp.Body()

	// Last.fm reports some errors with a 200 status
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != 0 {
		return errors.Errorf("last.fm API error %d: %s", apiErr.Error, apiErr.Message)
	}
	if resp.IsError() {
		return errors.Errorf("last.fm API status %d", resp.StatusCode())
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to parse response")
	}
	return nil
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > 100 {
		return 100
	}
	return limit
}

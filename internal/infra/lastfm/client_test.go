package lastfm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/moodbox/internal/infra/cache"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestArtistTopTags(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "artist.getTopTags", r.URL.Query().Get("method"))
		assert.Equal(t, "test_artist", r.URL.Query().Get("artist"))
		assert.Equal(t, "test_key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		response := `{
			"toptags": {
				"tag": [
					{"name": "Rock", "count": 100, "url": "http://last.fm/tag/rock"},
					{"name": "alternative", "count": 80, "url": "http://last.fm/tag/alternative"},
					{"name": "90s", "count": 20, "url": "http://last.fm/tag/90s"}
				]
			}
		}`
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, response)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "test_key", BaseURL: server.URL}, cache.NewMemory("tags", time.Hour))
	require.NoError(t, err)

	ctx := context.Background()
	tags, err := client.ArtistTopTags(ctx, "test_artist", 2)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "rock", tags[0].Name)
	assert.Equal(t, 100, tags[0].Count)

	tagsCached, err := client.ArtistTopTags(ctx, "test_artist", 2)
	require.NoError(t, err)
	assert.Equal(t, tags, tagsCached)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTopTracks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tag.getTopTracks", r.URL.Query().Get("method"))
		assert.Equal(t, "chill", r.URL.Query().Get("tag"))

		response := `{
			"tracks": {
				"track": [
					{
						"name": "Track 1",
						"mbid": "mbid1",
						"url": "url1",
						"artist": {"name": "Artist 1", "mbid": "ambid1", "url": "aurl1"}
					},
					{
						"name": "Track 2",
						"mbid": "mbid2",
						"url": "url2",
						"artist": {"name": "Artist 2", "mbid": "ambid2", "url": "aurl2"}
					},
					{
						"name": "",
						"artist": {"name": "Nobody"}
					}
				]
			}
		}`
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, response)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "test_key", BaseURL: server.URL}, nil)
	require.NoError(t, err)

	tracks, err := client.TopTracks(context.Background(), "chill", 5)
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, TopTrack{Name: "Track 1", Artist: "Artist 1"}, tracks[0])
}

func TestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"error": 6, "message": "The artist you supplied could not be found"}`)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "test_key", BaseURL: server.URL}, nil)
	require.NoError(t, err)

	_, err = client.ArtistTopTags(context.Background(), "nobody", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not be found")
}

func TestServerErrorIsRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"toptags":{"tag":[{"name":"jazz","count":5}]}}`)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "test_key", BaseURL: server.URL, RetryCount: 2}, nil)
	require.NoError(t, err)

	tags, err := client.ArtistTopTags(context.Background(), "someone", 5)
	require.NoError(t, err)
	assert.Equal(t, []Tag{{Name: "jazz", Count: 5}}, tags)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEmptyArguments(t *testing.T) {
	client, err := New(Config{APIKey: "test_key"}, nil)
	require.NoError(t, err)

	_, err = client.ArtistTopTags(context.Background(), "", 5)
	assert.Error(t, err)
	_, err = client.TopTracks(context.Background(), "", 5)
	assert.Error(t, err)
}

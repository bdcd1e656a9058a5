package taste

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/moodbox/internal/app/worker"
	"github.com/osa030/moodbox/internal/domain/track"
	"github.com/osa030/moodbox/internal/infra/cache"
	"github.com/osa030/moodbox/internal/infra/lastfm"
)

type fakeHistory struct {
	userErr  error
	savedErr error
	calls    atomic.Int32
	artists  []track.Artist
	top      []track.Track
	saved    []track.Track
	recent   []track.Track
}

func (f *fakeHistory) CurrentUserID(context.Context) (string, error) {
	if f.userErr != nil {
		return "", f.userErr
	}
	return "listener-1", nil
}

func (f *fakeHistory) TopArtists(context.Context, int) ([]track.Artist, error) {
	f.calls.Add(1)
	return f.artists, nil
}

func (f *fakeHistory) TopTracks(context.Context, int) ([]track.Track, error) {
	f.calls.Add(1)
	return f.top, nil
}

func (f *fakeHistory) SavedTracks(context.Context, int) ([]track.Track, error) {
	f.calls.Add(1)
	if f.savedErr != nil {
		return nil, f.savedErr
	}
	return f.saved, nil
}

func (f *fakeHistory) RecentlyPlayed(context.Context, int) ([]track.Track, error) {
	f.calls.Add(1)
	return f.recent, nil
}

type fakeTags map[string][]lastfm.Tag

func (f fakeTags) ArtistTopTags(_ context.Context, artist string, _ int) ([]lastfm.Tag, error) {
	tags, ok := f[artist]
	if !ok {
		return nil, errors.New("not found")
	}
	return tags, nil
}

func history() *fakeHistory {
	return &fakeHistory{
		artists: []track.Artist{
			{ID: "a1", Name: "Luna Vibe", Genres: []string{"synthwave", "indie pop"}},
			{ID: "a2", Name: "Night Owls", Genres: []string{"Synthwave", "chillwave"}},
		},
		top:    []track.Track{{ID: "t1", Name: "Neon Dreams", Artists: []string{"Luna Vibe"}, ArtistIDs: []string{"a1"}}},
		saved:  []track.Track{{ID: "t2", Name: "Stay", Artists: []string{"Kite", "Guest"}, ArtistIDs: []string{"a3", "a4"}}},
		recent: []track.Track{{ID: "t3", Name: "Later", Artists: []string{"Night Owls"}, ArtistIDs: []string{"a2"}}},
	}
}

func TestBuild_Profile(t *testing.T) {
	tags := fakeTags{
		"Luna Vibe":  {{Name: "synthpop"}, {Name: "dreamy"}},
		"Night Owls": {{Name: "Dreamy"}, {Name: "night"}},
	}
	b := NewBuilder(tags, worker.NewPool(3), nil)

	p := b.Build(context.Background(), history())

	assert.Equal(t, "listener-1", p.UserID)
	assert.Equal(t, []string{"synthwave", "chillwave", "indie pop"}, p.Genres)
	assert.Equal(t, []string{"dreamy", "night", "synthpop"}, p.Tags)
	assert.Equal(t, []string{"a1", "a2"}, p.TopArtistIDs)
	assert.Equal(t, []string{"Luna Vibe", "Night Owls"}, p.TopArtistNames)
	assert.Equal(t, []string{"t1"}, p.TopTrackSeeds)
	assert.True(t, p.TopTrackIDs["t1"])
	assert.True(t, p.SavedTrackIDs["t2"])
	assert.True(t, p.RecentTrackIDs["t3"])
	assert.True(t, p.ArtistIDs["a4"])
	assert.True(t, p.HasArtistName("guest"))
	assert.False(t, p.IsAnonymous())
}

func TestBuild_PartialFailure(t *testing.T) {
	h := history()
	h.savedErr = errors.New("forbidden")

	p := NewBuilder(nil, worker.NewPool(3), nil).Build(context.Background(), h)

	assert.Empty(t, p.SavedTrackIDs)
	assert.True(t, p.TopTrackIDs["t1"])
	assert.Nil(t, p.Tags)
}

func TestBuild_Anonymous(t *testing.T) {
	b := NewBuilder(nil, worker.NewPool(3), nil)

	p := b.Build(context.Background(), nil)
	assert.True(t, p.IsAnonymous())
	assert.True(t, p.IsEmpty())

	h := history()
	h.userErr = errors.New("invalid token")
	p = b.Build(context.Background(), h)
	assert.True(t, p.IsAnonymous())
	assert.Zero(t, h.calls.Load())
}

func TestBuild_Cached(t *testing.T) {
	store := cache.NewMemory("personalization", 10*time.Minute)
	b := NewBuilder(nil, worker.NewPool(3), store)
	h := history()

	first := b.Build(context.Background(), h)
	second := b.Build(context.Background(), h)

	require.Equal(t, int32(4), h.calls.Load(), "second build must come from cache")
	assert.Equal(t, first.Genres, second.Genres)
	assert.Equal(t, first.TopTrackIDs, second.TopTrackIDs)
	assert.Equal(t, "listener-1", second.UserID)
}

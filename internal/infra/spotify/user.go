package spotify

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/osa030/moodbox/internal/domain/track"
)

// User reads a listener's history with their bearer token.
type User struct {
	client *Client
	api    *spotify.Client
}

// ForUser returns a history reader for an end-user access token.
// The token lifecycle is owned by the caller.
func (c *Client) ForUser(token string) *User {
	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return &User{client: c, api: c.newAPI(source)}
}

// CurrentUserID returns the listener's catalog user ID.
func (u *User) CurrentUserID(ctx context.Context) (string, error) {
	me, err := u.api.CurrentUser(ctx)
	if err != nil {
		return "", errors.Wrap(err, "failed to get current user")
	}
	return me.ID, nil
}

// TopArtists returns the listener's medium-term top artists.
func (u *User) TopArtists(ctx context.Context, limit int) ([]track.Artist, error) {
	page, err := u.api.CurrentUsersTopArtists(ctx, spotify.Limit(limit), spotify.Timerange(spotify.MediumTermRange))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get top artists")
	}
	out := make([]track.Artist, 0, len(page.Artists))
	for _, a := range page.Artists {
		out = append(out, convertArtist(a))
	}
	return out, nil
}

// TopTracks returns the listener's medium-term top tracks.
func (u *User) TopTracks(ctx context.Context, limit int) ([]track.Track, error) {
	page, err := u.api.CurrentUsersTopTracks(ctx, spotify.Limit(limit), spotify.Timerange(spotify.MediumTermRange))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get top tracks")
	}
	out := make([]track.Track, 0, len(page.Tracks))
	for i := range page.Tracks {
		out = append(out, u.client.convertTrack(&page.Tracks[i], ""))
	}
	return out, nil
}

// SavedTracks returns the listener's most recently saved tracks.
func (u *User) SavedTracks(ctx context.Context, limit int) ([]track.Track, error) {
	page, err := u.api.CurrentUsersTracks(ctx, spotify.Limit(limit))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get saved tracks")
	}
	out := make([]track.Track, 0, len(page.Tracks))
	for i := range page.Tracks {
		out = append(out, u.client.convertTrack(&page.Tracks[i].FullTrack, ""))
	}
	return out, nil
}

// RecentlyPlayed returns the listener's recently played tracks.
func (u *User) RecentlyPlayed(ctx context.Context, limit int) ([]track.Track, error) {
	items, err := u.api.PlayerRecentlyPlayed(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get recently played")
	}
	out := make([]track.Track, 0, len(items))
	for i := range items {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, u.client.convertSimpleTrack(&items[i].Track, ""))
	}
	return out, nil
}

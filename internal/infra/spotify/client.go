// Package spotify provides a client for the Spotify Web API.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/osa030/moodbox/internal/domain/mood"
	"github.com/osa030/moodbox/internal/domain/track"
)

const (
	// Catalog-imposed batch ceilings.
	MaxAudioFeatureIDs = 100
	MaxArtistIDs       = 50
	MaxSearchLimit     = 50
	MaxSeeds           = 5
)

var (
	// ErrConfiguration indicates missing catalog credentials.
	ErrConfiguration = errors.New("spotify credentials are not configured")
	// ErrAuth indicates a failed token exchange.
	ErrAuth = errors.New("spotify authentication failed")
)

// Config represents Spotify client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	Market       string
	// BaseURL and TokenURL override the public endpoints.
	BaseURL   string
	TokenURL  string
	Transport TransportConfig
}

// Client is a Spotify API client authenticated with application credentials.
type Client struct {
	cfg        Config
	market     string
	httpClient *http.Client

	mu     sync.Mutex
	source oauth2.TokenSource
	api    *spotify.Client
}

// New creates a new Spotify client. Credentials are checked on Authenticate.
func New(cfg Config) *Client {
	market := cfg.Market
	if market == "" {
		market = "US"
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = spotifyauth.TokenURL
	}

	return &Client{
		cfg:    cfg,
		market: market,
		httpClient: &http.Client{
			Transport: NewTransport(http.DefaultTransport, cfg.Transport),
		},
	}
}

// Market returns the default market.
func (c *Client) Market() string {
	return c.market
}

// Authenticate acquires (or reuses) the application token.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return ErrConfiguration
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.source != nil {
		if _, err := c.source.Token(); err == nil {
			return nil
		}
	}

	cc := clientcredentials.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		TokenURL:     c.cfg.TokenURL,
	}

	tok, err := cc.Token(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))
	if err != nil {
		return errors.Mark(errors.Wrap(err, "failed to acquire app token"), ErrAuth)
	}

	// refreshes must outlive the request that triggered the first exchange
	refreshCtx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
	c.source = oauth2.ReuseTokenSource(tok, cc.TokenSource(refreshCtx))
	c.api = c.newAPI(c.source)
	return nil
}

func (c *Client) newAPI(source oauth2.TokenSource) *spotify.Client {
	httpClient := &http.Client{
		Transport: &oauth2.Transport{Source: source, Base: c.httpClient.Transport},
	}
	var opts []spotify.ClientOption
	if c.cfg.BaseURL != "" {
		opts = append(opts, spotify.WithBaseURL(c.cfg.BaseURL))
	}
	return spotify.New(httpClient, opts...)
}

func (c *Client) app() (*spotify.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.api == nil {
		return nil, errors.Mark(errors.New("client is not authenticated"), ErrAuth)
	}
	return c.api, nil
}

// Search searches for tracks.
func (c *Client) Search(ctx context.Context, query string, limit int, market string) ([]track.Track, error) {
	if query == "" {
		return nil, errors.New("search query is required")
	}
	api, err := c.app()
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 20
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	if market == "" {
		market = c.market
	}

	result, err := api.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit), spotify.Market(market))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search %q", query)
	}
	if result.Tracks == nil {
		return nil, nil
	}

	tracks := make([]track.Track, 0, len(result.Tracks.Tracks))
	for i := range result.Tracks.Tracks {
		tracks = append(tracks, c.convertTrack(&result.Tracks.Tracks[i], market))
	}
	return tracks, nil
}

// AudioFeatures looks up one batch of audio features. Missing entries are
// absent from the result.
func (c *Client) AudioFeatures(ctx context.Context, ids []string) (map[string]track.AudioFeatures, error) {
	if len(ids) > MaxAudioFeatureIDs {
		return nil, errors.Newf("at most %d ids per audio features request", MaxAudioFeatureIDs)
	}
	api, err := c.app()
	if err != nil {
		return nil, err
	}

	features, err := api.GetAudioFeatures(ctx, toIDs(ids)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get audio features")
	}

	out := make(map[string]track.AudioFeatures, len(features))
	for _, f := range features {
		if f == nil || f.ID == "" {
			continue
		}
		out[string(f.ID)] = track.AudioFeatures{
			Valence:      track.Value(float64(f.Valence)),
			Energy:       track.Value(float64(f.Energy)),
			Danceability: track.Value(float64(f.Danceability)),
			Tempo:        track.Value(float64(f.Tempo)),
		}
	}
	return out, nil
}

// Artists looks up one batch of artists.
func (c *Client) Artists(ctx context.Context, ids []string) ([]track.Artist, error) {
	if len(ids) > MaxArtistIDs {
		return nil, errors.Newf("at most %d ids per artists request", MaxArtistIDs)
	}
	api, err := c.app()
	if err != nil {
		return nil, err
	}

	artists, err := api.GetArtists(ctx, toIDs(ids)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get artists")
	}

	out := make([]track.Artist, 0, len(artists))
	for _, a := range artists {
		if a == nil || a.ID == "" {
			continue
		}
		out = append(out, convertArtist(*a))
	}
	return out, nil
}

// ArtistTopTracks returns an artist's top tracks in market.
func (c *Client) ArtistTopTracks(ctx context.Context, artistID, market string) ([]track.Track, error) {
	api, err := c.app()
	if err != nil {
		return nil, err
	}
	if market == "" {
		market = c.market
	}

	result, err := api.GetArtistsTopTracks(ctx, spotify.ID(artistID), market)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get top tracks for artist %s", artistID)
	}

	tracks := make([]track.Track, 0, len(result))
	for i := range result {
		tracks = append(tracks, c.convertTrack(&result[i], market))
	}
	return tracks, nil
}

// RelatedArtists returns artists similar to artistID.
func (c *Client) RelatedArtists(ctx context.Context, artistID string) ([]track.Artist, error) {
	api, err := c.app()
	if err != nil {
		return nil, err
	}

	result, err := api.GetRelatedArtists(ctx, spotify.ID(artistID))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get related artists for %s", artistID)
	}

	out := make([]track.Artist, 0, len(result))
	for _, a := range result {
		out = append(out, convertArtist(a))
	}
	return out, nil
}

// Seeds represents recommendation seeds. At most MaxSeeds are sent in
// total, artists first.
type Seeds struct {
	Artists []string
	Tracks  []string
	Genres  []string
}

// Len returns the total number of seeds.
func (s Seeds) Len() int {
	return len(s.Artists) + len(s.Tracks) + len(s.Genres)
}

func (s Seeds) capped() spotify.Seeds {
	var out spotify.Seeds
	left := MaxSeeds
	for _, a := range s.Artists {
		if left == 0 {
			break
		}
		out.Artists = append(out.Artists, spotify.ID(a))
		left--
	}
	for _, t := range s.Tracks {
		if left == 0 {
			break
		}
		out.Tracks = append(out.Tracks, spotify.ID(t))
		left--
	}
	for _, g := range s.Genres {
		if left == 0 {
			break
		}
		out.Genres = append(out.Genres, g)
		left--
	}
	return out
}

// Recommendations returns catalog recommendations for seeds, targeted at
// the given mood targets.
func (c *Client) Recommendations(ctx context.Context, seeds Seeds, targets mood.Targets, limit int, market string) ([]track.Track, error) {
	if seeds.Len() == 0 {
		return nil, errors.New("at least one seed is required")
	}
	api, err := c.app()
	if err != nil {
		return nil, err
	}
	if market == "" {
		market = c.market
	}
	if limit <= 0 {
		limit = 20
	}

	attrs := spotify.NewTrackAttributes().
		TargetValence(targets.Valence).
		TargetEnergy(targets.Energy).
		TargetDanceability(targets.Danceability)
	if targets.Tempo > 0 {
		attrs = attrs.TargetTempo(targets.Tempo)
	}

	result, err := api.GetRecommendations(ctx, seeds.capped(), attrs, spotify.Limit(limit), spotify.Market(market))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get recommendations")
	}

	tracks := make([]track.Track, 0, len(result.Tracks))
	for i := range result.Tracks {
		tracks = append(tracks, c.convertSimpleTrack(&result.Tracks[i], market))
	}
	return tracks, nil
}

// AvailableGenreSeeds returns the genres accepted as recommendation seeds.
func (c *Client) AvailableGenreSeeds(ctx context.Context) ([]string, error) {
	api, err := c.app()
	if err != nil {
		return nil, err
	}
	genres, err := api.GetAvailableGenreSeeds(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get genre seeds")
	}
	return genres, nil
}

// convertTrack converts a Spotify FullTrack to domain Track. market is the
// market the request was scoped to.
func (c *Client) convertTrack(t *spotify.FullTrack, market string) track.Track {
	out := c.convertSimpleTrack(&t.SimpleTrack, market)
	out.Album = t.Album.Name
	out.AlbumArtURL = albumArt(t.Album.Images)
	out.Popularity = int(t.Popularity)
	out.IsPlayable = t.IsPlayable
	return out
}

func (c *Client) convertSimpleTrack(t *spotify.SimpleTrack, market string) track.Track {
	artists := make([]string, len(t.Artists))
	artistIDs := make([]string, 0, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
		if a.ID != "" {
			artistIDs = append(artistIDs, string(a.ID))
		}
	}
	var primary string
	if len(t.Artists) > 0 {
		primary = string(t.Artists[0].ID)
	}

	return track.Track{
		ID:              string(t.ID),
		Name:            t.Name,
		Artists:         artists,
		ArtistIDs:       artistIDs,
		PrimaryArtistID: primary,
		Album:           t.Album.Name,
		AlbumArtURL:     albumArt(t.Album.Images),
		PreviewURL:      t.PreviewURL,
		URL:             trackURL(string(t.ID), t.ExternalURLs),
		Duration:        time.Duration(t.Duration) * time.Millisecond,
		Explicit:        t.Explicit,
		Markets:         c.markets(t.AvailableMarkets, market),
	}
}

// markets returns the track's markets. Market-scoped responses omit the
// list, so the request market stands in for it.
func (c *Client) markets(available []string, market string) []string {
	if len(available) > 0 {
		return append([]string(nil), available...)
	}
	if market == "" {
		market = c.market
	}
	if market == "" {
		return []string{}
	}
	return []string{market}
}

func albumArt(images []spotify.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

func convertArtist(a spotify.FullArtist) track.Artist {
	genres := make([]string, len(a.Genres))
	copy(genres, a.Genres)
	return track.Artist{ID: string(a.ID), Name: a.Name, Genres: genres}
}

func trackURL(id string, external map[string]string) string {
	if u := external["spotify"]; u != "" {
		return u
	}
	if id == "" {
		return ""
	}
	return fmt.Sprintf("https://open.spotify.com/track/%s", id)
}

func toIDs(ids []string) []spotify.ID {
	out := make([]spotify.ID, 0, len(ids))
	for _, id := range ids {
		out = append(out, spotify.ID(id))
	}
	return out
}

// TrackID extracts the track ID from a Spotify track URL or URI.
func TrackID(input string) string {
	input = strings.TrimSpace(input)
	// Handle Spotify URI format: spotify:track:TRACK_ID
	if strings.HasPrefix(input, "spotify:track:") {
		return strings.TrimPrefix(input, "spotify:track:")
	}

	// Handle URL format: https://open.spotify.com/track/TRACK_ID or https://open.spotify.com/intl-XX/track/TRACK_ID
	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/track/") {
		parts := strings.Split(input, "/track/")
		if len(parts) >= 2 {
			id := strings.Split(parts[len(parts)-1], "?")[0]
			return strings.TrimRight(id, "/")
		}
	}

	// Assume it's already a track ID
	return input
}

// Package wire holds the JSON shapes shared by the REST and RPC surfaces.
package wire

import (
	"github.com/osa030/moodbox/internal/app/recommend"
	"github.com/osa030/moodbox/internal/domain/track"
)

// RecommendRequest is the request body.
type RecommendRequest struct {
	Mood     string   `json:"mood,omitempty"`
	Prompt   string   `json:"prompt,omitempty"`
	Language string   `json:"language,omitempty"`
	Limit    int      `json:"limit,omitempty"`
	Exclude  []string `json:"exclude,omitempty"`
}

// ToRequest converts the body into a service request.
func (r RecommendRequest) ToRequest(userToken string) recommend.Request {
	return recommend.Request{
		Mood:      r.Mood,
		Prompt:    r.Prompt,
		Language:  r.Language,
		Limit:     r.Limit,
		Exclude:   r.Exclude,
		UserToken: userToken,
	}
}

// Track is a recommended track.
type Track struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album,omitempty"`
	AlbumArtURL string   `json:"album_art_url,omitempty"`
	PreviewURL  string   `json:"preview_url,omitempty"`
	URL         string   `json:"url,omitempty"`
	DurationMs  int64    `json:"duration_ms,omitempty"`
	Popularity  int      `json:"popularity,omitempty"`
	Explicit    bool     `json:"explicit,omitempty"`
	Reason      string   `json:"reason,omitempty"`
}

// Meta describes how the playlist was built.
type Meta struct {
	Source       string `json:"source"`
	Confirmation string `json:"confirmation,omitempty"`
	Comfort      string `json:"comfort,omitempty"`
	RequestID    string `json:"request_id"`
	Language     string `json:"language,omitempty"`
}

// RecommendResponse is the response body.
type RecommendResponse struct {
	OK     bool    `json:"ok"`
	Mood   string  `json:"mood,omitempty"`
	Tracks []Track `json:"tracks"`
	Meta   *Meta   `json:"meta,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// FromResponse converts a service response.
func FromResponse(resp *recommend.Response) RecommendResponse {
	tracks := make([]Track, len(resp.Tracks))
	for i, t := range resp.Tracks {
		tracks[i] = FromTrack(t)
	}
	return RecommendResponse{
		OK:     true,
		Mood:   string(resp.Mood),
		Tracks: tracks,
		Meta: &Meta{
			Source:       resp.Meta.Source,
			Confirmation: resp.Meta.Confirmation,
			Comfort:      resp.Meta.Comfort,
			RequestID:    resp.Meta.RequestID,
			Language:     resp.Meta.Language,
		},
	}
}

// FromTrack converts a domain track.
func FromTrack(t track.Track) Track {
	artists := t.Artists
	if artists == nil {
		artists = []string{}
	}
	return Track{
		ID:          t.ID,
		Name:        t.Name,
		Artists:     artists,
		Album:       t.Album,
		AlbumArtURL: t.AlbumArtURL,
		PreviewURL:  t.PreviewURL,
		URL:         t.URL,
		DurationMs:  t.Duration.Milliseconds(),
		Popularity:  t.Popularity,
		Explicit:    t.Explicit,
		Reason:      t.Reason,
	}
}

// Failure builds an error response.
func Failure(err error) RecommendResponse {
	return RecommendResponse{OK: false, Tracks: []Track{}, Error: err.Error()}
}

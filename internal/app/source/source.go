// Package source provides the candidate sources feeding the recommendation pool.
package source

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/moodbox/internal/domain/mood"
	"github.com/osa030/moodbox/internal/domain/taste"
	"github.com/osa030/moodbox/internal/domain/track"
	"github.com/osa030/moodbox/internal/domain/vibe"
	"github.com/osa030/moodbox/internal/infra/lastfm"
	"github.com/osa030/moodbox/internal/infra/spotify"
)

// Source is the interface for candidate sources.
// Different implementations reach the catalog through different strategies
// (listener anchors, keyword search, seeded recommendations, tags).
type Source interface {
	// Candidates retrieves candidate tracks for the request.
	Candidates(ctx context.Context, in Input) ([]track.Track, error)

	// Name returns the source type (used in config).
	Name() string
}

// Input is the request context shared by all sources.
type Input struct {
	Profile *taste.Profile
	Mood    mood.Mood
	Signals vibe.Signals
	Targets mood.Targets
	Market  string
}

// Catalog defines the catalog operations needed by sources.
type Catalog interface {
	Search(ctx context.Context, query string, limit int, market string) ([]track.Track, error)
	ArtistTopTracks(ctx context.Context, artistID, market string) ([]track.Track, error)
	Recommendations(ctx context.Context, seeds spotify.Seeds, targets mood.Targets, limit int, market string) ([]track.Track, error)
	AvailableGenreSeeds(ctx context.Context) ([]string, error)
}

// TagTracks defines the tag service operation needed by the tag source.
type TagTracks interface {
	TopTracks(ctx context.Context, tag string, limit int) ([]lastfm.TopTrack, error)
}

// decodeSettings decodes settings into out, then applies defaults and validation.
func decodeSettings(settings map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}
	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(out); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}

package source

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/moodbox/internal/app/worker"
	"github.com/osa030/moodbox/internal/domain/mood"
	"github.com/osa030/moodbox/internal/domain/track"
	"github.com/osa030/moodbox/internal/infra/lastfm"
)

// LastFMTagsConfig represents the configuration for LastFMTagsSource.
type LastFMTagsConfig struct {
	Tracks int `yaml:"tracks" mapstructure:"tracks" default:"30" validate:"gte=1,lte=100"`
}

// LastFMTagsSource takes the top tracks of the mood's Last.fm tag and
// resolves each one through catalog search.
type LastFMTagsSource struct {
	tags    TagTracks
	catalog Catalog
	pool    *worker.Pool
	config  LastFMTagsConfig
}

// NewLastFMTagsSource creates a new LastFMTagsSource.
func NewLastFMTagsSource(tags TagTracks, catalog Catalog, pool *worker.Pool, settings map[string]any) (*LastFMTagsSource, error) {
	if tags == nil {
		return nil, errors.New("last.fm client is required")
	}
	var config LastFMTagsConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	return &LastFMTagsSource{tags: tags, catalog: catalog, pool: pool, config: config}, nil
}

func (s *LastFMTagsSource) Name() string {
	return "lastfm_tags"
}

func (s *LastFMTagsSource) Candidates(ctx context.Context, in Input) ([]track.Track, error) {
	tag := mood.Tag(in.Mood)
	if tag == "" {
		return nil, nil
	}

	top, err := s.tags.TopTracks(ctx, tag, s.config.Tracks)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get top tracks for tag %s", tag)
	}

	jobs := make([]worker.Job[[]track.Track], len(top))
	for i, tt := range top {
		jobs[i] = func(ctx context.Context) ([]track.Track, error) {
			return s.catalog.Search(ctx, resolveQuery(tt), 1, in.Market)
		}
	}

	var out []track.Track
	for i, r := range worker.Run(ctx, s.pool, jobs) {
		if r.Err != nil {
			zlog.Debug().Msgf("tag track not resolved: track=%s artist=%s error=%v", top[i].Name, top[i].Artist, r.Err)
			continue
		}
		out = append(out, r.Value...)
	}

	zlog.Debug().Msgf("tag tracks resolved: tag=%s found=%d resolved=%d", tag, len(top), len(out))
	return out, nil
}

func resolveQuery(t lastfm.TopTrack) string {
	return fmt.Sprintf("track:%q artist:%q", t.Name, t.Artist)
}

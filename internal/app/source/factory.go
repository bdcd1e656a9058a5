package source

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/moodbox/internal/app/fetch"
	"github.com/osa030/moodbox/internal/app/worker"
	"github.com/osa030/moodbox/internal/infra/cache"
	"github.com/osa030/moodbox/internal/infra/config"
)

// Source types.
const (
	KindAnchors              = "anchors"
	KindMoodSearch           = "mood_search"
	KindGenreRecommendations = "genre_recommendations"
	KindLastFMTags           = "lastfm_tags"
)

// Deps are the collaborators sources are built from.
type Deps struct {
	Catalog    Catalog
	Tags       TagTracks // nil when no Last.fm key is configured
	Pool       *worker.Pool
	GenreSeeds cache.Store
}

// NewChainFromConfig creates a source chain from configuration.
// A lastfm_tags entry without a tag service is skipped.
func NewChainFromConfig(cfgs []config.SourceConfig, deps Deps) (*Chain, error) {
	if len(cfgs) == 0 {
		return nil, errors.New("no sources configured")
	}

	var sources []WithMetadata

	for i, scfg := range cfgs {
		var src Source
		var err error
		zlog.Debug().Msgf("creating source: index=%d type=%s settings=%+v", i+1, scfg.Type, scfg.Settings)
		switch scfg.Type {
		case KindAnchors:
			src, err = NewAnchorsSource(deps.Catalog, deps.Pool, scfg.Settings)

		case KindMoodSearch:
			src, err = NewMoodSearchSource(fetch.New(deps.Catalog, deps.Pool), scfg.Settings)

		case KindGenreRecommendations:
			src, err = NewGenreRecommendationsSource(deps.Catalog, deps.GenreSeeds, scfg.Settings)

		case KindLastFMTags:
			if deps.Tags == nil {
				zlog.Warn().Msgf("skipping source without last.fm api key: index=%d display_name=%s", i+1, scfg.DisplayName)
				continue
			}
			src, err = NewLastFMTagsSource(deps.Tags, deps.Catalog, deps.Pool, scfg.Settings)

		default:
			return nil, errors.Newf("unsupported source type: %s (source index %d)", scfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create source (index %d, type %s)", i, scfg.Type)
		}

		sources = append(sources, WithMetadata{
			Source:      src,
			DisplayName: scfg.DisplayName,
		})

		zlog.Info().Msgf("registered source: index=%d type=%s display_name=%s", i+1, scfg.Type, scfg.DisplayName)
	}

	if len(sources) == 0 {
		return nil, errors.New("no usable sources configured")
	}
	return NewChain(sources), nil
}
